package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SuyashBhavalkar3/posturecoach/angle"
	pcerrors "github.com/SuyashBhavalkar3/posturecoach/errors"
	"github.com/SuyashBhavalkar3/posturecoach/feedback"
	"github.com/SuyashBhavalkar3/posturecoach/metric"
	"github.com/SuyashBhavalkar3/posturecoach/pose"
	"github.com/SuyashBhavalkar3/posturecoach/vision"
)

// Conn is the subset of *websocket.Conn the loop needs. Tests substitute
// an in-memory implementation.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
}

// Options configures a session loop.
type Options struct {
	// TargetFPS is the maximum frame processing rate; <= 0 disables
	// throttling.
	TargetFPS float64

	// MaxFrameWidth downscales incoming frames wider than this before
	// estimation; <= 0 disables downscaling.
	MaxFrameWidth int

	// SkeletonDefault and VerboseDefault seed the per-session toggles.
	SkeletonDefault bool
	VerboseDefault  bool
}

// Loop runs the message cycle for a single connected client. It is the
// sole writer of its State and its Conn, so neither is locked.
type Loop struct {
	id        string
	conn      Conn
	estimator pose.Estimator
	state     *State
	opts      Options
	metrics   *metric.Metrics
	logger    *slog.Logger

	// now is replaceable for throttle tests.
	now func() time.Time
}

// New creates a session loop for an upgraded connection.
func New(id string, conn Conn, estimator pose.Estimator, opts Options, metrics *metric.Metrics, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		id:        id,
		conn:      conn,
		estimator: estimator,
		state:     NewState(opts.SkeletonDefault, opts.VerboseDefault),
		opts:      opts,
		metrics:   metrics,
		logger:    logger.With("session_id", id),
		now:       time.Now,
	}
}

// State exposes the session state for inspection after Run returns.
func (l *Loop) State() *State {
	return l.state
}

// Run reads and answers messages until the connection closes or ctx is
// cancelled. The read error that ends the loop is returned for logging;
// a clean client close is reported as nil.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msgType, data, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return pcerrors.WrapTransient(err, "session", "run", "read message")
		}

		if err := l.handleMessage(ctx, msgType, data); err != nil {
			return err
		}
	}
}

// handleMessage dispatches one inbound message. Only write failures are
// returned; malformed input is answered in-band and the session continues.
func (l *Loop) handleMessage(ctx context.Context, msgType int, data []byte) error {
	if msgType == websocket.BinaryMessage {
		l.state.LatchBinary()
		l.countReceived()
		img, err := vision.Decode(data)
		if err != nil {
			l.countError("decode")
			return l.writeJSON(errorResponse{Error: errFrameDecodeError})
		}
		return l.handleFrame(ctx, img)
	}

	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		l.countError("protocol")
		return l.writeJSON(errorResponse{Error: errInvalidJSON})
	}

	if msg.isControl() {
		l.applyControl(&msg)
		return l.writeJSON(metaAck{MetaAck: true})
	}

	// Frame-path messages may still carry an exercise selection.
	if msg.Exercise != nil {
		l.state.Exercise = *msg.Exercise
	}

	l.countReceived()
	if msg.Frame == "" {
		return l.writeResult([]string{MsgNoFrame}, nil, false)
	}

	raw, err := base64.StdEncoding.DecodeString(msg.Frame)
	if err != nil {
		l.countError("decode")
		return l.writeJSON(errorResponse{Error: errFrameDecodeError})
	}
	img, err := vision.Decode(raw)
	if err != nil {
		l.countError("decode")
		return l.writeJSON(errorResponse{Error: errFrameDecodeError})
	}
	return l.handleFrame(ctx, img)
}

// applyControl folds a control message into session state.
func (l *Loop) applyControl(msg *inboundMessage) {
	if msg.Exercise != nil {
		l.state.Exercise = *msg.Exercise
	}
	if msg.Skeleton != nil {
		l.state.Skeleton = *msg.Skeleton
	}
	if msg.Verbose != nil {
		l.state.Verbose = *msg.Verbose
	}
}

// handleFrame runs the decoded frame through the throttle, estimation,
// angle, feedback and rendering stages and answers the client.
func (l *Loop) handleFrame(ctx context.Context, img image.Image) error {
	now := l.now()
	if !ShouldProcess(now, l.state.LastProcessedAt, l.opts.TargetFPS) {
		if l.metrics != nil {
			l.metrics.FramesThrottled.Inc()
		}
		return l.writeResult(l.state.LastFeedback, l.state.LastRendered, true)
	}

	img = vision.Downscale(img, l.opts.MaxFrameWidth)

	start := l.now()
	lms, err := l.estimator.Estimate(ctx, img)
	if l.metrics != nil {
		l.metrics.EstimationDuration.Observe(l.now().Sub(start).Seconds())
	}
	if err != nil {
		// Estimator failures degrade to a no-detection result; the
		// session stays up.
		l.countError("estimation")
		l.logger.Warn("pose estimation failed", "error", err)
		lms = nil
	}

	fb, rendered := l.evaluate(lms, img)

	l.state.CacheResult(now, fb, rendered)
	if l.metrics != nil {
		outcome := "processed"
		if len(lms) == 0 {
			outcome = "no_detection"
		}
		l.metrics.FramesProcessed.WithLabelValues(outcome).Inc()
	}
	if l.state.Verbose {
		l.logger.Debug("frame processed",
			"exercise", l.state.Exercise,
			"landmarks", len(lms),
			"feedback", fb,
		)
	}
	return l.writeResult(fb, rendered, false)
}

// evaluate turns landmarks into feedback and, when enabled, an annotated
// frame. A nil landmark slice means no person was detected.
func (l *Loop) evaluate(lms []pose.Landmark, img image.Image) ([]string, []byte) {
	var rendered []byte
	if l.state.Skeleton && len(lms) > 0 {
		var err error
		rendered, err = vision.RenderSkeleton(img, lms)
		if err != nil {
			l.countError("render")
			l.logger.Warn("skeleton render failed", "error", err)
			rendered = nil
		}
	}

	if len(lms) == 0 {
		return []string{MsgNoPerson}, nil
	}
	if l.state.Exercise == "" {
		return []string{MsgSelectExercise}, rendered
	}

	angles := angle.ForExercise(l.state.Exercise, lms)
	return feedback.For(l.state.Exercise, angles), rendered
}

// writeResult answers a frame message in the session's current mode.
func (l *Loop) writeResult(fb []string, rendered []byte, throttled bool) error {
	if fb == nil {
		fb = []string{}
	}
	if l.state.Mode == ModeBinary {
		hdr := binaryHeader{
			Feedback:       fb,
			SkeletonBinary: len(rendered) > 0,
			Throttled:      throttled,
		}
		if err := l.writeJSON(hdr); err != nil {
			return err
		}
		if len(rendered) == 0 {
			return nil
		}
		if err := l.conn.WriteMessage(websocket.BinaryMessage, rendered); err != nil {
			return pcerrors.WrapTransient(err, "session", "writeResult", "write binary frame")
		}
		return nil
	}

	resp := textResponse{Feedback: fb, Throttled: throttled}
	if len(rendered) > 0 {
		enc := base64.StdEncoding.EncodeToString(rendered)
		resp.SkeletonFrame = &enc
	}
	return l.writeJSON(resp)
}

func (l *Loop) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return pcerrors.WrapFatal(err, "session", "writeJSON", "marshal response")
	}
	if err := l.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return pcerrors.WrapTransient(err, "session", "writeJSON", "write message")
	}
	return nil
}

func (l *Loop) countReceived() {
	if l.metrics != nil {
		l.metrics.FramesReceived.WithLabelValues(l.state.Mode.String()).Inc()
	}
}

func (l *Loop) countError(kind string) {
	if l.metrics != nil {
		l.metrics.ErrorsTotal.WithLabelValues("session", kind).Inc()
	}
}
