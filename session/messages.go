package session

// Fixed feedback messages for pipeline states decided before rule
// evaluation.
const (
	// MsgNoFrame answers a frame message without a frame payload.
	MsgNoFrame = "No frame received."

	// MsgNoPerson answers a frame in which nothing was detected.
	MsgNoPerson = "No person detected. Please make sure you are in frame."

	// MsgSelectExercise answers a frame processed before the client
	// selected an exercise.
	MsgSelectExercise = "Please select an exercise."
)

// Structured error strings reported to the client on malformed input.
const (
	errInvalidJSON      = "invalid json"
	errFrameDecodeError = "frame decode error"
)

// inboundMessage is the union of everything a client can send as text.
// Pointer fields distinguish "absent" from zero values for the toggles.
type inboundMessage struct {
	Type     string  `json:"type,omitempty"`
	Exercise *string `json:"exercise,omitempty"`
	Skeleton *bool   `json:"skeleton,omitempty"`
	Verbose  *bool   `json:"verbose,omitempty"`
	Frame    string  `json:"frame,omitempty"`
}

// isControl classifies a parsed text message. A message is control when it
// is explicitly tagged meta, or when it carries toggle fields and no frame
// payload. A bare exercise selection without a frame is intentionally NOT
// control: it follows the frame path and is answered with MsgNoFrame.
func (m *inboundMessage) isControl() bool {
	if m.Type == "meta" {
		return true
	}
	return m.Frame == "" && (m.Skeleton != nil || m.Verbose != nil)
}

// metaAck acknowledges a control message.
type metaAck struct {
	MetaAck bool `json:"meta_ack"`
}

// textResponse is the frame response in text mode. SkeletonFrame is a
// base64-encoded JPEG, or null when rendering is disabled or produced
// nothing.
type textResponse struct {
	Feedback      []string `json:"feedback"`
	SkeletonFrame *string  `json:"skeleton_frame"`
	Throttled     bool     `json:"throttled,omitempty"`
}

// binaryHeader is the JSON control frame preceding a raw binary skeleton
// frame in binary mode. The binary frame is only sent when SkeletonBinary
// is true.
type binaryHeader struct {
	Feedback       []string `json:"feedback"`
	SkeletonBinary bool     `json:"skeleton_binary"`
	Throttled      bool     `json:"throttled,omitempty"`
}

// errorResponse reports malformed input; the session stays open.
type errorResponse struct {
	Error string `json:"error"`
}
