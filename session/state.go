package session

import "time"

// Mode is the session's protocol mode. Sessions start in text mode and
// latch to binary on the first binary-framed input for their remaining
// lifetime.
type Mode int

const (
	// ModeText exchanges JSON messages with base64-encoded frames.
	ModeText Mode = iota
	// ModeBinary receives raw encoded frames and answers with a JSON
	// control frame followed by a raw binary skeleton frame.
	ModeBinary
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// State is the per-connection mutable session record. It has exactly one
// writer, the owning session loop, so access is unsynchronized.
type State struct {
	// Exercise is the selected exercise kind; empty until the client
	// picks one via a control message or a frame message.
	Exercise string

	// Mode is the protocol mode; see LatchBinary.
	Mode Mode

	// Skeleton controls whether annotated frames are rendered.
	Skeleton bool

	// Verbose enables per-frame debug logging for this session.
	Verbose bool

	// LastProcessedAt is the timestamp of the last fully-processed frame;
	// zero until the first frame runs the pipeline.
	LastProcessedAt time.Time

	// LastFeedback and LastRendered are the cached results of the same
	// processed frame; CacheResult keeps them consistent as a pair.
	LastFeedback []string
	LastRendered []byte
}

// NewState creates session state with the process-wide default toggles.
func NewState(skeletonDefault, verboseDefault bool) *State {
	return &State{
		Mode:     ModeText,
		Skeleton: skeletonDefault,
		Verbose:  verboseDefault,
	}
}

// LatchBinary switches the session to binary mode. The switch is one-way:
// once latched, the session stays binary until disconnect.
func (s *State) LatchBinary() {
	s.Mode = ModeBinary
}

// CacheResult records the outcome of a processed frame. Feedback and the
// rendered frame are always replaced together so the cache never mixes
// results from different cycles.
func (s *State) CacheResult(at time.Time, feedback []string, rendered []byte) {
	s.LastProcessedAt = at
	s.LastFeedback = feedback
	s.LastRendered = rendered
}
