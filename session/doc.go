// Package session implements the per-connection frame-processing session:
// the session state record, the adaptive throttle policy, the wire
// protocol, and the loop that ties them to the pose estimator and the
// feedback engine.
//
// Every connection owns exactly one Loop running on its own goroutine.
// The loop is the only writer of its State, so the state carries no
// locks. Loops across connections share nothing but read-only pipeline
// configuration and the process-wide estimator handle.
//
// The loop cycles through receive, classify, throttle decision, process,
// respond. Control messages are acknowledged immediately and never enter
// the pipeline. Frames arriving faster than the configured target rate
// are answered from the session's cached result, marked throttled.
// Nothing on the frame path may terminate the loop; only transport
// failures close a session.
package session
