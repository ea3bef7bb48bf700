// Package posturecoach is the backend for a real-time gym exercise posture
// correction system. A client streams video frames over a long-lived
// WebSocket connection; the server derives body-joint angles from detected
// anatomical landmarks and answers each frame with exercise-form feedback
// and an optional skeleton-annotated frame.
//
// # Architecture
//
// The frame-processing path is a per-connection pipeline with no shared
// mutable state between connections:
//
//	transport message -> decoded frame -> landmarks -> angles -> feedback
//	                                          \-> skeleton render (side branch)
//
// Packages, leaves first:
//
//   - angle: pure geometry (interior angle at a vertex) and the per-exercise
//     tables mapping named joint triples to landmark indices.
//   - feedback: ordered, data-driven threshold rules per exercise kind.
//   - pose: landmark model and the Estimator abstraction over the external
//     pose-estimation engine, plus an HTTP client for a sidecar estimator.
//   - vision: frame codec (decode, bounded downscale, JPEG encode) and the
//     skeleton renderer.
//   - session: per-connection state, adaptive throttle policy, and the
//     session loop state machine.
//   - server: WebSocket endpoint, HTTP surface, lifecycle, metrics.
//   - auth: user registration, login, and JWT issuance over SQLite.
//   - config, errors, metric, health: shared infrastructure.
//
// # Concurrency model
//
// One sequential loop per connection. Session state has exactly one writer
// (its own loop), so it needs no locks. The pose estimator handle is
// process-wide and injected into each loop at construction; calls into it
// are treated as opaque blocking operations and must be safe under
// concurrent invocation.
//
// # Error philosophy
//
// Nothing in the frame-processing path may crash a session loop. Input
// errors are reported to the client as structured errors; collaborator
// failures degrade to a default result and are logged; only transport
// failures close a session.
package posturecoach
