// Package pose defines the landmark model produced by the external
// pose-estimation engine and the Estimator abstraction the session loop
// consumes. The engine itself is an external collaborator; this package
// ships a client for an HTTP sidecar estimator and keeps the interface
// small enough that tests substitute a stub.
package pose
