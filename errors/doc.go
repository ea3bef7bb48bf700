// Package errors provides standardized error handling for posturecoach
// components. Errors are classified by severity so callers can decide
// whether to retry, report to the client, or close the session:
//
//   - transient: temporary conditions (estimator unreachable, timeout)
//   - invalid: bad input (malformed message, undecodable frame)
//   - fatal: unrecoverable conditions (bad config, storage failure)
//
// Use WrapTransient, WrapInvalid, and WrapFatal to attach a classification
// and "component.method: action failed" context in one step.
package errors
