// Package config defines the process-wide configuration for the
// posturecoach service and its loader.
//
// Configuration is layered: built-in defaults, then an optional JSON file,
// then POSTURECOACH_* environment variable overrides. The pipeline section
// (target rate, maximum frame width, default toggles) is read-only shared
// state across all session loops and is never renegotiated per session.
package config
