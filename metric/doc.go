// Package metric manages Prometheus metrics for the posturecoach service:
// a registry wrapper that namespaces component metrics and prevents
// duplicate registration, the core service-level metrics, and the HTTP
// server exposing them.
package metric
