// Package health defines the status report served on the health endpoint.
package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// Status is a point-in-time health snapshot.
type Status struct {
	Healthy        bool          `json:"healthy"`
	LastCheck      time.Time     `json:"last_check"`
	Uptime         time.Duration `json:"uptime"`
	ActiveSessions int           `json:"active_sessions"`
	ErrorCount     int           `json:"error_count"`
}

// Checker produces a Status on demand.
type Checker interface {
	Health() Status
}

// Handler serves the checker's status as JSON. Unhealthy reports 503.
func Handler(c Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := c.Health()
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
