package session

import "time"

// ShouldProcess decides whether a frame arriving at now should run the
// full pipeline or be answered from the cached result. It is a pure
// function of the session's last processed timestamp and the process-wide
// target rate in frames per second: true iff at least 1/targetRate has
// elapsed. A zero lastProcessedAt (no frame processed yet) always
// processes, as does a non-positive target rate (throttling disabled).
func ShouldProcess(now, lastProcessedAt time.Time, targetRate float64) bool {
	if targetRate <= 0 || lastProcessedAt.IsZero() {
		return true
	}
	interval := time.Duration(float64(time.Second) / targetRate)
	return now.Sub(lastProcessedAt) >= interval
}
