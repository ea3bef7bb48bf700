// Package server hosts the WebSocket endpoint and the surrounding HTTP
// surface: session upgrades, optional auth routes and the health check.
//
// Each accepted connection gets its own session loop goroutine; the
// server only tracks connections for shutdown and metrics.
package server
