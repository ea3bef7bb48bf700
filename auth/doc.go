// Package auth provides the optional identity subsystem: a SQLite-backed
// user store, bcrypt password hashing, HS256 bearer tokens and the HTTP
// handlers that expose registration and login.
//
// The subsystem is off by default. When enabled, the WebSocket upgrade
// requires a valid bearer token issued by this package.
package auth
