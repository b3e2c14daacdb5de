// Package middleware provides gin middleware for the termhost control API.
//
// The server binds loopback and serves a single local display client, so the
// defaults here are tuned for that shape: permissive CORS for the renderer's
// dev-server origin and per-IP rate limiting that only matters when something
// other than the display client starts hammering the control endpoints.
package middleware
