// Package main is the entry point for the termhost daemon.
//
// termhost owns the real terminal state: it spawns shell processes on
// PTYs, tracks sessions, split groups, ordering, and selection, and
// persists the arrangement across restarts. A display client connects
// over WebSocket, renders what the host tells it to, and sends user
// intent back as messages.
//
// Architecture:
//
//	Display client (renderer) ⇄ WebSocket ⇄ termhost ⇄ PTYs (shells)
//
// Configuration:
//   - TOML file in the config directory
//   - TERMHOST_* environment variables (override the file)
//   - CLI flags (override everything)
//
// Usage:
//
//	# Defaults: loopback, port 8818
//	./termhost
//
//	# Override the listen address
//	./termhost -host 127.0.0.1 -port 9000
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown (snapshot persisted)
package main
