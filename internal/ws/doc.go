// Package ws bridges the display client's WebSocket to the workspace
// controller.
//
// One connection is active at a time; a new connection replaces the
// previous one. Frames are JSON {type, payload} envelopes decoded by
// internal/protocol. Inbound frames become controller commands;
// outbound messages from the controller are written by a per-connection
// pump goroutine. A client that cannot drain its send buffer is
// disconnected rather than allowed to stall the controller loop.
//
// Example Usage:
//
//	handler := ws.NewHandler(ctrl, logger, metrics)
//	router.GET("/stream", handler.HandleConnection)
package ws
