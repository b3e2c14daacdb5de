// Package server assembles the termhost daemon: configuration, logging,
// metrics, the PTY service, the workspace controller, and the HTTP
// surface the display client connects to.
//
// Server Lifecycle:
//  1. Load configuration from file/environment
//  2. Initialize logger and metrics
//  3. Build the PTY service, state store, theme manager, and recorder
//  4. Start the workspace controller event loop
//  5. Setup HTTP routes and middleware
//  6. Serve until signalled, then shut down in reverse order
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
