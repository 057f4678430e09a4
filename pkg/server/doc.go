// Package server provides the HTTP server the chat bridge talks to.
//
// The bridge speaks the chat protocol and forwards every room message to the
// bot as a webhook call. The server routes with gorilla/mux, logs requests
// with gorilla/handlers and authenticates the bridge with an HS256 bearer
// token.
//
// # Server Setup
//
//	srv := server.NewServer(st, dispatcher, cfg, log, "0.0.0.0", "8080")
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal("server stopped", zap.Error(err))
//	}
//
// # Endpoints
//
//   - POST /rooms/{room}/messages - dispatch a chat message, return the replies
//   - GET /status - store health
//   - GET /commands - HTML reference of the command registry
package server
