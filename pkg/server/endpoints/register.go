package endpoints

import (
	"github.com/socvr/chatbot-go/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterMessagesEndpoint(srv)
	RegisterStatusEndpoints(srv)
	RegisterCommandsEndpoint(srv)
}
