package endpoints

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/socvr/chatbot-go/pkg/server"
)

const pingTimeout = 5 * time.Second

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusResponse represents the response from /status
type StatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the health endpoint
func RegisterStatusEndpoints(s *server.Server) {
	// GET /status - Store health (no auth required)
	s.Router.HandleFunc("/status", handleStatus(s.Store, s.Log)).Methods("GET")
}

func handleStatus(p Pinger, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			log.Warn("store ping failed", zap.Error(err))
			respondWithJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "unavailable", Error: err.Error()})
			return
		}
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}
