package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/socvr/chatbot-go/pkg/command"
	"github.com/socvr/chatbot-go/pkg/config"
	"github.com/socvr/chatbot-go/pkg/server/middleware"
	"github.com/socvr/chatbot-go/pkg/store"
)

type Server struct {
	Router        *mux.Router
	Store         store.Store
	Dispatcher    *command.Dispatcher
	Config        *config.ChatbotConfig
	JWTMiddleware *middleware.JWTAuthenticator
	Log           *zap.Logger
	srv           *http.Server
}

func NewServer(
	st store.Store,
	dispatcher *command.Dispatcher,
	cfg *config.ChatbotConfig,
	log *zap.Logger,
	host string,
	port string,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	router := mux.NewRouter().UseEncodedPath()
	s := &Server{
		Router:        router,
		Store:         st,
		Dispatcher:    dispatcher,
		Config:        cfg,
		JWTMiddleware: middleware.NewJWTAuthenticator(cfg.WebhookSecret),
		Log:           log,
	}
	s.srv = &http.Server{
		Handler: s.Handler(),
		Addr:    net.JoinHostPort(host, port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return s
}

// Handler returns the router wrapped in the access log, panic recovery and
// trusted proxy handling
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router
	h = trustedProxyHeaders(s.Config, h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(s.Log)))(h)
	return handlers.LoggingHandler(zap.NewStdLog(s.Log).Writer(), h)
}

func (s *Server) Start() error {
	s.Log.Info("listening", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// trustedProxyHeaders honors X-Forwarded-For and friends only when the
// immediate peer is a configured proxy
func trustedProxyHeaders(cfg *config.ChatbotConfig, next http.Handler) http.Handler {
	proxied := handlers.ProxyHeaders(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if cfg != nil && cfg.IsTrustedProxy(host) {
			proxied.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
