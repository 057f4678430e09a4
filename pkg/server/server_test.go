package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/socvr/chatbot-go/pkg/config"
)

func echoRemoteAddr() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.RemoteAddr))
	})
}

func TestTrustedProxyHeaders(t *testing.T) {
	cfg := &config.ChatbotConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	handler := trustedProxyHeaders(cfg, echoRemoteAddr())

	t.Run("honors forwarded header from trusted proxy", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.1.2.3:4000"
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "203.0.113.9", rec.Body.String())
	})

	t.Run("ignores forwarded header from anyone else", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "198.51.100.7:4000", rec.Body.String())
	})
}

func TestHandler_RecoversFromPanics(t *testing.T) {
	s := NewServer(nil, nil, &config.ChatbotConfig{}, nil, "127.0.0.1", "0")
	s.Router.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNewServer_Address(t *testing.T) {
	s := NewServer(nil, nil, &config.ChatbotConfig{}, nil, "0.0.0.0", "8080")
	assert.Equal(t, "0.0.0.0:8080", s.srv.Addr)
	assert.NotNil(t, s.JWTMiddleware)
}
