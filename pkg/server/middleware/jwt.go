package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const bridgeKey contextKey = "bridge"

// JWTAuthenticator is middleware that validates the HS256 bearer tokens the
// chat bridge signs with the shared webhook secret
type JWTAuthenticator struct {
	secret []byte
	leeway time.Duration
}

// NewJWTAuthenticator creates a new JWT authenticator middleware
func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret), leeway: 30 * time.Second}
}

// BridgeFromContext returns the subject of the token that authenticated the
// request
func BridgeFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(bridgeKey).(string)
	return sub, ok
}

// Verify parses tokenString and returns its subject
func (j *JWTAuthenticator) Verify(tokenString string) (string, error) {
	if len(j.secret) == 0 {
		return "", errors.New("no webhook secret configured")
	}
	token, err := jwt.Parse(
		tokenString,
		func(*jwt.Token) (interface{}, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.leeway),
	)
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// Middleware returns an HTTP middleware that validates JWT tokens
func (j *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if len(authHeader) == 0 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Authorization missing"))
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Malformed authorization header"))
			return
		}

		sub, err := j.Verify(strings.TrimSpace(tokenStr))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Token expired"))
			return
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Invalid signature"))
			return
		case err != nil:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Malformed authorization token"))
			return
		}

		ctx := context.WithValue(r.Context(), bridgeKey, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
