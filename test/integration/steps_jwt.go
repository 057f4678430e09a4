package integration

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// bridgeToken signs a token the way the chat bridge does
func bridgeToken(secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "chat-bridge", "sub": "integration", "iat": time.Now().Unix(), "exp": time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func (s *StepsContext) userSaysWithAnInvalidToken(profileID int, content string) error {
	token, err := bridgeToken("not-the-shared-secret", time.Minute)
	if err != nil {
		return err
	}
	return s.postMessage(profileID, content, "Bearer "+token)
}

func (s *StepsContext) userSaysWithAnExpiredToken(profileID int, content string) error {
	token, err := bridgeToken(webhookSecret, -time.Minute)
	if err != nil {
		return err
	}
	return s.postMessage(profileID, content, "Bearer "+token)
}
