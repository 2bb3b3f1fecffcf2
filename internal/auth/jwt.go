package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long a join token stays valid.
const TokenTTL = 2 * time.Hour

// Claims carried by a room join token.
type Claims struct {
	Room           string `json:"room"`
	Identity       string `json:"identity"`
	ConnectionType string `json:"connection_type,omitempty"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

func secret() []byte {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		return []byte(v)
	}
	return []byte("resume-agent-dev-secret")
}

// GenerateJoinToken mints a signed token that admits one participant into a
// room session.
func GenerateJoinToken(room, identity, connectionType string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Room:           room,
		Identity:       identity,
		ConnectionType: connectionType,
		Role:           "participant",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// ValidateToken parses and verifies a join token.
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
