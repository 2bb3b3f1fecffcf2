package api

import "time"

// TokenRequest is the payload for minting a room join token.
type TokenRequest struct {
	Room           string `json:"room" validate:"required"`
	Identity       string `json:"identity" validate:"required"`
	ConnectionType string `json:"connection_type,omitempty"`
}

// TokenResponse carries a freshly minted join token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Room      string    `json:"room"`
	Identity  string    `json:"identity"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
