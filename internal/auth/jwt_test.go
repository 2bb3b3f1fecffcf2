package auth

import (
	"testing"
)

func TestJoinTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJoinToken("room-7", "recruiter-1", "telephony")
	if err != nil {
		t.Fatalf("GenerateJoinToken() error = %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if claims.Room != "room-7" {
		t.Errorf("Expected room room-7, got %s", claims.Room)
	}
	if claims.Identity != "recruiter-1" {
		t.Errorf("Expected identity recruiter-1, got %s", claims.Identity)
	}
	if claims.ConnectionType != "telephony" {
		t.Errorf("Expected connection type telephony, got %s", claims.ConnectionType)
	}
	if claims.Role != "participant" {
		t.Errorf("Expected role participant, got %s", claims.Role)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	token, err := GenerateJoinToken("room", "identity", "")
	if err != nil {
		t.Fatalf("GenerateJoinToken() error = %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-b")
	if _, err := ValidateToken(token); err == nil {
		t.Error("Expected error for token signed with a different secret")
	}
}
