package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSessionToken(t *testing.T) {
	token, err := GenerateSessionToken("session-123")
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.SessionID != "session-123" {
		t.Errorf("Expected session ID session-123, got %s", claims.SessionID)
	}
	if claims.Role != RoleSession {
		t.Errorf("Expected role %s, got %s", RoleSession, claims.Role)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		SessionID: "session-123",
		Role:      RoleSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, _ := expired.SignedString(JWTSecret)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{SessionID: "session-123"})
	foreignToken, _ := foreign.SignedString([]byte("someone else"))

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{Role: RoleSession})
	anonymousToken, _ := anonymous.SignedString(JWTSecret)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expiredToken},
		{"wrong secret", foreignToken},
		{"no session", anonymousToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(tt.token); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	if got, err := BearerToken("Bearer abc"); err != nil || got != "abc" {
		t.Errorf("BearerToken() = %q, %v", got, err)
	}
	for _, header := range []string{"", "Basic abc", "Bearer "} {
		if _, err := BearerToken(header); !errors.Is(err, ErrMissingToken) {
			t.Errorf("BearerToken(%q): expected ErrMissingToken, got %v", header, err)
		}
	}
}

func TestLoadSecretFromEnv(t *testing.T) {
	prev := JWTSecret
	t.Cleanup(func() { JWTSecret = prev })

	t.Setenv("JWT_SECRET", "")
	if LoadSecretFromEnv() {
		t.Error("Expected no secret loaded from an empty variable")
	}

	t.Setenv("JWT_SECRET", "from-env")
	if !LoadSecretFromEnv() || string(JWTSecret) != "from-env" {
		t.Errorf("Expected secret from env, got %q", JWTSecret)
	}
}
