package auth

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenTTL is how long a session token stays valid.
const SessionTokenTTL = 24 * time.Hour

// RoleSession is the role of tokens handed to a browser shell session.
const RoleSession = "session"

// ErrMissingToken is returned when a request carries no bearer token.
var ErrMissingToken = errors.New("missing token")

// JWTClaims represents the claims in our JWT token
type JWTClaims struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// JWTSecret signs every token. LoadSecretFromEnv replaces it with
// JWT_SECRET.
var JWTSecret = []byte("bondly-dev-secret")

// LoadSecretFromEnv sets JWTSecret from JWT_SECRET. It reports whether the
// variable was set.
func LoadSecretFromEnv() bool {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return false
	}
	JWTSecret = []byte(secret)
	return true
}

// GenerateSessionToken generates a JWT token for a shell session
func GenerateSessionToken(sessionID string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		SessionID: sessionID,
		Role:      RoleSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.SessionID != "" {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
