package gemini

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/repositories"
)

// KeySetter is implemented by gateways whose API key can be swapped at
// runtime.
type KeySetter interface {
	SetAPIKey(ctx context.Context, apiKey string) error
	HasAPIKey() bool
}

// EnvCredentialSelector re-reads the env files and hands a changed
// GEMINI_API_KEY to the gateway.
type EnvCredentialSelector struct {
	target KeySetter
	files  []string
	logger *zap.Logger
}

var _ repositories.CredentialSelector = (*EnvCredentialSelector)(nil)

// NewEnvCredentialSelector creates a new selector. With no files it reads
// .env from the working directory.
func NewEnvCredentialSelector(target KeySetter, logger *zap.Logger, files ...string) *EnvCredentialSelector {
	return &EnvCredentialSelector{target: target, files: files, logger: logger}
}

// HasCredentials reports whether the gateway has a key at all.
func (s *EnvCredentialSelector) HasCredentials() bool {
	return s.target.HasAPIKey()
}

// SelectCredentials reloads the key from the environment files.
func (s *EnvCredentialSelector) SelectCredentials(ctx context.Context) error {
	if err := godotenv.Overload(s.files...); err != nil {
		s.logger.Warn("Could not reload env file", zap.Strings("files", s.files), zap.Error(err))
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrUnauthorized)
	}

	s.logger.Info("Selecting Gemini credentials from environment")
	return s.target.SetAPIKey(ctx, apiKey)
}
