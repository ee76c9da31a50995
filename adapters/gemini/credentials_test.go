package gemini

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

type recordingKeySetter struct {
	key string
}

func (r *recordingKeySetter) SetAPIKey(_ context.Context, key string) error {
	r.key = key
	return nil
}

func (r *recordingKeySetter) HasAPIKey() bool { return r.key != "" }

func TestEnvCredentialSelector(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "old-key")

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("GEMINI_API_KEY=fresh-key\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	target := &recordingKeySetter{}
	selector := NewEnvCredentialSelector(target, zaptest.NewLogger(t), envFile)

	if selector.HasCredentials() {
		t.Error("Expected no credentials before selection")
	}
	if err := selector.SelectCredentials(context.Background()); err != nil {
		t.Fatalf("SelectCredentials failed: %v", err)
	}
	if target.key != "fresh-key" {
		t.Errorf("Expected fresh-key, got %q", target.key)
	}
	if !selector.HasCredentials() {
		t.Error("Expected credentials after selection")
	}
}

func TestEnvCredentialSelector_NoKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	selector := NewEnvCredentialSelector(&recordingKeySetter{}, zaptest.NewLogger(t),
		filepath.Join(t.TempDir(), "missing.env"))

	err := selector.SelectCredentials(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}
