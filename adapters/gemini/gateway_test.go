package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/internal/audio"
)

// fakeGemini answers every generateContent call with the parts returned by
// reply.
func fakeGemini(t *testing.T, status int, reply func(body string) []map[string]any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r.Body)

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": reply(buf.String())},
				"finishReason": "STOP",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestGateway(t *testing.T, baseURL string) *Gateway {
	t.Helper()
	g, err := NewGateway(context.Background(), GeminiConfig{APIKey: "test-key", BaseURL: baseURL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewGateway failed: %v", err)
	}
	return g
}

func TestGateway_GenerateLullaby(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusOK, func(body string) []map[string]any {
		if !strings.Contains(body, "Write a soothing 4-line lullaby for Lily (2y). Mood: sleepy.") {
			t.Errorf("unexpected prompt in request: %s", body)
		}
		return []map[string]any{{"text": `{"lyrics":"Hush little Lily","mood":"sleepy"}`}}
	})
	g := newTestGateway(t, srv.URL)

	got, err := g.GenerateLullaby(context.Background(), entities.DefaultProfile(), "sleepy")
	if err != nil {
		t.Fatalf("GenerateLullaby failed: %v", err)
	}
	if got.Lyrics != "Hush little Lily" || got.Mood != "sleepy" {
		t.Errorf("unexpected lullaby: %+v", got)
	}
}

func TestGateway_MalformedResponse(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusOK, func(string) []map[string]any {
		return []map[string]any{{"text": `{"response":"Boom","animation":"explode"}`}}
	})
	g := newTestGateway(t, srv.URL)

	toy := entities.Toy{Name: "Pixel Bear", Status: entities.ToyStatusHappy}
	_, err := g.GetToyInteraction(context.Background(), toy, "Tickle the toy", entities.DefaultProfile())
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestGateway_Unauthorized(t *testing.T) {
	srv, calls := fakeGemini(t, http.StatusForbidden, nil)
	g := newTestGateway(t, srv.URL)

	_, err := g.GenerateLullaby(context.Background(), entities.DefaultProfile(), "sleepy")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected exactly one request without retries, got %d", calls.Load())
	}
}

func TestGateway_GenerateSpeech(t *testing.T) {
	pcm := make([]byte, 480)
	srv, _ := fakeGemini(t, http.StatusOK, func(string) []map[string]any {
		return []map[string]any{{"inlineData": map[string]any{
			"mimeType": "audio/L16;codec=pcm;rate=24000",
			"data":     audio.EncodeBase64(pcm),
		}}}
	})
	g := newTestGateway(t, srv.URL)

	uri, err := g.GenerateSpeech(context.Background(), "Hello Lily", "Kore")
	if err != nil {
		t.Fatalf("GenerateSpeech failed: %v", err)
	}
	if !strings.HasPrefix(uri, "data:audio/pcm;rate=24000;base64,") {
		t.Errorf("unexpected data URI prefix: %.40s", uri)
	}

	buf, err := audio.DecodeSpeech(uri, audio.L16Mono24K)
	if err != nil {
		t.Fatalf("DecodeSpeech failed: %v", err)
	}
	if buf.FrameCount != 240 {
		t.Errorf("Expected 240 frames, got %d", buf.FrameCount)
	}
}

func TestGateway_GenerateSpeechUnknownAudio(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusOK, func(string) []map[string]any {
		return []map[string]any{{"inlineData": map[string]any{
			"mimeType": "audio/mpeg",
			"data":     audio.EncodeBase64([]byte("ID3")),
		}}}
	})
	g := newTestGateway(t, srv.URL)

	uri, err := g.GenerateSpeech(context.Background(), "Hello Lily", "Kore")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
	if uri != "" {
		t.Errorf("Expected no data URI, got %.40s", uri)
	}
}

func TestGateway_SceneImagePlaceholder(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusOK, func(string) []map[string]any {
		return []map[string]any{{"text": "I cannot draw that."}}
	})
	g := newTestGateway(t, srv.URL)

	url, err := g.GenerateSceneImage(context.Background(), "A sleepy moon")
	if err != nil {
		t.Fatalf("GenerateSceneImage failed: %v", err)
	}
	if url != GeminiHardcodedConfig.PlaceholderImage {
		t.Errorf("Expected placeholder, got %s", url)
	}
}

func TestGateway_SetAPIKey(t *testing.T) {
	g := newTestGateway(t, "http://127.0.0.1:1")

	if err := g.SetAPIKey(context.Background(), ""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for empty key, got %v", err)
	}
	if err := g.SetAPIKey(context.Background(), "next-key"); err != nil {
		t.Fatalf("SetAPIKey failed: %v", err)
	}
	if _, config := g.current(); config.APIKey != "next-key" {
		t.Errorf("Expected key to be replaced, got %s", config.APIKey)
	}
}

func TestValidateGeminiConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  GeminiConfig
		wantErr bool
	}{
		{"valid", GeminiConfig{APIKey: "k"}, false},
		{"missing key", GeminiConfig{}, true},
		{"bad temperature", GeminiConfig{APIKey: "k", Temperature: 3}, true},
		{"negative timeout", GeminiConfig{APIKey: "k", TimeoutSeconds: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGeminiConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGeminiConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
