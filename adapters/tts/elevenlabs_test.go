package tts

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Naimurthedang/bondly-main/internal/audio"
)

func TestNewElevenLabsTTS(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// Test without API key
	t.Setenv("ELEVEN_LABS_API_KEY", "")
	config := NewElevenLabsConfigFromEnv()
	_, err := NewElevenLabsTTS(config, logger)
	if err == nil {
		t.Error("Expected error when API key is not set")
	}

	// Test with API key
	t.Setenv("ELEVEN_LABS_API_KEY", "test-api-key")
	t.Setenv("ELEVEN_LABS_VOICE_MAP", "Kore=voice-kore, Puck=voice-puck,broken")

	config = NewElevenLabsConfigFromEnv()
	tts, err := NewElevenLabsTTS(config, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if tts.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", tts.apiKey)
	}
	if tts.voiceID != defaultVoiceID {
		t.Errorf("Expected default voice ID '%s', got '%s'", defaultVoiceID, tts.voiceID)
	}
	if tts.outputFormat != defaultOutputFormat {
		t.Errorf("Expected output format '%s', got '%s'", defaultOutputFormat, tts.outputFormat)
	}
	if len(tts.voices) != 2 || tts.voices["Puck"] != "voice-puck" {
		t.Errorf("unexpected voice map: %v", tts.voices)
	}
}

func TestValidateElevenLabsConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  ElevenLabsConfig
		wantErr bool
	}{
		{"valid", ElevenLabsConfig{APIKey: "k"}, false},
		{"stability out of range", ElevenLabsConfig{APIKey: "k", Stability: 1.5}, true},
		{"mp3 output", ElevenLabsConfig{APIKey: "k", OutputFormat: "mp3_44100_128"}, true},
		{"bad pcm rate", ElevenLabsConfig{APIKey: "k", OutputFormat: "pcm_fast"}, true},
		{"pcm 16k", ElevenLabsConfig{APIKey: "k", OutputFormat: "pcm_16000"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateElevenLabsConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateElevenLabsConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestElevenLabsTTS_SetVoiceSettings(t *testing.T) {
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	tts.SetVoiceSettings(0.8, 0.9)

	if tts.stability != 0.8 {
		t.Errorf("Expected stability 0.8, got %f", tts.stability)
	}
	if tts.clarity != 0.9 {
		t.Errorf("Expected clarity 0.9, got %f", tts.clarity)
	}
}

func TestElevenLabsTTS_ConvertTextToSpeech_EmptyText(t *testing.T) {
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	ctx := context.Background()
	if _, err := tts.ConvertTextToSpeech(ctx, ""); err == nil {
		t.Error("Expected error for empty text")
	}
	if _, err := tts.GenerateSpeech(ctx, "   ", "Kore"); err == nil {
		t.Error("Expected error for whitespace-only text")
	}
}

func TestElevenLabsTTS_GenerateSpeech(t *testing.T) {
	pcm := make([]byte, 9600)
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"text":"Good night, Lily"`) {
			t.Errorf("unexpected request body: %s", body)
		}
		if r.Header.Get("xi-api-key") != "test-api-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "audio/pcm")
		_, _ = w.Write(pcm)
	}))
	defer srv.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: srv.URL,
		Voices:     map[string]string{"Kore": "voice-kore"},
		ChunkSize:  1000,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	uri, err := tts.GenerateSpeech(context.Background(), "Good night, Lily", "Kore")
	if err != nil {
		t.Fatalf("GenerateSpeech failed: %v", err)
	}
	if gotPath != "/text-to-speech/voice-kore/stream" {
		t.Errorf("Expected mapped voice in path, got %s", gotPath)
	}

	buf, err := audio.DecodeSpeech(uri, audio.L16Mono16K)
	if err != nil {
		t.Fatalf("DecodeSpeech failed: %v", err)
	}
	if buf.SampleRate != 24000 || buf.FrameCount != 4800 {
		t.Errorf("Expected 4800 frames at 24000 Hz, got %d at %d", buf.FrameCount, buf.SampleRate)
	}
}

func TestElevenLabsTTS_GenerateSpeech_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key", APIBaseURL: srv.URL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if _, err := tts.GenerateSpeech(context.Background(), "Hello", "Puck"); err == nil {
		t.Error("Expected error when the API rejects the request")
	}
}
