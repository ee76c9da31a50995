package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/adapters"
	"github.com/Naimurthedang/bondly-main/adapters/gemini"
	"github.com/Naimurthedang/bondly-main/adapters/media"
	"github.com/Naimurthedang/bondly-main/adapters/mongo"
	"github.com/Naimurthedang/bondly-main/adapters/speaker"
	"github.com/Naimurthedang/bondly-main/adapters/stt"
	"github.com/Naimurthedang/bondly-main/adapters/tts"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/audio"
)

const defaultMediaDir = "./data/media"

// newGateway returns the Gemini gateway, or the mock when USE_MOCK_GATEWAY
// is set. The credential selector is nil for the mock.
func newGateway(ctx context.Context, logger *zap.Logger) (repositories.Gateway, repositories.CredentialSelector, error) {
	if envBool("USE_MOCK_GATEWAY") {
		logger.Warn("Using mock AI gateway")
		return gemini.NewMockGateway(), nil, nil
	}

	gateway, err := gemini.NewGateway(ctx, gemini.NewGeminiConfigFromEnv(), logger)
	if err != nil {
		return nil, nil, err
	}
	return gateway, gemini.NewEnvCredentialSelector(gateway, logger), nil
}

// newSpeech selects the speech provider from SPEECH_PROVIDER.
func newSpeech(gateway repositories.Gateway, logger *zap.Logger) (repositories.SpeechSynthesizer, error) {
	switch provider := os.Getenv("SPEECH_PROVIDER"); provider {
	case "", "gemini":
		return gateway, nil
	case "elevenlabs":
		return tts.NewElevenLabsTTS(tts.NewElevenLabsConfigFromEnv(), logger)
	default:
		return nil, fmt.Errorf("unknown SPEECH_PROVIDER %q", provider)
	}
}

// newTranscriber selects the transcriber from TRANSCRIBER.
func newTranscriber(gateway repositories.Gateway, logger *zap.Logger) repositories.Transcriber {
	if os.Getenv("TRANSCRIBER") == "google" {
		return stt.NewGoogleSpeechToText(stt.NewGoogleConfigFromEnv(), logger)
	}
	return gateway
}

// newSessionRepository selects the session store from SESSION_STORE.
func newSessionRepository(ctx context.Context, logger *zap.Logger) (repositories.SessionRepository, func(), error) {
	switch store := os.Getenv("SESSION_STORE"); store {
	case "", "memory":
		return adapters.NewMemorySessionRepository(), func() {}, nil
	case "mongo":
		client, err := mongo.NewClient(ctx, mongo.NewMongoConfigFromEnv(), logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(ctx); err != nil {
				logger.Warn("Failed to close MongoDB client", zap.Error(err))
			}
		}
		return mongo.NewSessionRepository(client.Database, logger), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown SESSION_STORE %q", store)
	}
}

// newMediaStore selects the media blob store from MEDIA_STORE.
func newMediaStore(logger *zap.Logger) (repositories.MediaStore, func(), error) {
	switch store := os.Getenv("MEDIA_STORE"); store {
	case "", "badger":
		dir := os.Getenv("MEDIA_DIR")
		if dir == "" {
			dir = defaultMediaDir
			logger.Info("Using default media directory", zap.String("dir", dir))
		}
		badgerStore, err := media.NewBadgerStore(media.BadgerConfig{
			Dir: dir,
			TTL: envMinutes("MEDIA_TTL_MINUTES", 0, logger),
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := badgerStore.Close(); err != nil {
				logger.Warn("Failed to close media store", zap.Error(err))
			}
		}
		return badgerStore, closeFn, nil
	case "s3":
		config := media.NewS3ConfigFromEnv()
		if err := media.ValidateS3Config(config); err != nil {
			return nil, nil, err
		}
		client, err := media.NewS3Client(config)
		if err != nil {
			return nil, nil, err
		}
		return media.NewS3Store(client, config.Bucket, config.Prefix, logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown MEDIA_STORE %q", store)
	}
}

// newPlayer returns a player on the host speaker when SPEAKER_PLAYBACK is
// set. Servers usually run without one.
func newPlayer(logger *zap.Logger) *audio.Player {
	if !envBool("SPEAKER_PLAYBACK") {
		return nil
	}
	logger.Info("Playing synthesized speech on the host speaker")
	return audio.NewPlayer(speaker.NewOutput(logger), logger)
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func envMinutes(key string, def time.Duration, logger *zap.Logger) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		logger.Warn("Ignoring invalid duration", zap.String("key", key), zap.String("value", raw))
		return def
	}
	return time.Duration(n) * time.Minute
}
