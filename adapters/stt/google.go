package stt

import (
	"context"
	"fmt"
	"io"
	"os"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/audio"
)

const (
	defaultLanguage  = "en-US"
	streamChunkBytes = 32000 // one second of 16 kHz LINEAR16
)

// GoogleConfig holds configuration for Google Cloud Speech-to-Text.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS.
type GoogleConfig struct {
	Language string
}

// NewGoogleConfigFromEnv creates a new GoogleConfig from environment variables
func NewGoogleConfigFromEnv() GoogleConfig {
	return GoogleConfig{Language: os.Getenv("GOOGLE_STT_LANGUAGE")}
}

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	language string
	logger   *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates a new Google Cloud transcriber
func NewGoogleSpeechToText(config GoogleConfig, logger *zap.Logger) *GoogleSpeechToText {
	language := config.Language
	if language == "" {
		language = defaultLanguage
		logger.Info("Using default language", zap.String("language", language))
	}
	return &GoogleSpeechToText{language: language, logger: logger}
}

// TranscribeAudio converts 16 kHz mono LINEAR16 audio to text by streaming
// it in one second chunks.
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, pcm []byte) (string, error) {
	stream, err := g.InitTranscribeStreaming(ctx, repositories.AudioConfig{
		SampleRate: audio.L16Mono16K.SampleRate,
		Encoding:   "LINEAR16",
		Language:   g.language,
	})
	if err != nil {
		return "", fmt.Errorf("failed to initialize streaming: %w", err)
	}

	for start := 0; start < len(pcm); start += streamChunkBytes {
		end := min(start+streamChunkBytes, len(pcm))
		if err := stream.Stream(pcm[start:end]); err != nil {
			stream.End()
			return "", fmt.Errorf("failed to stream audio data: %w", err)
		}
	}

	text, err := stream.End()
	if err != nil {
		return "", err
	}
	g.logger.Info("Transcription completed", zap.Int("audioBytes", len(pcm)), zap.Int("textLength", len(text)))
	return text, nil
}

// InitTranscribeStreaming opens a single-utterance recognition stream
func (g *GoogleSpeechToText) InitTranscribeStreaming(ctx context.Context, config repositories.AudioConfig) (repositories.SpeechToTextStreaming, error) {
	encoding, err := getAudioEncoding(config.Encoding)
	if err != nil {
		return nil, err
	}
	if config.Language == "" {
		config.Language = g.language
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	stream, err := client.StreamingRecognize(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create streaming recognize: %w", err)
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        encoding,
					SampleRateHertz: int32(config.SampleRate),
					LanguageCode:    config.Language,
				},
				InterimResults:  false,
				SingleUtterance: true,
			},
		},
	}); err != nil {
		stream.CloseSend()
		client.Close()
		return nil, fmt.Errorf("failed to send streaming config: %w", err)
	}

	s := &GoogleSpeechToTextStream{
		client:     client,
		stream:     stream,
		ctx:        ctx,
		resultChan: make(chan string, 1),
		errorChan:  make(chan error, 1),
	}
	go s.receiveResults()
	return s, nil
}

// GoogleSpeechToTextStream is one open recognition stream.
type GoogleSpeechToTextStream struct {
	client        *speech.Client
	stream        speechpb.Speech_StreamingRecognizeClient
	ctx           context.Context
	audioReceived bool
	resultChan    chan string
	errorChan     chan error
}

func (g *GoogleSpeechToTextStream) Stream(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	g.audioReceived = true

	if err := g.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: data,
		},
	}); err != nil {
		return fmt.Errorf("failed to send audio data: %w", err)
	}
	return nil
}

func (g *GoogleSpeechToTextStream) End() (string, error) {
	defer g.client.Close()

	if !g.audioReceived {
		g.stream.CloseSend()
		return "", fmt.Errorf("no audio data received")
	}

	if err := g.stream.CloseSend(); err != nil {
		return "", fmt.Errorf("failed to close send stream: %w", err)
	}

	select {
	case <-g.ctx.Done():
		return "", fmt.Errorf("context cancelled while waiting for result: %w", g.ctx.Err())
	case err := <-g.errorChan:
		return "", err
	case result := <-g.resultChan:
		if result == "" {
			return "", fmt.Errorf("no speech detected in audio")
		}
		return result, nil
	}
}

func (g *GoogleSpeechToTextStream) receiveResults() {
	var transcript string
	for {
		resp, err := g.stream.Recv()
		if err == io.EOF {
			g.resultChan <- transcript
			return
		}
		if err != nil {
			g.errorChan <- fmt.Errorf("failed to receive response: %w", err)
			return
		}

		for _, result := range resp.Results {
			if result.IsFinal && len(result.Alternatives) > 0 {
				transcript += result.Alternatives[0].Transcript
			}
		}
	}
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
