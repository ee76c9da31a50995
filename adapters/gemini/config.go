package gemini

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultTextModel        = "gemini-3-flash-preview"
	defaultProModel         = "gemini-3-pro-preview"
	defaultImageModel       = "gemini-2.5-flash-image"
	defaultTTSModel         = "gemini-2.5-flash-preview-tts"
	defaultVideoModel       = "veo-3.1-fast-generate-preview"
	defaultTimeoutSeconds   = 60
	defaultVideoPollSeconds = 10
	defaultVideoTimeout     = 600
	defaultTemperature      = 0.8
)

// GeminiConfig holds configuration for the Gemini gateway
// Required fields:
// - APIKey: Google AI API key
// Optional fields fall back to the defaults above.
type GeminiConfig struct {
	APIKey              string
	BaseURL             string // Optional: overrides the API endpoint
	TextModel           string
	ProModel            string
	ImageModel          string
	TTSModel            string
	VideoModel          string
	Temperature         float32
	TimeoutSeconds      int
	VideoPollSeconds    int
	VideoTimeoutSeconds int
}

// GeminiHardcodedConfig holds settings that are not configurable at runtime.
// Every feature talks to young children, so the safety thresholds are strict.
var GeminiHardcodedConfig = struct {
	SafetySettings    []*genai.SafetySetting
	SystemInstruction string
	PlaceholderImage  string
	VideoFallbackText string
}{
	SafetySettings: []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockLowAndAbove},
	},
	SystemInstruction: "You create gentle, age-appropriate content for babies and toddlers and practical, kind advice for their parents.",
	PlaceholderImage:  "https://picsum.photos/400/400",
	VideoFallbackText: "I see a happy moment!",
}

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
	}

	if config.Temperature != 0 && (config.Temperature < 0 || config.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", config.Temperature)
	}

	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}

	if config.VideoPollSeconds < 0 {
		return fmt.Errorf("video poll interval must be positive, got %d", config.VideoPollSeconds)
	}

	if config.VideoTimeoutSeconds < 0 {
		return fmt.Errorf("video timeout must be positive, got %d", config.VideoTimeoutSeconds)
	}

	return nil
}

// NewGeminiConfigFromEnv creates a new GeminiConfig from environment variables
func NewGeminiConfigFromEnv() GeminiConfig {
	config := GeminiConfig{
		APIKey:     os.Getenv("GEMINI_API_KEY"),
		BaseURL:    os.Getenv("GEMINI_BASE_URL"),
		TextModel:  os.Getenv("GEMINI_TEXT_MODEL"),
		ProModel:   os.Getenv("GEMINI_PRO_MODEL"),
		ImageModel: os.Getenv("GEMINI_IMAGE_MODEL"),
		TTSModel:   os.Getenv("GEMINI_TTS_MODEL"),
		VideoModel: os.Getenv("GEMINI_VIDEO_MODEL"),
	}

	if v := os.Getenv("GEMINI_TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 32); err == nil {
			config.Temperature = float32(t)
		}
	}
	config.TimeoutSeconds = atoiEnv("GEMINI_TIMEOUT_SECONDS")
	config.VideoPollSeconds = atoiEnv("GEMINI_VIDEO_POLL_SECONDS")
	config.VideoTimeoutSeconds = atoiEnv("GEMINI_VIDEO_TIMEOUT_SECONDS")

	return config
}

func atoiEnv(key string) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// withDefaults returns config with every empty optional field set, logging
// each default that was applied.
func withDefaults(config GeminiConfig, logger *zap.Logger) GeminiConfig {
	defaultString := func(field *string, def, name string) {
		if *field == "" {
			*field = def
			logger.Info("Using default "+name, zap.String(name, def))
		}
	}
	defaultInt := func(field *int, def int, name string) {
		if *field == 0 {
			*field = def
			logger.Info("Using default "+name, zap.Int(name, def))
		}
	}

	defaultString(&config.TextModel, defaultTextModel, "textModel")
	defaultString(&config.ProModel, defaultProModel, "proModel")
	defaultString(&config.ImageModel, defaultImageModel, "imageModel")
	defaultString(&config.TTSModel, defaultTTSModel, "ttsModel")
	defaultString(&config.VideoModel, defaultVideoModel, "videoModel")
	defaultInt(&config.TimeoutSeconds, defaultTimeoutSeconds, "timeoutSeconds")
	defaultInt(&config.VideoPollSeconds, defaultVideoPollSeconds, "videoPollSeconds")
	defaultInt(&config.VideoTimeoutSeconds, defaultVideoTimeout, "videoTimeoutSeconds")

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
		logger.Info("Using default temperature", zap.Float32("temperature", config.Temperature))
	}

	return config
}
