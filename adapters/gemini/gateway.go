package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/metrics"
)

var tracer = otel.Tracer("github.com/Naimurthedang/bondly-main/adapters/gemini")

// Gateway implements repositories.Gateway using Google's Gemini API
type Gateway struct {
	mu     sync.RWMutex
	client *genai.Client
	config GeminiConfig
	logger *zap.Logger
}

var _ repositories.Gateway = (*Gateway)(nil)

// NewGateway creates a new Gemini gateway
func NewGateway(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*Gateway, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}
	config = withDefaults(config, logger)
	logger.Info("Using hardcoded safety settings")

	client, err := newClient(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Gateway{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

func newClient(ctx context.Context, config GeminiConfig) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// SetAPIKey rebuilds the client with a new key. It is a no-op when the key
// did not change.
func (g *Gateway) SetAPIKey(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: empty API key", ErrUnauthorized)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if apiKey == g.config.APIKey {
		return nil
	}

	config := g.config
	config.APIKey = apiKey
	client, err := newClient(ctx, config)
	if err != nil {
		return err
	}
	g.client = client
	g.config = config
	g.logger.Info("Gemini client rebuilt with new API key")
	return nil
}

// HasAPIKey reports whether a key is configured.
func (g *Gateway) HasAPIKey() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config.APIKey != ""
}

func (g *Gateway) current() (*genai.Client, GeminiConfig) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.client, g.config
}

// observe wraps one gateway operation with a span, metrics and error
// classification.
func (g *Gateway) observe(ctx context.Context, op, model string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "gemini."+op, trace.WithAttributes(
		attribute.String("gemini.model", model),
	))
	defer span.End()

	started := time.Now()
	err := classifyError(fn(ctx))
	metrics.ObserveGateway(op, started, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.Error("Gemini call failed",
			zap.String("operation", op),
			zap.String("model", model),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return err
	}

	g.logger.Debug("Gemini call succeeded",
		zap.String("operation", op),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}

// generate runs a single GenerateContent call under the configured timeout.
func (g *Gateway) generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	client, config := g.current()
	if cfg.SafetySettings == nil {
		cfg.SafetySettings = GeminiHardcodedConfig.SafetySettings
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(config.TimeoutSeconds)*time.Second)
	defer cancel()

	resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}
	return resp, nil
}

// generateJSON asks model for a reply shaped by schema and decodes it into v.
// It returns the grounding sources when search was used.
func (g *Gateway) generateJSON(ctx context.Context, model, prompt string, schema *responseSchema, search bool, v any) ([]entities.GroundingSource, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(GeminiHardcodedConfig.SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature()),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema.gemini,
	}
	if search {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := g.generate(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, err
	}
	if err := schema.decode(responseText(resp), v); err != nil {
		return nil, err
	}
	return groundingSources(resp), nil
}

func (g *Gateway) temperature() float32 {
	_, config := g.current()
	return config.Temperature
}

func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func inlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			return p.InlineData
		}
	}
	return nil
}

func groundingSources(resp *genai.GenerateContentResponse) []entities.GroundingSource {
	md := resp.Candidates[0].GroundingMetadata
	if md == nil {
		return nil
	}
	var sources []entities.GroundingSource
	for _, chunk := range md.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, entities.GroundingSource{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return sources
}
