package repositories

import (
	"context"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

// Video is a generated clip as returned by the gateway.
type Video struct {
	Data     []byte
	MIMEType string
}

// SpeechSynthesizer turns text into a playable PCM data URI.
type SpeechSynthesizer interface {
	// GenerateSpeech returns a data URI of the form
	// data:audio/pcm;rate=24000;base64,...
	GenerateSpeech(ctx context.Context, text, voice string) (string, error)
}

// Transcriber converts 16 kHz mono LINEAR16 speech into text.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, pcm []byte) (string, error)
}

// Gateway is the hosted generative-AI service every feature talks to.
// Implementations validate each structured response against its schema and
// fail closed with ErrMalformedResponse.
type Gateway interface {
	SpeechSynthesizer
	Transcriber

	GenerateStorybook(ctx context.Context, profile entities.Profile, theme, moral string) (*entities.Storybook, error)
	GenerateSceneImage(ctx context.Context, prompt string) (string, error)
	GenerateLullaby(ctx context.Context, profile entities.Profile, mood string) (*entities.Lullaby, error)
	AnalyzeVideo(ctx context.Context, data []byte, mimeType string) (string, error)
	GetShoppingRecommendations(ctx context.Context, profile entities.Profile, query string) (*entities.ShoppingResult, error)
	GenerateParentingGuide(ctx context.Context, name string, age int, query string) (*entities.ParentingAdvice, error)
	GenerateToy(ctx context.Context, toyType entities.ToyType, profile entities.Profile, prompt string) (*entities.Toy, error)
	GetToyInteraction(ctx context.Context, toy entities.Toy, action string, profile entities.Profile) (*entities.ToyInteraction, error)
	GenerateFriendMessage(ctx context.Context, friend entities.Friend, text string, profile entities.Profile, history []entities.ChatLine) (*entities.FriendMessage, error)
	GenerateFruitVideo(ctx context.Context, fruit, language string) (*Video, error)
}

// CredentialSelector lets the user pick another API key after the gateway
// rejected the current one.
type CredentialSelector interface {
	HasCredentials() bool
	SelectCredentials(ctx context.Context) error
}
