package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/audio"
)

// MockGateway is a canned implementation of repositories.Gateway for local
// runs and tests.
type MockGateway struct {
	// Err, when set, is returned by every call.
	Err error
	// Errs overrides Err per operation name, e.g. "storybook".
	Errs map[string]error
	// Hold, when set, blocks every call until it is closed.
	Hold chan struct{}

	mu    sync.Mutex
	calls map[string]int
}

var _ repositories.Gateway = (*MockGateway)(nil)

// NewMockGateway creates a new mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Calls returns how often op was invoked.
func (m *MockGateway) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// SetError makes op fail with err. A nil err clears it.
func (m *MockGateway) SetError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Errs == nil {
		m.Errs = make(map[string]error)
	}
	m.Errs[op] = err
}

func (m *MockGateway) enter(ctx context.Context, op string) error {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
	err, ok := m.Errs[op]
	if !ok {
		err = m.Err
	}
	hold := m.Hold
	m.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// MockSpeech is the data URI every mock speech call returns: 100ms of
// silence at 24 kHz.
var MockSpeech = audio.EncodeDataURI(audio.L16Mono24K.MIMEType(), make([]byte, 4800))

func (m *MockGateway) GenerateStorybook(ctx context.Context, profile entities.Profile, theme, moral string) (*entities.Storybook, error) {
	if err := m.enter(ctx, "storybook"); err != nil {
		return nil, err
	}
	book := &entities.Storybook{Title: fmt.Sprintf("%s and the %s", profile.Name, theme), Theme: theme}
	for i := 1; i <= 5; i++ {
		book.Scenes = append(book.Scenes, entities.StoryScene{
			Text:        fmt.Sprintf("Scene %d: %s learns that %s.", i, profile.Name, strings.ToLower(moral)),
			ImagePrompt: fmt.Sprintf("%s, scene %d", theme, i),
		})
	}
	return book, nil
}

func (m *MockGateway) GenerateSceneImage(ctx context.Context, prompt string) (string, error) {
	if err := m.enter(ctx, "scene_image"); err != nil {
		return "", err
	}
	return GeminiHardcodedConfig.PlaceholderImage, nil
}

func (m *MockGateway) GenerateLullaby(ctx context.Context, profile entities.Profile, mood string) (*entities.Lullaby, error) {
	if err := m.enter(ctx, "lullaby"); err != nil {
		return nil, err
	}
	return &entities.Lullaby{
		Lyrics: fmt.Sprintf("Hush little %s, close your eyes,\nStars are twinkling in the skies,\nMoon is singing soft and low,\nOff to dreamland now you go.", profile.Name),
		Mood:   mood,
	}, nil
}

func (m *MockGateway) GenerateSpeech(ctx context.Context, text, voice string) (string, error) {
	if err := m.enter(ctx, "speech"); err != nil {
		return "", err
	}
	return MockSpeech, nil
}

func (m *MockGateway) TranscribeAudio(ctx context.Context, pcm []byte) (string, error) {
	if err := m.enter(ctx, "transcribe"); err != nil {
		return "", err
	}
	if len(pcm) == 0 {
		return "", fmt.Errorf("no audio data received")
	}
	return "How can I help my baby sleep?", nil
}

func (m *MockGateway) AnalyzeVideo(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := m.enter(ctx, "analyze_video"); err != nil {
		return "", err
	}
	return "Your baby is reaching for a toy and practising hand-eye coordination.", nil
}

func (m *MockGateway) GetShoppingRecommendations(ctx context.Context, profile entities.Profile, query string) (*entities.ShoppingResult, error) {
	if err := m.enter(ctx, "shop"); err != nil {
		return nil, err
	}
	return &entities.ShoppingResult{
		Advice: fmt.Sprintf("Soft, safe picks for %s.", profile.Name),
		Products: []entities.ProductRecommendation{
			{ID: "p1", Name: "Cloud Romper", Price: "$24", Description: "Organic cotton romper", Category: entities.CategoryClothing, ImageURL: GeminiHardcodedConfig.PlaceholderImage},
			{ID: "p2", Name: "Shape Sorter", Price: "$18", Description: "Wooden shape sorter", Category: entities.CategoryEducational, ImageURL: GeminiHardcodedConfig.PlaceholderImage},
		},
		Sources: []entities.GroundingSource{{URI: "https://example.com/baby-gear", Title: "Baby gear guide"}},
	}, nil
}

func (m *MockGateway) GenerateParentingGuide(ctx context.Context, name string, age int, query string) (*entities.ParentingAdvice, error) {
	if err := m.enter(ctx, "guide"); err != nil {
		return nil, err
	}
	return &entities.ParentingAdvice{
		Summary:         fmt.Sprintf("Children around %d often go through this.", age),
		Tips:            []string{"Keep a steady routine", "Offer comfort and patience"},
		BondingActivity: fmt.Sprintf("Read a picture book with %s.", name),
		SafetyNote:      "Talk to your pediatrician if you are worried.",
	}, nil
}

func (m *MockGateway) GenerateToy(ctx context.Context, toyType entities.ToyType, profile entities.Profile, prompt string) (*entities.Toy, error) {
	if err := m.enter(ctx, "toy"); err != nil {
		return nil, err
	}
	return &entities.Toy{
		ID:          "toy-1",
		Name:        "Pixel " + string(toyType),
		Type:        toyType,
		Personality: "Cheerful and curious",
		ImageURL:    GeminiHardcodedConfig.PlaceholderImage,
		VoiceStyle:  "squeaky",
		Status:      entities.ToyStatusHappy,
	}, nil
}

func (m *MockGateway) GetToyInteraction(ctx context.Context, toy entities.Toy, action string, profile entities.Profile) (*entities.ToyInteraction, error) {
	if err := m.enter(ctx, "toy_interaction"); err != nil {
		return nil, err
	}
	animation := entities.AnimationBounce
	switch {
	case action == entities.RepairAction:
		animation = entities.AnimationRepair
	case strings.Contains(action, "too hard"):
		animation = entities.AnimationShatter
	}
	return &entities.ToyInteraction{
		Response:  fmt.Sprintf("%s giggles at %s!", toy.Name, profile.Name),
		Animation: animation,
	}, nil
}

func (m *MockGateway) GenerateFriendMessage(ctx context.Context, friend entities.Friend, text string, profile entities.Profile, history []entities.ChatLine) (*entities.FriendMessage, error) {
	if err := m.enter(ctx, "friend_message"); err != nil {
		return nil, err
	}
	return &entities.FriendMessage{
		Text: fmt.Sprintf("Hi %s! %s loves talking about %s.", profile.Name, friend.Name, text),
		Mood: entities.MoodHappy,
	}, nil
}

func (m *MockGateway) GenerateFruitVideo(ctx context.Context, fruit, language string) (*repositories.Video, error) {
	if err := m.enter(ctx, "fruit_video"); err != nil {
		return nil, err
	}
	return &repositories.Video{Data: []byte("mock-video-" + fruit), MIMEType: "video/mp4"}, nil
}
