package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

// GenerateStorybook writes a five scene story. Scene images are generated
// separately with GenerateSceneImage.
func (g *Gateway) GenerateStorybook(ctx context.Context, profile entities.Profile, theme, moral string) (*entities.Storybook, error) {
	_, config := g.current()
	prompt := fmt.Sprintf("Create a 5-scene storybook for a %d year old baby named %s. Theme: %s. Moral: %s. voxel style.",
		profile.Age, profile.Name, theme, moral)

	var book entities.Storybook
	err := g.observe(ctx, "storybook", config.ProModel, func(ctx context.Context) error {
		_, err := g.generateJSON(ctx, config.ProModel, prompt, storybookSchema, false, &book)
		return err
	})
	if err != nil {
		return nil, err
	}
	if book.Theme == "" {
		book.Theme = theme
	}
	return &book, nil
}

// GenerateLullaby writes four soothing lines for the child.
func (g *Gateway) GenerateLullaby(ctx context.Context, profile entities.Profile, mood string) (*entities.Lullaby, error) {
	_, config := g.current()
	prompt := fmt.Sprintf("Write a soothing 4-line lullaby for %s (%dy). Mood: %s.", profile.Name, profile.Age, mood)

	var lullaby entities.Lullaby
	err := g.observe(ctx, "lullaby", config.TextModel, func(ctx context.Context) error {
		_, err := g.generateJSON(ctx, config.TextModel, prompt, lullabySchema, false, &lullaby)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &lullaby, nil
}

// GenerateParentingGuide answers a parent's question with search grounding.
func (g *Gateway) GenerateParentingGuide(ctx context.Context, name string, age int, query string) (*entities.ParentingAdvice, error) {
	_, config := g.current()
	prompt := fmt.Sprintf("Provide advice for the parent of %s (age %d). Query: %s.", name, age, query)

	var advice entities.ParentingAdvice
	err := g.observe(ctx, "guide", config.TextModel, func(ctx context.Context) error {
		sources, err := g.generateJSON(ctx, config.TextModel, prompt, adviceSchema, true, &advice)
		advice.GroundingSources = sources
		return err
	})
	if err != nil {
		return nil, err
	}
	return &advice, nil
}

// GetShoppingRecommendations suggests products with search grounding and
// illustrates every product.
func (g *Gateway) GetShoppingRecommendations(ctx context.Context, profile entities.Profile, query string) (*entities.ShoppingResult, error) {
	_, config := g.current()
	prompt := fmt.Sprintf("Suggest baby products for %s (age %d). User request: %s. Find the best high-quality and cute options.",
		profile.Name, profile.Age, query)

	var result entities.ShoppingResult
	err := g.observe(ctx, "shop", config.TextModel, func(ctx context.Context) error {
		sources, err := g.generateJSON(ctx, config.TextModel, prompt, shoppingSchema, true, &result)
		result.Sources = sources
		return err
	})
	if err != nil {
		return nil, err
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for i := range result.Products {
		p := &result.Products[i]
		eg.Go(func() error {
			url, err := g.GenerateSceneImage(egCtx, fmt.Sprintf(
				"Close up high quality product photo of %s, luxurious cute baby %s, soft focus background, pastel colors.",
				p.Name, p.Category))
			if err != nil {
				return err
			}
			p.ImageURL = url
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateToy designs a toy and draws it.
func (g *Gateway) GenerateToy(ctx context.Context, toyType entities.ToyType, profile entities.Profile, prompt string) (*entities.Toy, error) {
	_, config := g.current()
	text := strings.TrimSpace(fmt.Sprintf("Create a toy for %s. Type: %s. %s", profile.Name, toyType, prompt))

	var toy entities.Toy
	err := g.observe(ctx, "toy", config.TextModel, func(ctx context.Context) error {
		_, err := g.generateJSON(ctx, config.TextModel, text, toySchema, false, &toy)
		return err
	})
	if err != nil {
		return nil, err
	}

	image, err := g.GenerateSceneImage(ctx, fmt.Sprintf("Voxel pixel art toy %s, %s, cute characters.", toy.Name, toyType))
	if err != nil {
		return nil, err
	}

	if toy.ID == "" {
		toy.ID = uuid.New().String()
	}
	toy.Type = toyType
	toy.ImageURL = image
	toy.Status = entities.ToyStatusHappy
	return &toy, nil
}

// GetToyInteraction asks how the toy reacts to action.
func (g *Gateway) GetToyInteraction(ctx context.Context, toy entities.Toy, action string, profile entities.Profile) (*entities.ToyInteraction, error) {
	_, config := g.current()
	prompt := fmt.Sprintf("Toy %s reacts to %s doing %s.", toy.Name, profile.Name, action)

	var interaction entities.ToyInteraction
	err := g.observe(ctx, "toy_interaction", config.TextModel, func(ctx context.Context) error {
		_, err := g.generateJSON(ctx, config.TextModel, prompt, toyInteractionSchema, false, &interaction)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

// GenerateFriendMessage produces the friend's next chat line. Earlier lines
// of the conversation are sent as history.
func (g *Gateway) GenerateFriendMessage(ctx context.Context, friend entities.Friend, text string, profile entities.Profile, history []entities.ChatLine) (*entities.FriendMessage, error) {
	_, config := g.current()

	contents := convertChatHistory(history)
	contents = append(contents, genai.NewContentFromText(
		fmt.Sprintf("Friend %s talks to %s about: %s.", friend.Name, profile.Name, text), genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(
			fmt.Sprintf("You are %s, %s. %s Speak to a %d year old in %s.",
				friend.Name, friend.Tagline, friend.Personality, profile.Age, profile.Language),
			genai.RoleUser),
		Temperature:      genai.Ptr(config.Temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   friendMessageSchema.gemini,
	}

	var msg entities.FriendMessage
	err := g.observe(ctx, "friend_message", config.TextModel, func(ctx context.Context) error {
		resp, err := g.generate(ctx, config.TextModel, contents, cfg)
		if err != nil {
			return err
		}
		return friendMessageSchema.decode(responseText(resp), &msg)
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// convertChatHistory converts transcript lines to Gemini contents
func convertChatHistory(lines []entities.ChatLine) []*genai.Content {
	contents := make([]*genai.Content, 0, len(lines)+1)
	for _, line := range lines {
		role := genai.Role(genai.RoleUser)
		if line.Sender == entities.SpeakerFriend {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(line.Text, role))
	}
	return contents
}
