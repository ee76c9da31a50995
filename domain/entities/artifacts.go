package entities

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
)

// StoryScene is one page of a storybook.
type StoryScene struct {
	Text        string `json:"text"`
	ImagePrompt string `json:"imagePrompt"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Storybook is a short illustrated story.
type Storybook struct {
	Title  string       `json:"title"`
	Theme  string       `json:"theme"`
	Scenes []StoryScene `json:"scenes"`
}

// Lullaby holds generated lyrics and, once sung, a playable clip.
type Lullaby struct {
	Lyrics   string `json:"lyrics"`
	Mood     string `json:"mood"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// GroundingSource is a web page the gateway cited.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ParentingAdvice answers a parent's question.
type ParentingAdvice struct {
	Summary          string            `json:"summary"`
	Tips             []string          `json:"tips"`
	BondingActivity  string            `json:"bondingActivity"`
	SafetyNote       string            `json:"safetyNote"`
	GroundingSources []GroundingSource `json:"groundingSources,omitempty"`
}

// ToyType is the kind of toy a child can create.
type ToyType string

const (
	ToyTypeTeddy  ToyType = "Teddy"
	ToyTypeBunny  ToyType = "Bunny"
	ToyTypeRobot  ToyType = "Robot"
	ToyTypeDino   ToyType = "Dino"
	ToyTypeFruit  ToyType = "Fruit"
	ToyTypeCustom ToyType = "Custom"
)

// ToyTypes lists the known toy types.
var ToyTypes = []ToyType{ToyTypeTeddy, ToyTypeBunny, ToyTypeRobot, ToyTypeDino, ToyTypeFruit, ToyTypeCustom}

// ParseToyType returns the toy type named s.
func ParseToyType(s string) (ToyType, error) {
	if slices.Contains(ToyTypes, ToyType(s)) {
		return ToyType(s), nil
	}
	return "", fmt.Errorf("unknown toy type %q", s)
}

// ToyStatus is whether a toy can be played with.
type ToyStatus string

const (
	ToyStatusHappy  ToyStatus = "happy"
	ToyStatusBroken ToyStatus = "broken"
)

// ToyAnimation is how a toy moves in response to an action.
type ToyAnimation string

const (
	AnimationBounce  ToyAnimation = "bounce"
	AnimationShake   ToyAnimation = "shake"
	AnimationGlow    ToyAnimation = "glow"
	AnimationWiggle  ToyAnimation = "wiggle"
	AnimationShatter ToyAnimation = "shatter"
	AnimationRepair  ToyAnimation = "repair"
)

// ToyAnimations lists every animation a toy may play.
var ToyAnimations = []ToyAnimation{
	AnimationBounce, AnimationShake, AnimationGlow, AnimationWiggle, AnimationShatter, AnimationRepair,
}

// RepairAction is the only action a broken toy accepts.
const RepairAction = "Use the magic wand to fix the toy"

// ErrToyBroken is returned when a broken toy is asked to do anything but
// get repaired.
var ErrToyBroken = errors.New("toy is broken and needs fixing")

// Toy is a generated plaything.
type Toy struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        ToyType   `json:"type"`
	Personality string    `json:"personality"`
	ImageURL    string    `json:"imageUrl"`
	VoiceStyle  string    `json:"voiceStyle"`
	Status      ToyStatus `json:"status"`
}

// CheckAction reports whether the toy can respond to action.
func (t Toy) CheckAction(action string) error {
	if t.Status == ToyStatusBroken && action != RepairAction {
		return ErrToyBroken
	}
	return nil
}

// Apply returns the toy after playing animation a.
func (t Toy) Apply(a ToyAnimation) Toy {
	switch a {
	case AnimationShatter:
		t.Status = ToyStatusBroken
	case AnimationRepair:
		t.Status = ToyStatusHappy
	}
	return t
}

// ToyInteraction is a toy's reaction to an action.
type ToyInteraction struct {
	Response  string       `json:"response"`
	Animation ToyAnimation `json:"animation"`
	AudioURL  string       `json:"audioUrl,omitempty"`
}

// Friend is one of the companion characters.
type Friend struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	AvatarURL   string `json:"avatarUrl" yaml:"avatarUrl"`
	Personality string `json:"personality" yaml:"personality"`
	Tagline     string `json:"tagline" yaml:"tagline"`
	VoiceName   string `json:"voiceName" yaml:"voiceName"`
}

// FriendMood is the emotional tone of a friend's reply.
type FriendMood string

const (
	MoodHappy      FriendMood = "happy"
	MoodComforting FriendMood = "comforting"
	MoodPlayful    FriendMood = "playful"
	MoodSleepy     FriendMood = "sleepy"
)

// FriendMoods lists every mood a friend may reply with.
var FriendMoods = []FriendMood{MoodHappy, MoodComforting, MoodPlayful, MoodSleepy}

// FriendMessage is one reply from a friend.
type FriendMessage struct {
	Text     string     `json:"text"`
	Mood     FriendMood `json:"mood"`
	AudioURL string     `json:"audioUrl,omitempty"`
}

// Speaker identifies who said a chat line.
type Speaker string

const (
	SpeakerUser   Speaker = "user"
	SpeakerFriend Speaker = "friend"
)

// ChatLine is one entry of a friend conversation transcript.
type ChatLine struct {
	Sender Speaker `json:"sender"`
	Text   string  `json:"text"`
}

// ProductCategory groups shop products.
type ProductCategory string

const (
	CategoryClothing    ProductCategory = "clothing"
	CategoryGear        ProductCategory = "gear"
	CategoryEducational ProductCategory = "educational"
)

// ProductCategories lists every product category.
var ProductCategories = []ProductCategory{CategoryClothing, CategoryGear, CategoryEducational}

// ProductRecommendation is a suggested product.
type ProductRecommendation struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       string          `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
	Category    ProductCategory `json:"category"`
	Link        string          `json:"link,omitempty"`
}

// ShoppingResult is the answer to a shopping query.
type ShoppingResult struct {
	Advice   string                  `json:"advice"`
	Products []ProductRecommendation `json:"products"`
	Sources  []GroundingSource       `json:"sources"`
	AudioURL string                  `json:"audioUrl,omitempty"`
}

// VideoResult is a generated fruit video ready for download.
type VideoResult struct {
	Fruit    string `json:"fruit"`
	MediaID  string `json:"mediaId"`
	URL      string `json:"url"`
	MIMEType string `json:"mimeType"`
}

// CameraFilter is a cosmetic preview filter.
type CameraFilter string

const (
	FilterNone    CameraFilter = "none"
	FilterSepia   CameraFilter = "sepia"
	FilterPink    CameraFilter = "pink"
	FilterBubbles CameraFilter = "bubbles"
)

// ParseCameraFilter returns the filter named s.
func ParseCameraFilter(s string) (CameraFilter, error) {
	switch f := CameraFilter(s); f {
	case FilterNone, FilterSepia, FilterPink, FilterBubbles:
		return f, nil
	}
	return "", fmt.Errorf("unknown camera filter %q", s)
}

// Observation is what the gateway saw in a recorded clip.
type Observation struct {
	Text     string `json:"text"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// Monkey is one hider of the monkey game. X and Y are percentages of the
// scene, Size is in pixels.
type Monkey struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Found bool    `json:"found"`
}

// MonkeyCount is the number of monkeys hidden per game.
const MonkeyCount = 5

// Game is a round of monkey hide and seek.
type Game struct {
	BackgroundURL string   `json:"backgroundUrl"`
	Monkeys       []Monkey `json:"monkeys"`
	Score         int      `json:"score"`
	Total         int      `json:"total"`
	Complete      bool     `json:"complete"`
}

// NewGame hides MonkeyCount monkeys at random spots in front of background.
func NewGame(background string, rng *rand.Rand) Game {
	monkeys := make([]Monkey, MonkeyCount)
	for i := range monkeys {
		monkeys[i] = Monkey{
			ID:   i,
			X:    15 + rng.Float64()*70,
			Y:    20 + rng.Float64()*60,
			Size: 80 + rng.Float64()*40,
		}
	}
	return Game{BackgroundURL: background, Monkeys: monkeys, Total: MonkeyCount}
}

// ErrUnknownMonkey is returned when finding a monkey the game does not have.
var ErrUnknownMonkey = errors.New("no such monkey")

// Find marks monkey id as found and returns the updated game. Finding a
// monkey twice scores once.
func (g Game) Find(id int) (Game, error) {
	idx := slices.IndexFunc(g.Monkeys, func(m Monkey) bool { return m.ID == id })
	if idx < 0 {
		return g, fmt.Errorf("%w: %d", ErrUnknownMonkey, id)
	}
	if g.Monkeys[idx].Found {
		return g, nil
	}

	monkeys := slices.Clone(g.Monkeys)
	monkeys[idx].Found = true
	g.Monkeys = monkeys
	g.Score++
	g.Complete = g.Score == g.Total
	return g, nil
}
