package entities

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-yaml"
)

//go:embed catalog.yaml
var catalogYAML []byte

// DashboardCard is a shortcut tile on the dashboard.
type DashboardCard struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Route       Route  `json:"route" yaml:"route"`
}

// Voices names the prebuilt voices used outside friend chat.
type Voices struct {
	Default  string `yaml:"default"`
	Toy      string `yaml:"toy"`
	Narrator string `yaml:"narrator"`
}

// Catalog is the static content the companion ships with.
type Catalog struct {
	Friends         []Friend         `yaml:"friends"`
	StoryThemes     []string         `yaml:"storyThemes"`
	DefaultTheme    string           `yaml:"defaultTheme"`
	DefaultMoral    string           `yaml:"defaultMoral"`
	LullabyMood     string           `yaml:"lullabyMood"`
	Fruits          []string         `yaml:"fruits"`
	ToyActions      []string         `yaml:"toyActions"`
	Voices          Voices           `yaml:"voices"`
	ShopCelebration string           `yaml:"shopCelebration"`
	GameBackground  string           `yaml:"gameBackground"`
	Fallbacks       map[Route]string `yaml:"fallbacks"`
	Unauthorized    string           `yaml:"unauthorized"`
	Dashboard       struct {
		Cards   []DashboardCard `yaml:"cards"`
		Insight string          `yaml:"insight"`
	} `yaml:"dashboard"`
}

// LoadCatalog parses the built-in catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(c.Friends) == 0 {
		return nil, fmt.Errorf("catalog has no friends")
	}
	if len(c.Fruits) == 0 {
		return nil, fmt.Errorf("catalog has no fruits")
	}
	for _, r := range Routes {
		if c.Fallbacks[r] == "" {
			return nil, fmt.Errorf("catalog has no fallback message for %s", r)
		}
	}
	return &c, nil
}

// Friend returns the friend with the given id.
func (c *Catalog) Friend(id string) (Friend, bool) {
	for _, f := range c.Friends {
		if f.ID == id {
			return f, true
		}
	}
	return Friend{}, false
}

// Fallback returns the message shown when a view's action fails.
func (c *Catalog) Fallback(r Route) string {
	return c.Fallbacks[r]
}
