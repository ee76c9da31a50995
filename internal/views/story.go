package views

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

// StoryView generates illustrated storybooks.
type StoryView struct {
	deps *Deps
	ctl  *Controller[*entities.Storybook]

	mu    sync.Mutex
	theme string
	moral string
}

// StorySnapshot is the story screen's state.
type StorySnapshot struct {
	Themes []string                    `json:"themes"`
	Theme  string                      `json:"theme"`
	Moral  string                      `json:"moral"`
	State  State[*entities.Storybook] `json:"state"`
}

// NewStoryView creates a new story view
func NewStoryView(deps *Deps) *StoryView {
	return &StoryView{
		deps:  deps,
		ctl:   NewController[*entities.Storybook](entities.RouteStories, deps),
		theme: deps.Catalog.DefaultTheme,
		moral: deps.Catalog.DefaultMoral,
	}
}

func (v *StoryView) Route() entities.Route { return entities.RouteStories }

// Create writes a storybook and illustrates every scene. Empty theme or
// moral keep the previous choice. Any failed illustration fails the book.
func (v *StoryView) Create(ctx context.Context, profile entities.Profile, theme, moral string) (State[*entities.Storybook], error) {
	v.mu.Lock()
	if t := strings.TrimSpace(theme); t != "" {
		v.theme = t
	}
	if m := strings.TrimSpace(moral); m != "" {
		v.moral = m
	}
	theme, moral = v.theme, v.moral
	v.mu.Unlock()

	return v.ctl.Run(ctx, func(ctx context.Context) (*entities.Storybook, error) {
		book, err := v.deps.Gateway.GenerateStorybook(ctx, profile, theme, moral)
		if err != nil {
			return nil, err
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := range book.Scenes {
			g.Go(func() error {
				url, err := v.deps.Gateway.GenerateSceneImage(gctx, book.Scenes[i].ImagePrompt)
				if err != nil {
					return err
				}
				book.Scenes[i].ImageURL = url
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return book, nil
	})
}

func (v *StoryView) Snapshot(entities.Profile) any {
	state := v.ctl.State()
	v.mu.Lock()
	defer v.mu.Unlock()
	return StorySnapshot{
		Themes: v.deps.Catalog.StoryThemes,
		Theme:  v.theme,
		Moral:  v.moral,
		State:  state,
	}
}

func (v *StoryView) Unmount() {
	v.ctl.Unmount()
	v.mu.Lock()
	v.theme = v.deps.Catalog.DefaultTheme
	v.moral = v.deps.Catalog.DefaultMoral
	v.mu.Unlock()
}
