package views

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
)

// ErrUnknownFruit is returned for a fruit missing from the catalog.
var ErrUnknownFruit = errors.New("views: unknown fruit")

// VideoView generates short fruit videos.
type VideoView struct {
	deps *Deps
	ctl  *Controller[*entities.VideoResult]

	mu    sync.Mutex
	fruit string
}

// VideoSnapshot is the video screen's state.
type VideoSnapshot struct {
	Fruits []string                      `json:"fruits"`
	Fruit  string                        `json:"fruit"`
	State  State[*entities.VideoResult] `json:"state"`
}

// NewVideoView creates a new video view
func NewVideoView(deps *Deps) *VideoView {
	v := &VideoView{
		deps:  deps,
		fruit: deps.Catalog.Fruits[0],
	}
	v.ctl = NewController[*entities.VideoResult](entities.RouteVideos, deps).WithMessage(func(err error) string {
		if errors.Is(err, repositories.ErrUnauthorized) {
			return deps.Catalog.Unauthorized
		}
		return ""
	})
	return v
}

func (v *VideoView) Route() entities.Route { return entities.RouteVideos }

// Generate makes a video about fruit narrated in the profile's language.
// An empty fruit keeps the previous choice.
func (v *VideoView) Generate(ctx context.Context, profile entities.Profile, fruit string) (State[*entities.VideoResult], error) {
	if fruit != "" && !slices.Contains(v.deps.Catalog.Fruits, fruit) {
		return v.ctl.State(), fmt.Errorf("%w: %q", ErrUnknownFruit, fruit)
	}

	v.mu.Lock()
	if fruit != "" {
		v.fruit = fruit
	}
	fruit = v.fruit
	v.mu.Unlock()

	return v.ctl.Run(ctx, func(ctx context.Context) (*entities.VideoResult, error) {
		return v.deps.Videos.Generate(ctx, fruit, profile.Language, func() bool {
			return v.ctl.Active(ctx)
		})
	})
}

func (v *VideoView) Snapshot(entities.Profile) any {
	state := v.ctl.State()
	v.mu.Lock()
	defer v.mu.Unlock()
	return VideoSnapshot{Fruits: v.deps.Catalog.Fruits, Fruit: v.fruit, State: state}
}

func (v *VideoView) Unmount() {
	v.ctl.Unmount()
	v.mu.Lock()
	v.fruit = v.deps.Catalog.Fruits[0]
	v.mu.Unlock()
}
