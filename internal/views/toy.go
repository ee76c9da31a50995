package views

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

var (
	// ErrNoToy is returned when an interaction is attempted before a toy
	// was created.
	ErrNoToy = errors.New("views: no toy selected")
	// ErrEmptyPrompt is returned for a custom toy without a description.
	ErrEmptyPrompt = errors.New("views: custom toy needs a description")
)

// ToyView creates voxel toys and plays with them.
type ToyView struct {
	deps     *Deps
	create   *Controller[*entities.Toy]
	interact *Controller[*entities.ToyInteraction]

	mu  sync.Mutex
	toy *entities.Toy
}

// ToySnapshot is the toy screen's state.
type ToySnapshot struct {
	Types       []entities.ToyType                 `json:"types"`
	Actions     []string                           `json:"actions"`
	Toy         *entities.Toy                      `json:"toy,omitempty"`
	State       State[*entities.Toy]              `json:"state"`
	Interaction State[*entities.ToyInteraction]   `json:"interaction"`
}

// NewToyView creates a new toy view
func NewToyView(deps *Deps) *ToyView {
	return &ToyView{
		deps:     deps,
		create:   NewController[*entities.Toy](entities.RouteToys, deps),
		interact: NewController[*entities.ToyInteraction](entities.RouteToys, deps),
	}
}

func (v *ToyView) Route() entities.Route { return entities.RouteToys }

// Create generates a toy of the given type. Custom toys are described by
// prompt.
func (v *ToyView) Create(ctx context.Context, profile entities.Profile, toyType entities.ToyType, prompt string) (State[*entities.Toy], error) {
	prompt = strings.TrimSpace(prompt)
	if toyType == entities.ToyTypeCustom && prompt == "" {
		return v.create.State(), ErrEmptyPrompt
	}

	return v.create.RunThen(ctx, func(ctx context.Context) (*entities.Toy, error) {
		return v.deps.Gateway.GenerateToy(ctx, toyType, profile, prompt)
	}, func(toy *entities.Toy) {
		v.interact.Unmount()
		v.mu.Lock()
		v.toy = toy
		v.mu.Unlock()
	})
}

// Interact performs action on the current toy and voices its response. A
// broken toy only accepts the repair action.
func (v *ToyView) Interact(ctx context.Context, profile entities.Profile, action string) (State[*entities.ToyInteraction], error) {
	v.mu.Lock()
	var toy entities.Toy
	if v.toy != nil {
		toy = *v.toy
	}
	v.mu.Unlock()

	if toy.Name == "" {
		return v.interact.State(), ErrNoToy
	}
	if err := toy.CheckAction(action); err != nil {
		return v.interact.State(), err
	}

	return v.interact.RunThen(ctx, func(ctx context.Context) (*entities.ToyInteraction, error) {
		result, err := v.deps.Gateway.GetToyInteraction(ctx, toy, action, profile)
		if err != nil {
			return nil, err
		}
		result.AudioURL = v.deps.narrate(ctx, result.Response, v.deps.Catalog.Voices.Toy)
		return result, nil
	}, func(result *entities.ToyInteraction) {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.toy != nil && v.toy.ID == toy.ID {
			next := v.toy.Apply(result.Animation)
			v.toy = &next
		}
	})
}

// Toy returns the current toy, if any.
func (v *ToyView) Toy() (entities.Toy, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.toy == nil {
		return entities.Toy{}, false
	}
	return *v.toy, true
}

func (v *ToyView) Snapshot(entities.Profile) any {
	snap := ToySnapshot{
		Types:       entities.ToyTypes,
		Actions:     v.deps.Catalog.ToyActions,
		State:       v.create.State(),
		Interaction: v.interact.State(),
	}
	if toy, ok := v.Toy(); ok {
		snap.Toy = &toy
	}
	return snap
}

func (v *ToyView) Unmount() {
	v.create.Unmount()
	v.interact.Unmount()
	v.mu.Lock()
	v.toy = nil
	v.mu.Unlock()
}
