package views

import (
	"context"
	"math/rand"
	"time"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

// GameView runs monkey hide and seek.
type GameView struct {
	deps *Deps
	ctl  *Controller[*entities.Game]
}

// NewGameView creates a new game view
func NewGameView(deps *Deps) *GameView {
	return &GameView{
		deps: deps,
		ctl:  NewController[*entities.Game](entities.RouteMonkeyGame, deps),
	}
}

func (v *GameView) Route() entities.Route { return entities.RouteMonkeyGame }

// Start paints a new background and hides the monkeys.
func (v *GameView) Start(ctx context.Context) (State[*entities.Game], error) {
	return v.ctl.Run(ctx, func(ctx context.Context) (*entities.Game, error) {
		bg, err := v.deps.Gateway.GenerateSceneImage(ctx, v.deps.Catalog.GameBackground)
		if err != nil {
			return nil, err
		}
		game := entities.NewGame(bg, rand.New(rand.NewSource(time.Now().UnixNano())))
		return &game, nil
	})
}

// Find marks monkey id as found.
func (v *GameView) Find(id int) (State[*entities.Game], error) {
	return v.ctl.Update(func(g *entities.Game) (*entities.Game, error) {
		next, err := g.Find(id)
		if err != nil {
			return nil, err
		}
		return &next, nil
	})
}

func (v *GameView) Snapshot(entities.Profile) any {
	return struct {
		State State[*entities.Game] `json:"state"`
	}{v.ctl.State()}
}

func (v *GameView) Unmount() {
	v.ctl.Unmount()
}
