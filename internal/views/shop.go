package views

import (
	"context"
	"strings"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

// ShopView recommends products for the child.
type ShopView struct {
	deps *Deps
	ctl  *Controller[*entities.ShoppingResult]
}

// NewShopView creates a new shop view
func NewShopView(deps *Deps) *ShopView {
	return &ShopView{
		deps: deps,
		ctl:  NewController[*entities.ShoppingResult](entities.RouteShop, deps),
	}
}

func (v *ShopView) Route() entities.Route { return entities.RouteShop }

// Search looks for products matching query and celebrates the find.
func (v *ShopView) Search(ctx context.Context, profile entities.Profile, query string) (State[*entities.ShoppingResult], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return v.ctl.State(), ErrEmptyQuery
	}
	return v.ctl.Run(ctx, func(ctx context.Context) (*entities.ShoppingResult, error) {
		result, err := v.deps.Gateway.GetShoppingRecommendations(ctx, profile, query)
		if err != nil {
			return nil, err
		}
		result.AudioURL = v.deps.narrate(ctx, v.deps.Catalog.ShopCelebration, v.deps.Catalog.Voices.Default)
		return result, nil
	})
}

func (v *ShopView) Snapshot(entities.Profile) any {
	return struct {
		State State[*entities.ShoppingResult] `json:"state"`
	}{v.ctl.State()}
}

func (v *ShopView) Unmount() {
	v.ctl.Unmount()
}
