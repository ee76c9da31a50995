package views

import (
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

// DashboardView is the landing screen. It never calls the gateway.
type DashboardView struct {
	deps    *Deps
	insight *template.Template
}

// Dashboard is what the landing screen shows.
type Dashboard struct {
	Greeting string                   `json:"greeting"`
	Cards    []entities.DashboardCard `json:"cards"`
	Insight  string                   `json:"insight"`
}

// NewDashboardView creates a new dashboard view
func NewDashboardView(deps *Deps) *DashboardView {
	tmpl, err := template.New("insight").Option("missingkey=error").Parse(deps.Catalog.Dashboard.Insight)
	if err != nil {
		deps.Logger.Warn("Invalid dashboard insight template", zap.Error(err))
		tmpl = nil
	}
	return &DashboardView{deps: deps, insight: tmpl}
}

func (v *DashboardView) Route() entities.Route { return entities.RouteDashboard }

// Dashboard renders the landing screen for profile.
func (v *DashboardView) Dashboard(profile entities.Profile) Dashboard {
	return Dashboard{
		Greeting: "Bonding with " + profile.Name,
		Cards:    v.deps.Catalog.Dashboard.Cards,
		Insight:  v.renderInsight(profile),
	}
}

func (v *DashboardView) renderInsight(profile entities.Profile) string {
	if v.insight == nil {
		return v.deps.Catalog.Fallback(entities.RouteDashboard)
	}
	var b strings.Builder
	if err := v.insight.Execute(&b, profile); err != nil {
		v.deps.Logger.Warn("Failed to render dashboard insight", zap.Error(err))
		return v.deps.Catalog.Fallback(entities.RouteDashboard)
	}
	return b.String()
}

func (v *DashboardView) Snapshot(profile entities.Profile) any {
	return v.Dashboard(profile)
}

func (v *DashboardView) Unmount() {}
