package views

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

// ErrEmptyQuery is returned when a question or search is blank.
var ErrEmptyQuery = errors.New("views: query is empty")

// GuideView answers parenting questions, typed or spoken.
type GuideView struct {
	capture
	deps *Deps
	ctl  *Controller[*entities.ParentingAdvice]

	mu       sync.Mutex
	question string
}

var _ CaptureView = (*GuideView)(nil)

// GuideSnapshot is the guide screen's state.
type GuideSnapshot struct {
	Question string                            `json:"question"`
	State    State[*entities.ParentingAdvice] `json:"state"`
	DeviceState
}

// NewGuideView creates a new guide view
func NewGuideView(deps *Deps) *GuideView {
	return &GuideView{
		capture: capture{logger: deps.Logger.With(zap.String("view", string(entities.RouteGuide)))},
		deps:    deps,
		ctl:     NewController[*entities.ParentingAdvice](entities.RouteGuide, deps),
	}
}

func (v *GuideView) Route() entities.Route { return entities.RouteGuide }

// Ask answers query for the child in profile.
func (v *GuideView) Ask(ctx context.Context, profile entities.Profile, query string) (State[*entities.ParentingAdvice], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return v.ctl.State(), ErrEmptyQuery
	}
	return v.ask(ctx, profile, func(context.Context) (string, error) { return query, nil })
}

// StopRecording transcribes the spoken question and answers it.
func (v *GuideView) StopRecording(ctx context.Context, profile entities.Profile) (any, error) {
	clip, err := v.stop()
	if err != nil {
		return nil, err
	}
	_, err = v.ask(ctx, profile, func(ctx context.Context) (string, error) {
		return v.deps.transcribe(ctx, clip)
	})
	return v.Snapshot(profile), err
}

func (v *GuideView) ask(ctx context.Context, profile entities.Profile, question func(context.Context) (string, error)) (State[*entities.ParentingAdvice], error) {
	return v.ctl.Run(ctx, func(ctx context.Context) (*entities.ParentingAdvice, error) {
		query, err := question(ctx)
		if err != nil {
			return nil, err
		}
		asked := whileActive(ctx, func() {
			v.mu.Lock()
			v.question = query
			v.mu.Unlock()
		})
		if !asked {
			return nil, ErrDiscarded
		}
		return v.deps.Gateway.GenerateParentingGuide(ctx, profile.Name, profile.Age, query)
	})
}

func (v *GuideView) Snapshot(entities.Profile) any {
	state := v.ctl.State()
	device := v.deviceState()
	v.mu.Lock()
	defer v.mu.Unlock()
	return GuideSnapshot{Question: v.question, State: state, DeviceState: device}
}

func (v *GuideView) Unmount() {
	v.ctl.Unmount()
	v.release()
	v.mu.Lock()
	v.question = ""
	v.mu.Unlock()
}
