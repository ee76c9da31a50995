package views

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

const (
	defaultClipMIMEType = "video/webm"
	observationPreview  = 40
)

// CameraView records short clips of the child and describes them.
type CameraView struct {
	capture
	deps *Deps
	ctl  *Controller[*entities.Observation]

	mu     sync.Mutex
	filter entities.CameraFilter
}

var _ CaptureView = (*CameraView)(nil)

// CameraSnapshot is the baby cam's state.
type CameraSnapshot struct {
	Filter entities.CameraFilter         `json:"filter"`
	State  State[*entities.Observation] `json:"state"`
	DeviceState
}

// NewCameraView creates a new camera view
func NewCameraView(deps *Deps) *CameraView {
	return &CameraView{
		capture: capture{logger: deps.Logger.With(zap.String("view", string(entities.RouteBabyCam)))},
		deps:    deps,
		ctl:     NewController[*entities.Observation](entities.RouteBabyCam, deps),
		filter:  entities.FilterNone,
	}
}

func (v *CameraView) Route() entities.Route { return entities.RouteBabyCam }

// SetFilter changes the preview filter. It is cosmetic only.
func (v *CameraView) SetFilter(f entities.CameraFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = f
}

// StopRecording hands the clip to the gateway and narrates what it saw.
func (v *CameraView) StopRecording(ctx context.Context, profile entities.Profile) (any, error) {
	clip, err := v.stop()
	if err != nil {
		return nil, err
	}
	_, err = v.Analyze(ctx, profile, clip)
	return v.Snapshot(profile), err
}

// Analyze describes clip and voices a short observation about the child.
func (v *CameraView) Analyze(ctx context.Context, profile entities.Profile, clip Clip) (State[*entities.Observation], error) {
	if len(clip.Data) == 0 {
		return v.ctl.State(), ErrEmptyClip
	}
	mimeType := clip.MIMEType
	if mimeType == "" {
		mimeType = defaultClipMIMEType
	}

	return v.ctl.Run(ctx, func(ctx context.Context) (*entities.Observation, error) {
		text, err := v.deps.Gateway.AnalyzeVideo(ctx, clip.Data, mimeType)
		if err != nil {
			return nil, err
		}
		narration := fmt.Sprintf("I saw %s! %s", profile.Name, preview(text, observationPreview))
		return &entities.Observation{
			Text:     text,
			AudioURL: v.deps.narrate(ctx, narration, v.deps.Catalog.Voices.Narrator),
		}, nil
	})
}

// preview returns the first n characters of s.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (v *CameraView) Snapshot(entities.Profile) any {
	state := v.ctl.State()
	device := v.deviceState()
	v.mu.Lock()
	defer v.mu.Unlock()
	return CameraSnapshot{Filter: v.filter, State: state, DeviceState: device}
}

func (v *CameraView) Unmount() {
	v.ctl.Unmount()
	v.release()
	v.SetFilter(entities.FilterNone)
}
