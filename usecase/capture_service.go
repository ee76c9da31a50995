package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/internal/audio"
	"github.com/Naimurthedang/bondly-main/internal/views"
)

// ErrViewNotShown is returned when a view other than the shown one is asked
// to act.
var ErrViewNotShown = errors.New("view is not shown")

// CaptureService connects a browser camera or microphone stream to the view
// that records it.
type CaptureService struct {
	shell  *ShellService
	logger *zap.Logger
}

// NewCaptureService creates a new capture service
func NewCaptureService(shell *ShellService, logger *zap.Logger) *CaptureService {
	return &CaptureService{
		shell:  shell,
		logger: logger,
	}
}

// CaptureStream is one device stream bound to one showing of a session's
// view. Once the session navigates away the stream goes stale: a device
// that arrives later is released instead of attached, and recording
// commands fail with ErrViewNotShown.
type CaptureStream struct {
	shell     *ShellService
	sessionID string
	route     entities.Route
	set       *views.Set
	mount     uint64
	view      views.CaptureView
	logger    *zap.Logger
}

// Open binds a stream to route of the session, which must be the view the
// session shows. For the friends view, friendID selects who the child talks
// to.
func (s *CaptureService) Open(ctx context.Context, sessionID string, route entities.Route, friendID string) (*CaptureStream, error) {
	set, mount, err := s.shell.shownView(ctx, sessionID, route)
	if err != nil {
		return nil, err
	}
	view, err := set.Capture(route)
	if err != nil {
		return nil, err
	}
	if route == entities.RouteFriends && friendID != "" {
		if _, err := set.Friend.Select(friendID); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Capture stream opened",
		zap.String("sessionID", sessionID),
		zap.String("view", string(route)))
	return &CaptureStream{
		shell:     s.shell,
		sessionID: sessionID,
		route:     route,
		set:       set,
		mount:     mount,
		view:      view,
		logger:    s.logger.With(zap.String("sessionID", sessionID), zap.String("view", string(route))),
	}, nil
}

// Route returns the view the stream feeds.
func (c *CaptureStream) Route() entities.Route {
	return c.route
}

// Ready hands the acquired device to the view. If the view is no longer
// shown the device is released and ErrViewNotShown is returned.
func (c *CaptureStream) Ready(dev views.Device, info entities.Device) error {
	info.SessionID = c.sessionID
	info.View = c.route
	info.Status = entities.DeviceStatusReady
	err := c.shell.whileMounted(c.sessionID, c.set, c.mount, func() {
		c.view.AttachDevice(dev, info)
	})
	if err != nil {
		c.logger.Info("Releasing device of a view that is no longer shown",
			zap.String("kind", string(info.Kind)))
		if relErr := dev.Release(); relErr != nil {
			c.logger.Warn("Failed to release device", zap.Error(relErr))
		}
		return fmt.Errorf("%w: %s", err, c.route)
	}
	c.logger.Info("Capture device ready",
		zap.String("kind", string(info.Kind)),
		zap.String("mimeType", info.MIMEType),
		zap.Int("sampleRate", info.SampleRate))
	return nil
}

// Failed reports that the browser could not provide the device. Reports for
// a view that is no longer shown are ignored.
func (c *CaptureStream) Failed(err error) {
	stale := c.shell.whileMounted(c.sessionID, c.set, c.mount, func() {
		c.view.DeviceFailed(err)
	})
	if stale != nil {
		c.logger.Debug("Ignoring device failure of a view that is no longer shown", zap.Error(err))
	}
}

// Start begins a recording.
func (c *CaptureStream) Start() error {
	var err error
	if stale := c.shell.whileMounted(c.sessionID, c.set, c.mount, func() {
		err = c.view.StartRecording()
	}); stale != nil {
		return stale
	}
	return err
}

// Write appends raw media bytes to the recording.
func (c *CaptureStream) Write(p []byte) error {
	var err error
	if stale := c.shell.whileMounted(c.sessionID, c.set, c.mount, func() {
		err = c.view.WriteChunk(p)
	}); stale != nil {
		return stale
	}
	return err
}

// WriteBase64 appends a base64 encoded chunk to the recording.
func (c *CaptureStream) WriteBase64(data string) error {
	p, err := audio.DecodeBase64(data)
	if err != nil {
		return fmt.Errorf("failed to decode chunk: %w", err)
	}
	return c.Write(p)
}

// Stop ends the recording and runs the view's follow-up with the session's
// current profile. It returns the view snapshot afterwards.
func (c *CaptureStream) Stop(ctx context.Context) (any, error) {
	session, err := c.shell.Session(ctx, c.sessionID)
	if err != nil {
		return nil, err
	}
	// The follow-up runs outside the shell lock; the view's own generation
	// check drops it if the session navigates meanwhile.
	if err := c.shell.whileMounted(c.sessionID, c.set, c.mount, nil); err != nil {
		return nil, err
	}
	return c.view.StopRecording(ctx, session.Profile)
}

// Snapshot returns the view's current state.
func (c *CaptureStream) Snapshot(ctx context.Context) (any, error) {
	return c.shell.ViewState(ctx, c.sessionID, c.route)
}
