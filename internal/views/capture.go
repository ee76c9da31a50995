package views

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

// MaxClipBytes caps a single recording held in memory.
const MaxClipBytes = 64 << 20

var (
	ErrNoDevice     = errors.New("views: no capture device")
	ErrRecording    = errors.New("views: already recording")
	ErrNotRecording = errors.New("views: not recording")
	ErrClipTooLarge = errors.New("views: recording too large")
	ErrEmptyClip    = errors.New("views: recording is empty")
)

// Device is a capture stream handed to a view. The view owns it until
// Unmount and releases it then.
type Device interface {
	Release() error
}

// CaptureView is a view that records from a camera or microphone.
type CaptureView interface {
	View
	AttachDevice(dev Device, info entities.Device)
	DeviceFailed(err error)
	StartRecording() error
	WriteChunk(p []byte) error
	// StopRecording ends the recording and runs the view's follow-up on it.
	StopRecording(ctx context.Context, profile entities.Profile) (any, error)
}

// Clip is one finished recording.
type Clip struct {
	MIMEType   string
	SampleRate int
	Data       []byte
}

// DeviceState is the capture part of a view snapshot.
type DeviceState struct {
	DeviceAvailable bool   `json:"deviceAvailable"`
	DeviceError     string `json:"deviceError,omitempty"`
	Recording       bool   `json:"recording"`
}

type capture struct {
	logger *zap.Logger

	mu        sync.Mutex
	device    Device
	info      entities.Device
	failure   string
	recording bool
	buf       bytes.Buffer
}

// AttachDevice hands dev to the view, releasing any previous device.
func (c *capture) AttachDevice(dev Device, info entities.Device) {
	c.mu.Lock()
	prev := c.device
	c.device = dev
	c.info = info
	c.failure = ""
	c.recording = false
	c.buf.Reset()
	c.mu.Unlock()

	if prev != nil && prev != dev {
		c.releaseDevice(prev)
	}
}

// DeviceFailed records that the device could not be acquired or broke.
// The view stays usable.
func (c *capture) DeviceFailed(err error) {
	c.logger.Warn("Capture device failed", zap.Error(err))

	c.mu.Lock()
	prev := c.device
	c.device = nil
	c.failure = err.Error()
	c.recording = false
	c.buf.Reset()
	c.mu.Unlock()

	if prev != nil {
		c.releaseDevice(prev)
	}
}

// StartRecording begins a fresh clip.
func (c *capture) StartRecording() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return ErrNoDevice
	}
	if c.recording {
		return ErrRecording
	}
	c.recording = true
	c.buf.Reset()
	return nil
}

// WriteChunk appends captured bytes to the clip.
func (c *capture) WriteChunk(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.recording {
		return ErrNotRecording
	}
	if c.buf.Len()+len(p) > MaxClipBytes {
		return ErrClipTooLarge
	}
	c.buf.Write(p)
	return nil
}

func (c *capture) stop() (Clip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.recording {
		return Clip{}, ErrNotRecording
	}
	c.recording = false
	clip := Clip{
		MIMEType:   c.info.MIMEType,
		SampleRate: c.info.SampleRate,
		Data:       bytes.Clone(c.buf.Bytes()),
	}
	c.buf.Reset()
	if len(clip.Data) == 0 {
		return Clip{}, ErrEmptyClip
	}
	return clip, nil
}

func (c *capture) deviceState() DeviceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DeviceState{
		DeviceAvailable: c.device != nil,
		DeviceError:     c.failure,
		Recording:       c.recording,
	}
}

// release gives up the device and drops any partial clip.
func (c *capture) release() {
	c.mu.Lock()
	dev := c.device
	c.device = nil
	c.failure = ""
	c.recording = false
	c.buf.Reset()
	c.mu.Unlock()

	if dev != nil {
		c.releaseDevice(dev)
	}
}

func (c *capture) releaseDevice(dev Device) {
	if err := dev.Release(); err != nil {
		c.logger.Warn("Failed to release capture device", zap.Error(err))
	}
}
