package entities

import "time"

// DeviceKind is the kind of media a capture device produces.
type DeviceKind string

const (
	DeviceCamera     DeviceKind = "camera"
	DeviceMicrophone DeviceKind = "microphone"
)

// DeviceStatus tracks a capture device through its life.
type DeviceStatus string

const (
	DeviceStatusReady    DeviceStatus = "ready"
	DeviceStatusFailed   DeviceStatus = "failed"
	DeviceStatusReleased DeviceStatus = "released"
)

// Device is a browser camera or microphone streamed to a view.
type Device struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"session_id"`
	View        Route        `json:"view"`
	Kind        DeviceKind   `json:"kind"`
	MIMEType    string       `json:"mime_type"`
	SampleRate  int          `json:"sample_rate,omitempty"`
	Status      DeviceStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
	ConnectedAt time.Time    `json:"connected_at"`
}
