package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Messages sent by the browser
const (
	MessageTypeDeviceReady    MessageType = "device_ready"
	MessageTypeDeviceError    MessageType = "device_error"
	MessageTypeRecordingStart MessageType = "recording_start"
	MessageTypeAudioChunk     MessageType = "audio_chunk"
	MessageTypeRecordingStop  MessageType = "recording_stop"
	MessageTypePing           MessageType = "ping"
)

// Messages sent by the server
const (
	MessageTypeState      MessageType = "state"
	MessageTypeAIResponse MessageType = "ai_response"
	MessageTypeError      MessageType = "error"
	MessageTypePong       MessageType = "pong"
)

// Error codes carried by ErrorMessage
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeNoDevice        = "no_device"
	ErrorCodeInvalidState    = "invalid_state"
	ErrorCodeClipTooLarge    = "clip_too_large"
	ErrorCodeEmptyClip       = "empty_clip"
	ErrorCodeEmptyTranscript = "empty_transcript"
	ErrorCodeBusy            = "busy"
	ErrorCodeDiscarded       = "discarded"
	ErrorCodeUnauthorized    = "unauthorized"
	ErrorCodeSessionExpired  = "session_expired"
	ErrorCodeViewNotShown    = "view_not_shown"
	ErrorCodeInternal        = "internal_error"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
	MessageID string      `json:"message_id,omitempty"`
}

// DeviceReadyMessage announces that the browser acquired the camera or
// microphone.
type DeviceReadyMessage struct {
	BaseMessage
	MIMEType   string `json:"mime_type"`
	SampleRate int    `json:"sample_rate,omitempty"`
}

// DeviceErrorMessage reports that the browser could not acquire the device.
type DeviceErrorMessage struct {
	BaseMessage
	Message string `json:"message"`
}

// RecordingMessage starts or stops a recording.
type RecordingMessage struct {
	BaseMessage
}

// AudioChunkMessage carries recorded bytes as base64 text. Binary frames
// carry the same bytes without the envelope.
type AudioChunkMessage struct {
	BaseMessage
	AudioData  string `json:"audio_data"`
	SampleRate int    `json:"sample_rate,omitempty"`
	ChunkSeq   int    `json:"chunk_sequence"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// StateMessage is a snapshot of the view the stream feeds.
type StateMessage struct {
	BaseMessage
	View  string `json:"view"`
	State any    `json:"state"`
}

// AIResponseMessage is what the companion answered to a recording.
type AIResponseMessage struct {
	BaseMessage
	View     string `json:"view"`
	Text     string `json:"response_text"`
	AudioURL string `json:"audio_url,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage validates an incoming message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	// First parse as base message to get type
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeDeviceReady:
		var msg DeviceReadyMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid device ready message: %w", err)
		}
		if err := v.validateDeviceReady(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypeDeviceError:
		var msg DeviceErrorMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid device error message: %w", err)
		}
		if msg.Message == "" {
			msg.Message = "device unavailable"
		}
		return &msg, nil

	case MessageTypeRecordingStart, MessageTypeRecordingStop:
		return &RecordingMessage{BaseMessage: base}, nil

	case MessageTypeAudioChunk:
		var msg AudioChunkMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid audio chunk message: %w", err)
		}
		if err := v.validateAudioChunk(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

func (v *MessageValidator) validateDeviceReady(msg *DeviceReadyMessage) error {
	if msg.MIMEType == "" {
		return fmt.Errorf("mime_type is required")
	}
	if msg.SampleRate != 0 && (msg.SampleRate < 8000 || msg.SampleRate > 48000) {
		return fmt.Errorf("sample_rate must be between 8000 and 48000")
	}
	return nil
}

// validateAudioChunk validates audio chunk message fields
func (v *MessageValidator) validateAudioChunk(msg *AudioChunkMessage) error {
	if msg.AudioData == "" {
		return fmt.Errorf("audio_data is required")
	}
	if msg.SampleRate != 0 && (msg.SampleRate < 8000 || msg.SampleRate > 48000) {
		return fmt.Errorf("sample_rate must be between 8000 and 48000")
	}
	if msg.ChunkSeq < 0 {
		return fmt.Errorf("chunk_sequence must not be negative")
	}
	return nil
}

func newBase(t MessageType) BaseMessage {
	return BaseMessage{
		Type:      t,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message, details string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: newBase(MessageTypeError),
		Code:        code,
		Message:     message,
		Details:     details,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: newBase(MessageTypePong),
		Data:        data,
	}
}

// CreateStateMessage creates a view snapshot message
func CreateStateMessage(view string, state any) *StateMessage {
	return &StateMessage{
		BaseMessage: newBase(MessageTypeState),
		View:        view,
		State:       state,
	}
}

// CreateAIResponseMessage creates an answer message
func CreateAIResponseMessage(view, text, audioURL string) *AIResponseMessage {
	return &AIResponseMessage{
		BaseMessage: newBase(MessageTypeAIResponse),
		View:        view,
		Text:        text,
		AudioURL:    audioURL,
	}
}
