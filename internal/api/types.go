package api

import (
	"time"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

// SessionResponse represents the response payload for session creation
type SessionResponse struct {
	Token     string            `json:"token,omitempty"`
	ExpiresAt *time.Time        `json:"expires_at,omitempty"`
	Session   *entities.Session `json:"session"`
}

// NavigateRequest switches the shown view.
type NavigateRequest struct {
	Route string `json:"route"`
}

// StoryRequest asks for a storybook. Empty fields use the catalog defaults.
type StoryRequest struct {
	Theme string `json:"theme"`
	Moral string `json:"moral"`
}

// ToyRequest asks for a new toy.
type ToyRequest struct {
	Type   string `json:"type"`
	Prompt string `json:"prompt,omitempty"`
}

// ToyInteractRequest plays with the current toy.
type ToyInteractRequest struct {
	Action string `json:"action"`
}

// MessageRequest is a typed chat line.
type MessageRequest struct {
	Text string `json:"text"`
}

// QueryRequest is a guide question or a shop search.
type QueryRequest struct {
	Query string `json:"query"`
}

// VideoRequest asks for a fruit video. An empty fruit keeps the last one.
type VideoRequest struct {
	Fruit string `json:"fruit,omitempty"`
}

// FilterRequest sets the camera preview filter.
type FilterRequest struct {
	Filter string `json:"filter"`
}

// FindRequest reports a found monkey.
type FindRequest struct {
	MonkeyID int `json:"monkey_id"`
}

// ErrorResponse represents an error response. State carries the view
// snapshot when the error came from a view action.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	State   any    `json:"state,omitempty"`
}
