// Package views holds the per-screen controllers of the companion. Each
// controller owns the artifacts it generated and forgets them on unmount.
package views

import "encoding/json"

// Status is the phase of a view action.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is the tagged union a controller moves through. Value is only
// meaningful on success and Message only on error.
type State[T any] struct {
	Status  Status
	Value   T
	Message string
}

// Idle returns the initial state.
func Idle[T any]() State[T] {
	return State[T]{Status: StatusIdle}
}

// Loading returns the in-flight state.
func Loading[T any]() State[T] {
	return State[T]{Status: StatusLoading}
}

// Success returns a completed state holding v.
func Success[T any](v T) State[T] {
	return State[T]{Status: StatusSuccess, Value: v}
}

// Failure returns a failed state showing message.
func Failure[T any](message string) State[T] {
	return State[T]{Status: StatusError, Message: message}
}

type stateJSON struct {
	Status  Status `json:"status"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

// MarshalJSON renders only the field that belongs to the status.
func (s State[T]) MarshalJSON() ([]byte, error) {
	out := stateJSON{Status: s.Status}
	switch s.Status {
	case StatusSuccess:
		out.Value = s.Value
	case StatusError:
		out.Message = s.Message
	}
	return json.Marshal(out)
}
