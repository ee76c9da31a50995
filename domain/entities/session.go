package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the status of a session
type SessionStatus string

const (
	SessionStatusActive     SessionStatus = "active"
	SessionStatusExpired    SessionStatus = "expired"
	SessionStatusTerminated SessionStatus = "terminated"
)

// SessionTTL is how long a session survives without activity.
const SessionTTL = 24 * time.Hour

// Session is one parent's visit to the companion: the shared profile and the
// screen currently shown. Generated artifacts never live here.
type Session struct {
	ID           string        `json:"id" bson:"_id"`
	Profile      Profile       `json:"profile" bson:"profile"`
	Route        Route         `json:"route" bson:"route"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	LastActiveAt time.Time     `json:"last_active_at" bson:"last_active_at"`
	ExpiresAt    time.Time     `json:"expires_at" bson:"expires_at"`
	Status       SessionStatus `json:"status" bson:"status"`
}

// NewSession creates a new session on the dashboard with the default profile
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		Profile:      DefaultProfile(),
		Route:        RouteDashboard,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(SessionTTL),
		Status:       SessionStatusActive,
	}
}

// SetProfile replaces the profile as a whole.
func (s *Session) SetProfile(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.Profile = p
	s.UpdateLastActive()
	return nil
}

// Navigate switches to route r and returns the route that was shown before.
func (s *Session) Navigate(r Route) Route {
	prev := s.Route
	s.Route = r
	s.UpdateLastActive()
	return prev
}

// UpdateLastActive updates the last active timestamp and extends expiration
func (s *Session) UpdateLastActive() {
	s.LastActiveAt = time.Now()
	s.ExpiresAt = s.LastActiveAt.Add(SessionTTL)
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt) || s.Status != SessionStatusActive
}

// Terminate marks the session as terminated
func (s *Session) Terminate() {
	s.Status = SessionStatusTerminated
	s.UpdateLastActive()
}

// Expire marks the session as expired
func (s *Session) Expire() {
	s.Status = SessionStatusExpired
}

// Validate validates the session data
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if _, err := ParseRoute(string(s.Route)); err != nil {
		return err
	}
	if s.Status != SessionStatusActive && s.Status != SessionStatusExpired && s.Status != SessionStatusTerminated {
		return errors.New("invalid session status")
	}
	return s.Profile.Validate()
}
