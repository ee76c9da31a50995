package adapters

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
)

// MemorySessionRepository is an in-memory implementation of SessionRepository.
// It is the default store when no MongoDB is configured.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entities.Session // id -> session mapping
}

var _ repositories.SessionRepository = (*MemorySessionRepository)(nil)

// NewMemorySessionRepository creates a new in-memory session repository
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*entities.Session),
	}
}

// Create implements SessionRepository interface
func (m *MemorySessionRepository) Create(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}

	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	if err := session.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return errors.New("session with this ID already exists")
	}

	sessionCopy := *session
	m.sessions[session.ID] = &sessionCopy
	return nil
}

// GetByID implements SessionRepository interface
func (m *MemorySessionRepository) GetByID(ctx context.Context, id string) (*entities.Session, error) {
	if id == "" {
		return nil, errors.New("session ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, repositories.ErrSessionNotFound
	}

	// Return a copy to prevent external modifications
	sessionCopy := *session
	return &sessionCopy, nil
}

// Update implements SessionRepository interface
func (m *MemorySessionRepository) Update(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}

	if err := session.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.sessions[session.ID]
	if !exists {
		return repositories.ErrSessionNotFound
	}

	sessionCopy := *session
	sessionCopy.CreatedAt = existing.CreatedAt // Preserve original creation time
	m.sessions[session.ID] = &sessionCopy
	return nil
}

// Delete implements SessionRepository interface
func (m *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return repositories.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// ExpireSessions implements SessionRepository interface
func (m *MemorySessionRepository) ExpireSessions(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var expired []string
	for id, session := range m.sessions {
		if session.Status == entities.SessionStatusActive && now.After(session.ExpiresAt) {
			session.Expire()
			expired = append(expired, id)
		}
	}
	return expired, nil
}

// CountActive implements SessionRepository interface
func (m *MemorySessionRepository) CountActive(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, session := range m.sessions {
		if !session.IsExpired() {
			n++
		}
	}
	return n, nil
}
