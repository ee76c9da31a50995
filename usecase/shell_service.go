package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/metrics"
	"github.com/Naimurthedang/bondly-main/internal/views"
)

// ErrSessionExpired is returned for sessions that timed out or were ended.
var ErrSessionExpired = errors.New("session expired")

// ShellService owns the shared state of each session: the profile every
// view reads and the route currently shown. Views live in memory next to
// the session and die with it.
type ShellService struct {
	sessions repositories.SessionRepository
	deps     *views.Deps
	logger   *zap.Logger

	mu    sync.Mutex
	views map[string]*views.Set
	// mounts counts how often each session changed the shown view.
	mounts map[string]uint64
}

// NewShellService creates a new shell service
func NewShellService(sessions repositories.SessionRepository, deps *views.Deps, logger *zap.Logger) *ShellService {
	return &ShellService{
		sessions: sessions,
		deps:     deps,
		logger:   logger,
		views:    make(map[string]*views.Set),
		mounts:   make(map[string]uint64),
	}
}

// CreateSession starts a session on the dashboard with the default profile.
func (s *ShellService) CreateSession(ctx context.Context) (*entities.Session, error) {
	session := entities.NewSession()
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.mu.Lock()
	s.viewSet(session.ID)
	s.mu.Unlock()

	s.logger.Info("Session created", zap.String("sessionID", session.ID))
	return session, nil
}

// Session returns an active session and marks it as used.
func (s *ShellService) Session(ctx context.Context, id string) (*entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touch(ctx, id)
}

// SetProfile replaces the session's profile as a whole. Views see it on
// their next action.
func (s *ShellService) SetProfile(ctx context.Context, id string, profile entities.Profile) (*entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := session.SetProfile(profile); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("Profile updated",
		zap.String("sessionID", id),
		zap.String("name", profile.Name),
		zap.Int("age", profile.Age))
	return session, nil
}

// Navigate switches the session to route r. The view that was shown is
// unmounted; its artifacts and devices are dropped.
func (s *ShellService) Navigate(ctx context.Context, id string, r entities.Route) (*entities.Session, error) {
	if _, err := entities.ParseRoute(string(r)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := session.Navigate(r)
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save route: %w", err)
	}

	if prev != r {
		s.mounts[id]++
		s.viewSet(id).View(prev).Unmount()
		s.logger.Debug("View unmounted",
			zap.String("sessionID", id),
			zap.String("from", string(prev)),
			zap.String("to", string(r)))
	}
	return session, nil
}

// Views returns the session together with its views.
func (s *ShellService) Views(ctx context.Context, id string) (*entities.Session, *views.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.touch(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return session, s.viewSet(id), nil
}

// shownView returns the session's views when r is the view it shows, along
// with the mount that identifies this showing of r.
func (s *ShellService) shownView(ctx context.Context, id string, r entities.Route) (*views.Set, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.touch(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if session.Route != r {
		return nil, 0, fmt.Errorf("%w: %s", ErrViewNotShown, r)
	}
	return s.viewSet(id), s.mounts[id], nil
}

// whileMounted runs fn, which may be nil, under the shell lock if set and
// mount still identify the shown view of session id. Navigation waits for
// fn.
func (s *ShellService) whileMounted(id string, set *views.Set, mount uint64, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.views[id] != set || s.mounts[id] != mount {
		return ErrViewNotShown
	}
	if fn != nil {
		fn()
	}
	return nil
}

// ViewState returns the snapshot of route r for the session.
func (s *ShellService) ViewState(ctx context.Context, id string, r entities.Route) (any, error) {
	if _, err := entities.ParseRoute(string(r)); err != nil {
		return nil, err
	}
	session, set, err := s.Views(ctx, id)
	if err != nil {
		return nil, err
	}
	return set.View(r).Snapshot(session.Profile), nil
}

// EndSession terminates the session and drops its views.
func (s *ShellService) EndSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	session.Terminate()
	if err := s.sessions.Update(ctx, session); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	s.dropViews(id)
	s.logger.Info("Session ended", zap.String("sessionID", id))
	return nil
}

// ExpireSessions marks idle sessions as expired and drops their views. It
// returns how many sessions expired.
func (s *ShellService) ExpireSessions(ctx context.Context) (int, error) {
	ids, err := s.sessions.ExpireSessions(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	for _, id := range ids {
		s.dropViews(id)
	}
	s.mu.Unlock()

	if active, err := s.sessions.CountActive(ctx); err == nil {
		metrics.ActiveSessions.Set(float64(active))
	}
	return len(ids), nil
}

// load fetches an active session. Callers hold s.mu.
func (s *ShellService) load(ctx context.Context, id string) (*entities.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsExpired() {
		s.dropViews(id)
		return nil, ErrSessionExpired
	}
	return session, nil
}

func (s *ShellService) touch(ctx context.Context, id string) (*entities.Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	session.UpdateLastActive()
	if err := s.sessions.Update(ctx, session); err != nil {
		s.logger.Warn("Failed to record session activity", zap.String("sessionID", id), zap.Error(err))
	}
	return session, nil
}

// viewSet returns the views of session id, creating them for sessions that
// were loaded from a persistent store. Callers hold s.mu.
func (s *ShellService) viewSet(id string) *views.Set {
	set, ok := s.views[id]
	if !ok {
		set = views.NewSet(s.deps)
		s.views[id] = set
		metrics.ActiveSessions.Inc()
	}
	return set
}

func (s *ShellService) dropViews(id string) {
	if set, ok := s.views[id]; ok {
		set.UnmountAll()
		delete(s.views, id)
		delete(s.mounts, id)
		metrics.ActiveSessions.Dec()
	}
}
