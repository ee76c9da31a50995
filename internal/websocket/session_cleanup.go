package websocket

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultCleanupInterval is how often idle sessions are expired.
	DefaultCleanupInterval = 30 * time.Minute

	// DefaultInitialCleanupDelay is the delay before the first run.
	DefaultInitialCleanupDelay = time.Minute
)

// SessionExpirer expires idle sessions and drops what they hold.
type SessionExpirer interface {
	ExpireSessions(ctx context.Context) (int, error)
}

// SessionCleanupService handles background tasks for session management
type SessionCleanupService struct {
	sessions     SessionExpirer
	interval     time.Duration
	initialDelay time.Duration
	logger       *zap.Logger
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewSessionCleanupService creates a new session cleanup service. A zero
// interval or delay selects the default.
func NewSessionCleanupService(sessions SessionExpirer, interval, initialDelay time.Duration, logger *zap.Logger) *SessionCleanupService {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if initialDelay <= 0 {
		initialDelay = DefaultInitialCleanupDelay
	}
	return &SessionCleanupService{
		sessions:     sessions,
		interval:     interval,
		initialDelay: initialDelay,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the background cleanup process
func (s *SessionCleanupService) Start() {
	s.wg.Add(1)
	go s.cleanupLoop()
	s.logger.Info("Session cleanup service started", zap.Duration("interval", s.interval))
}

// Stop gracefully stops the cleanup service and waits for a running
// cleanup to finish.
func (s *SessionCleanupService) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	s.logger.Info("Session cleanup service stopped")
}

// cleanupLoop runs the cleanup process periodically
func (s *SessionCleanupService) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	initialTimer := time.NewTimer(s.initialDelay)
	defer initialTimer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-initialTimer.C:
			s.runCleanup()
			// Initial timer only runs once
		case <-ticker.C:
			s.runCleanup()
		}
	}
}

// runCleanup performs the actual cleanup of expired sessions
func (s *SessionCleanupService) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.logger.Debug("Starting session cleanup")

	n, err := s.sessions.ExpireSessions(ctx)
	if err != nil {
		s.logger.Error("Failed to expire sessions", zap.Error(err))
		return
	}

	s.logger.Info("Session cleanup completed", zap.Int("expired", n))
}
