package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
)

func TestMemorySessionRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()

	session := entities.NewSession()
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := repo.Create(ctx, session); err == nil {
		t.Error("Expected error when creating a duplicate session")
	}

	// Mutating the caller's copy must not leak into the store
	session.Route = entities.RouteShop
	stored, err := repo.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if stored.Route != entities.RouteDashboard {
		t.Errorf("Expected stored route %s, got %s", entities.RouteDashboard, stored.Route)
	}

	if err := repo.Update(ctx, session); err != nil {
		t.Fatalf("Failed to update session: %v", err)
	}
	stored, _ = repo.GetByID(ctx, session.ID)
	if stored.Route != entities.RouteShop {
		t.Errorf("Expected updated route %s, got %s", entities.RouteShop, stored.Route)
	}

	if err := repo.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := repo.GetByID(ctx, session.ID); !errors.Is(err, repositories.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := repo.Update(ctx, session); !errors.Is(err, repositories.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on update, got %v", err)
	}
}

func TestMemorySessionRepository_ExpireSessions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()

	fresh := entities.NewSession()
	stale := entities.NewSession()
	stale.ExpiresAt = time.Now().Add(-time.Minute)

	for _, s := range []*entities.Session{fresh, stale} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	if n, _ := repo.CountActive(ctx); n != 1 {
		t.Errorf("Expected 1 active session, got %d", n)
	}

	ids, err := repo.ExpireSessions(ctx)
	if err != nil {
		t.Fatalf("ExpireSessions failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != stale.ID {
		t.Errorf("Expected [%s], got %v", stale.ID, ids)
	}

	got, _ := repo.GetByID(ctx, stale.ID)
	if got.Status != entities.SessionStatusExpired {
		t.Errorf("Expected status %s, got %s", entities.SessionStatusExpired, got.Status)
	}

	// Already expired sessions are not reported twice
	if ids, _ := repo.ExpireSessions(ctx); len(ids) != 0 {
		t.Errorf("Expected no newly expired sessions, got %v", ids)
	}
}
