package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/views"
)

func TestShellService_CreateSession(t *testing.T) {
	ctx := context.Background()
	shell, repo, _ := newTestShell(t)

	session, err := shell.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.Route != entities.RouteDashboard {
		t.Errorf("Expected route %s, got %s", entities.RouteDashboard, session.Route)
	}
	if _, err := repo.GetByID(ctx, session.ID); err != nil {
		t.Errorf("Session not stored: %v", err)
	}

	got, set, err := shell.Views(ctx, session.ID)
	if err != nil {
		t.Fatalf("Views failed: %v", err)
	}
	if got.Profile != entities.DefaultProfile() {
		t.Errorf("Expected default profile, got %+v", got.Profile)
	}
	for _, r := range entities.Routes {
		if set.View(r) == nil {
			t.Errorf("view %s missing", r)
		}
	}

	if _, err := shell.Session(ctx, "missing"); !errors.Is(err, repositories.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestShellService_SetProfile(t *testing.T) {
	ctx := context.Background()
	shell, repo, _ := newTestShell(t)
	session, _ := shell.CreateSession(ctx)

	noah := entities.Profile{Name: "Noah", Age: 1, Language: "Spanish"}
	if _, err := shell.SetProfile(ctx, session.ID, noah); err != nil {
		t.Fatalf("SetProfile failed: %v", err)
	}
	if _, err := shell.SetProfile(ctx, session.ID, entities.Profile{Age: 1, Language: "English"}); err == nil {
		t.Error("Expected error for profile without a name")
	}

	stored, _ := repo.GetByID(ctx, session.ID)
	if stored.Profile != noah {
		t.Errorf("Expected %+v, got %+v", noah, stored.Profile)
	}

	// Views read the current profile
	snap, err := shell.ViewState(ctx, session.ID, entities.RouteDashboard)
	if err != nil {
		t.Fatalf("ViewState failed: %v", err)
	}
	dash, ok := snap.(views.Dashboard)
	if !ok {
		t.Fatalf("unexpected snapshot type %T", snap)
	}
	if dash.Greeting != "Bonding with Noah" {
		t.Errorf("unexpected greeting %q", dash.Greeting)
	}
}

func TestShellService_NavigateUnmountsPreviousView(t *testing.T) {
	ctx := context.Background()
	shell, _, _ := newTestShell(t)
	session, _ := shell.CreateSession(ctx)

	if _, err := shell.Navigate(ctx, session.ID, entities.RouteGuide); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	_, set, _ := shell.Views(ctx, session.ID)
	dev := &fakeDevice{}
	set.Guide.AttachDevice(dev, entities.Device{Kind: entities.DeviceMicrophone})

	// Staying on the same route keeps the device
	if _, err := shell.Navigate(ctx, session.ID, entities.RouteGuide); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if dev.Released() != 0 {
		t.Fatal("device released without leaving the view")
	}

	next, err := shell.Navigate(ctx, session.ID, entities.RouteShop)
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if next.Route != entities.RouteShop {
		t.Errorf("Expected route %s, got %s", entities.RouteShop, next.Route)
	}
	if dev.Released() != 1 {
		t.Errorf("Expected device released once, got %d", dev.Released())
	}

	if _, err := shell.Navigate(ctx, session.ID, entities.Route("attic")); err == nil {
		t.Error("Expected error for unknown route")
	}
}

func TestShellService_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	shell, repo, _ := newTestShell(t)
	session, _ := shell.CreateSession(ctx)

	_, set, _ := shell.Views(ctx, session.ID)
	dev := &fakeDevice{}
	set.Camera.AttachDevice(dev, entities.Device{Kind: entities.DeviceCamera})

	stored, _ := repo.GetByID(ctx, session.ID)
	stored.ExpiresAt = time.Now().Add(-time.Minute)
	if err := repo.Update(ctx, stored); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	n, err := shell.ExpireSessions(ctx)
	if err != nil {
		t.Fatalf("ExpireSessions failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 expired session, got %d", n)
	}
	if dev.Released() != 1 {
		t.Errorf("Expected device released on expiry, got %d", dev.Released())
	}

	if _, err := shell.Session(ctx, session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Expected ErrSessionExpired, got %v", err)
	}
	if _, err := shell.Navigate(ctx, session.ID, entities.RouteShop); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Expected ErrSessionExpired on navigate, got %v", err)
	}
}

func TestShellService_EndSession(t *testing.T) {
	ctx := context.Background()
	shell, _, _ := newTestShell(t)
	session, _ := shell.CreateSession(ctx)

	if err := shell.EndSession(ctx, session.ID); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if _, _, err := shell.Views(ctx, session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Expected ErrSessionExpired, got %v", err)
	}
}
