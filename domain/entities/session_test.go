package entities

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func TestSessionCreation(t *testing.T) {
	session := NewSession()

	if session.ID == "" {
		t.Error("Expected session ID to be set")
	}

	if session.Status != SessionStatusActive {
		t.Errorf("Expected status %s, got %s", SessionStatusActive, session.Status)
	}

	if session.Route != RouteDashboard {
		t.Errorf("Expected route %s, got %s", RouteDashboard, session.Route)
	}

	if session.Profile != DefaultProfile() {
		t.Errorf("Expected default profile, got %+v", session.Profile)
	}

	want := Profile{Name: "Lily", Age: 2, Language: "English", Mood: "happy"}
	if session.Profile != want {
		t.Errorf("Expected %+v, got %+v", want, session.Profile)
	}
}

func TestSetProfile(t *testing.T) {
	session := NewSession()

	next := Profile{Name: "Noah", Age: 1, Language: "Spanish"}
	if err := session.SetProfile(next); err != nil {
		t.Fatalf("SetProfile failed: %v", err)
	}
	if session.Profile != next {
		t.Errorf("Expected %+v, got %+v", next, session.Profile)
	}

	// Invalid profiles leave the previous one in place
	if err := session.SetProfile(Profile{Name: "", Age: 1, Language: "English"}); err == nil {
		t.Error("Expected error for empty name")
	}
	if err := session.SetProfile(Profile{Name: "Noah", Age: -1, Language: "English"}); err == nil {
		t.Error("Expected error for negative age")
	}
	if session.Profile != next {
		t.Errorf("Profile changed after rejected update: %+v", session.Profile)
	}
}

func TestNavigate(t *testing.T) {
	session := NewSession()

	prev := session.Navigate(RouteStories)
	if prev != RouteDashboard {
		t.Errorf("Expected previous route %s, got %s", RouteDashboard, prev)
	}
	if session.Route != RouteStories {
		t.Errorf("Expected route %s, got %s", RouteStories, session.Route)
	}

	if _, err := ParseRoute("nowhere"); err == nil {
		t.Error("Expected error for unknown route")
	}
}

func TestSessionExpiration(t *testing.T) {
	session := NewSession()

	// Should not be expired initially
	if session.IsExpired() {
		t.Error("Session should not be expired initially")
	}

	// Manually set expiration to past
	session.ExpiresAt = time.Now().Add(-1 * time.Hour)
	if !session.IsExpired() {
		t.Error("Session should be expired when ExpiresAt is in the past")
	}

	// Test with terminated status
	session.ExpiresAt = time.Now().Add(1 * time.Hour)
	session.Status = SessionStatusTerminated
	if !session.IsExpired() {
		t.Error("Session should be expired when status is terminated")
	}
}

func TestSessionValidation(t *testing.T) {
	// Valid session
	session := NewSession()
	if err := session.Validate(); err != nil {
		t.Errorf("Valid session should not have validation errors, got: %v", err)
	}

	// Invalid ID
	session.ID = ""
	if err := session.Validate(); err == nil {
		t.Error("Session with empty ID should have validation error")
	}

	// Invalid status
	session.ID = "session-1"
	session.Status = SessionStatus("invalid")
	if err := session.Validate(); err == nil {
		t.Error("Session with invalid status should have validation error")
	}

	// Invalid route
	session.Status = SessionStatusActive
	session.Route = Route("attic")
	if err := session.Validate(); err == nil {
		t.Error("Session with invalid route should have validation error")
	}
}

func TestUpdateLastActive(t *testing.T) {
	session := NewSession()
	originalLastActive := session.LastActiveAt
	originalExpiresAt := session.ExpiresAt

	// Wait a bit to ensure time difference
	time.Sleep(10 * time.Millisecond)

	session.UpdateLastActive()

	if !session.LastActiveAt.After(originalLastActive) {
		t.Error("LastActiveAt should be updated to a later time")
	}

	if !session.ExpiresAt.After(originalExpiresAt) {
		t.Error("ExpiresAt should be extended")
	}

	expectedExpiration := session.LastActiveAt.Add(SessionTTL)
	if session.ExpiresAt.Sub(expectedExpiration).Abs() > time.Second {
		t.Error("ExpiresAt should be SessionTTL from LastActiveAt")
	}
}

func TestToyLifecycle(t *testing.T) {
	toy := Toy{Name: "Pixel Bear", Type: ToyTypeTeddy, Status: ToyStatusHappy}

	if err := toy.CheckAction("Tickle the toy"); err != nil {
		t.Errorf("Happy toy should accept any action, got %v", err)
	}

	toy = toy.Apply(AnimationShatter)
	if toy.Status != ToyStatusBroken {
		t.Fatalf("Expected broken toy after shatter, got %s", toy.Status)
	}
	if err := toy.CheckAction("Tickle the toy"); err != ErrToyBroken {
		t.Errorf("Expected ErrToyBroken, got %v", err)
	}
	if err := toy.CheckAction(RepairAction); err != nil {
		t.Errorf("Broken toy should accept repair, got %v", err)
	}

	toy = toy.Apply(AnimationGlow)
	if toy.Status != ToyStatusBroken {
		t.Error("Glow should not repair a toy")
	}

	toy = toy.Apply(AnimationRepair)
	if toy.Status != ToyStatusHappy {
		t.Errorf("Expected happy toy after repair, got %s", toy.Status)
	}
}

func TestMonkeyGame(t *testing.T) {
	game := NewGame("https://picsum.photos/400/400", rand.New(rand.NewSource(1)))

	if len(game.Monkeys) != MonkeyCount || game.Total != MonkeyCount {
		t.Fatalf("Expected %d monkeys, got %d", MonkeyCount, len(game.Monkeys))
	}
	for _, m := range game.Monkeys {
		if m.X < 15 || m.X > 85 || m.Y < 20 || m.Y > 80 || m.Size < 80 || m.Size > 120 {
			t.Errorf("monkey out of bounds: %+v", m)
		}
	}

	var err error
	for i := 0; i < MonkeyCount; i++ {
		before := game
		game, err = game.Find(i)
		if err != nil {
			t.Fatalf("Find(%d) failed: %v", i, err)
		}
		if before.Monkeys[i].Found {
			t.Error("Find must not mutate the previous game value")
		}
		// Finding twice scores once
		game, _ = game.Find(i)
	}

	if game.Score != MonkeyCount || !game.Complete {
		t.Errorf("Expected complete game with score %d, got score %d complete %v", MonkeyCount, game.Score, game.Complete)
	}

	if _, err := game.Find(99); !errors.Is(err, ErrUnknownMonkey) {
		t.Errorf("Expected ErrUnknownMonkey, got %v", err)
	}
}
