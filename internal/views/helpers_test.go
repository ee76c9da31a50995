package views

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Naimurthedang/bondly-main/adapters/gemini"
	"github.com/Naimurthedang/bondly-main/adapters/media"
	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/internal/audio"
)

type countingSelector struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingSelector) HasCredentials() bool { return true }

func (s *countingSelector) SelectCredentials(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *countingSelector) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type testEnv struct {
	deps    *Deps
	gateway *gemini.MockGateway
	creds   *countingSelector
	media   *media.BadgerStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)

	catalog, err := entities.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	store, err := media.NewBadgerStore(media.BadgerConfig{InMemory: true}, logger)
	if err != nil {
		t.Fatalf("NewBadgerStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		gateway: gemini.NewMockGateway(),
		creds:   &countingSelector{},
		media:   store,
	}
	env.deps = &Deps{
		Gateway:     env.gateway,
		Credentials: env.creds,
		Media:       store,
		Player:      audio.NewPlayer(audio.NullOutput{}, logger),
		Catalog:     catalog,
		Logger:      logger,
	}
	if err := env.deps.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	return env
}

// hold makes every gateway call block until the returned func is called.
func (e *testEnv) hold() (release func()) {
	ch := make(chan struct{})
	e.gateway.Hold = ch
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// waitCalls waits until op was called n times.
func (e *testEnv) waitCalls(t *testing.T, op string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for e.gateway.Calls(op) < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d %s calls, have %d", n, op, e.gateway.Calls(op))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type fakeDevice struct {
	mu       sync.Mutex
	released int
}

func (d *fakeDevice) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released++
	return nil
}

func (d *fakeDevice) Released() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released
}
