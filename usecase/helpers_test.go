package usecase

import (
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Naimurthedang/bondly-main/adapters"
	"github.com/Naimurthedang/bondly-main/adapters/gemini"
	"github.com/Naimurthedang/bondly-main/adapters/media"
	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/internal/views"
)

func newTestShell(t *testing.T) (*ShellService, *adapters.MemorySessionRepository, *gemini.MockGateway) {
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

	gateway := gemini.NewMockGateway()
	deps := &views.Deps{
		Gateway: gateway,
		Media:   store,
		Catalog: catalog,
		Logger:  logger,
	}
	if err := deps.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	repo := adapters.NewMemorySessionRepository()
	return NewShellService(repo, deps, logger), repo, gateway
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
