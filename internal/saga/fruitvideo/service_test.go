package fruitvideo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Naimurthedang/bondly-main/adapters/gemini"
	"github.com/Naimurthedang/bondly-main/adapters/media"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/saga"
)

func newTestService(t *testing.T) (*Service, *gemini.MockGateway, *media.BadgerStore) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store, err := media.NewBadgerStore(media.BadgerConfig{InMemory: true}, logger)
	if err != nil {
		t.Fatalf("NewBadgerStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	gateway := gemini.NewMockGateway()
	return NewService(saga.NewManager(logger), gateway, store, time.Minute, logger), gateway, store
}

func TestGenerate(t *testing.T) {
	svc, _, store := newTestService(t)

	result, err := svc.Generate(context.Background(), "Banana", "English", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Fruit != "Banana" || result.URL != "/media/"+result.MediaID {
		t.Errorf("unexpected result: %+v", result)
	}

	blob, err := store.Get(context.Background(), result.MediaID)
	if err != nil {
		t.Fatalf("stored video missing: %v", err)
	}
	if blob.MIMEType != result.MIMEType {
		t.Errorf("Expected MIME %s, got %s", result.MIMEType, blob.MIMEType)
	}
}

// recordingStore remembers the ids it stored.
type recordingStore struct {
	*media.BadgerStore
	ids []string
}

func (r *recordingStore) Put(ctx context.Context, blob *repositories.MediaBlob) error {
	if err := r.BadgerStore.Put(ctx, blob); err != nil {
		return err
	}
	r.ids = append(r.ids, blob.ID)
	return nil
}

func TestGenerate_SupersededDeletesBlob(t *testing.T) {
	logger := zaptest.NewLogger(t)
	badger, err := media.NewBadgerStore(media.BadgerConfig{InMemory: true}, logger)
	if err != nil {
		t.Fatalf("NewBadgerStore failed: %v", err)
	}
	t.Cleanup(func() { badger.Close() })
	store := &recordingStore{BadgerStore: badger}
	svc := NewService(saga.NewManager(logger), gemini.NewMockGateway(), store, time.Minute, logger)

	_, err = svc.Generate(context.Background(), "Apple", "English", func() bool { return false })
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Expected ErrSuperseded, got %v", err)
	}

	if len(store.ids) != 1 {
		t.Fatalf("Expected one stored video, got %d", len(store.ids))
	}
	if _, err := store.Get(context.Background(), store.ids[0]); !errors.Is(err, repositories.ErrMediaNotFound) {
		t.Errorf("Expected superseded video to be deleted, got %v", err)
	}
}

func TestGenerate_GatewayError(t *testing.T) {
	svc, gateway, _ := newTestService(t)
	gateway.SetError("fruit_video", repositories.ErrUnauthorized)

	if _, err := svc.Generate(context.Background(), "Grape", "English", nil); !errors.Is(err, repositories.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}
