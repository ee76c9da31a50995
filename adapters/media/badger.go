// Package media stores generated clips that the browser fetches by id.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/repositories"
)

const defaultTTL = 30 * time.Minute

// BadgerConfig configures the badger media store.
type BadgerConfig struct {
	// Dir is the data directory. Ignored when InMemory is set.
	Dir      string
	InMemory bool
	// TTL is how long a blob stays retrievable.
	TTL time.Duration
}

// BadgerStore is a MediaStore backed by BadgerDB. Every blob is written
// with a TTL so old clips disappear on their own.
type BadgerStore struct {
	db     *badger.DB
	ttl    time.Duration
	logger *zap.Logger
}

var _ repositories.MediaStore = (*BadgerStore)(nil)

type blobMeta struct {
	MIMEType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBadgerStore opens a new badger media store
func NewBadgerStore(config BadgerConfig, logger *zap.Logger) (*BadgerStore, error) {
	if !config.InMemory && config.Dir == "" {
		return nil, errors.New("media: Dir is required for on-disk mode")
	}
	ttl := config.TTL
	if ttl == 0 {
		ttl = defaultTTL
		logger.Info("Using default media TTL", zap.Duration("ttl", ttl))
	}

	opts := badger.DefaultOptions(config.Dir).WithLogger(badgerLogger{logger.Sugar()})
	if config.InMemory {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open media store: %w", err)
	}

	logger.Info("Media store opened", zap.String("dir", config.Dir), zap.Bool("inMemory", config.InMemory))
	return &BadgerStore{db: db, ttl: ttl, logger: logger}, nil
}

func metaKey(id string) []byte { return []byte("media/" + id + "/meta") }
func dataKey(id string) []byte { return []byte("media/" + id + "/data") }

// Put stores blob, assigning an id when it has none.
func (s *BadgerStore) Put(_ context.Context, blob *repositories.MediaBlob) error {
	if blob == nil || len(blob.Data) == 0 {
		return errors.New("media blob cannot be empty")
	}
	if blob.ID == "" {
		blob.ID = uuid.New().String()
	}
	if blob.CreatedAt.IsZero() {
		blob.CreatedAt = time.Now()
	}

	meta, err := json.Marshal(blobMeta{MIMEType: blob.MIMEType, CreatedAt: blob.CreatedAt})
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(badger.NewEntry(metaKey(blob.ID), meta).WithTTL(s.ttl)); err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry(dataKey(blob.ID), blob.Data).WithTTL(s.ttl))
	})
	if err != nil {
		return fmt.Errorf("failed to store media %s: %w", blob.ID, err)
	}

	s.logger.Debug("Media stored", zap.String("id", blob.ID), zap.String("mimeType", blob.MIMEType), zap.Int("bytes", len(blob.Data)))
	return nil
}

// Get returns the blob stored under id.
func (s *BadgerStore) Get(_ context.Context, id string) (*repositories.MediaBlob, error) {
	blob := &repositories.MediaBlob{ID: id}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(id))
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		var meta blobMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return err
		}
		blob.MIMEType = meta.MIMEType
		blob.CreatedAt = meta.CreatedAt

		item, err = txn.Get(dataKey(id))
		if err != nil {
			return err
		}
		blob.Data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repositories.ErrMediaNotFound
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// Delete removes the blob. Deleting a missing blob is not an error.
func (s *BadgerStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(metaKey(id)); err != nil {
			return err
		}
		return txn.Delete(dataKey(id))
	})
}

// Close closes the underlying database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's logging through zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.s.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }
