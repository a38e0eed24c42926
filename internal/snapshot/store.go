// Package snapshot persists the workout sequence as a single serialized blob
// under one key of a key/value store.
package snapshot

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/zahid-01/Running-Tracker/internal/domain"
	"github.com/zahid-01/Running-Tracker/internal/observability"
)

// DefaultKey is the storage key holding the workout snapshot.
const DefaultKey = "workout"

// Store is a byte-oriented key/value store. Get returns nil, nil for an absent key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Repository reads and writes the workout sequence under a fixed key.
type Repository struct {
	store  Store
	key    string
	logger *zap.Logger
}

// NewRepository constructs a Repository. An empty key falls back to DefaultKey.
func NewRepository(store Store, key string, logger *zap.Logger) *Repository {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: store, key: key, logger: logger}
}

// Key reports the storage key.
func (r *Repository) Key() string {
	return r.key
}

// Load returns the stored workouts. Absent or corrupt data yields an empty
// sequence; only store failures are returned as errors.
func (r *Repository) Load(ctx context.Context) ([]domain.Workout, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	workouts, skipped, err := Decode(data)
	if err != nil {
		r.logger.Warn("ignoring unreadable snapshot", zap.String("key", r.key), zap.Error(err))
		return nil, nil
	}
	if skipped > 0 {
		observability.RecordSkippedRecords(skipped)
		r.logger.Warn("skipped unreadable workout records", zap.String("key", r.key), zap.Int("skipped", skipped))
	}
	return workouts, nil
}

// Save overwrites the snapshot with the full sequence.
func (r *Repository) Save(ctx context.Context, workouts []domain.Workout) error {
	data, err := Encode(workouts)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.key, data)
}

// Clear removes the snapshot.
func (r *Repository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, r.key)
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
