package geocache

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/schoolkeuze/internal/db"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
)

type mockGeocoder struct {
	mu        sync.Mutex
	calls     int
	geocodeFn func(ctx context.Context, postalCode string) (geo.Coordinate, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, postalCode string) (geo.Coordinate, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.geocodeFn(ctx, postalCode)
}

func (m *mockGeocoder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn        func(ctx context.Context, key string) ([]byte, error)
	setWithTTLFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setWithTTLFn != nil {
		return m.setWithTTLFn(ctx, key, value, ttl)
	}
	return nil
}
