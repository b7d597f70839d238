package geocache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schoolkeuze/internal/domain"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
)

var dam = geo.Coordinate{Lat: 52.3731, Lon: 4.8926}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_geocode_cache_total"}, []string{"result"})
}

func TestGeocode_MissStoresWithTTL(t *testing.T) {
	inner := &mockGeocoder{geocodeFn: func(context.Context, string) (geo.Coordinate, error) { return dam, nil }}
	var storedKey, storedValue string
	var storedTTL time.Duration
	store := &mockKVStore{setWithTTLFn: func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		storedKey, storedValue, storedTTL = key, string(value), ttl
		return nil
	}}
	counter := newCounter()
	c := New(inner, store, "sk:", time.Hour, counter, zap.NewNop())

	got, err := c.Geocode(context.Background(), "1012AB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dam {
		t.Errorf("got %+v", got)
	}
	if !strings.HasPrefix(storedKey, "sk:geocode:") || len(storedKey) != len("sk:geocode:")+64 {
		t.Errorf("key = %q", storedKey)
	}
	if storedValue != `{"lat":52.3731,"lon":4.8926}` {
		t.Errorf("value = %s", storedValue)
	}
	if storedTTL != time.Hour {
		t.Errorf("ttl = %v", storedTTL)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Errorf("miss = %v", v)
	}
}

func TestGeocode_Hit(t *testing.T) {
	inner := &mockGeocoder{geocodeFn: func(context.Context, string) (geo.Coordinate, error) {
		t.Error("inner geocoder must not be called on a hit")
		return geo.Coordinate{}, nil
	}}
	store := &mockKVStore{getFn: func(context.Context, string) ([]byte, error) {
		return []byte(`{"lat":52.3731,"lon":4.8926}`), nil
	}}
	counter := newCounter()
	c := New(inner, store, "sk:", 0, counter, zap.NewNop())

	got, err := c.Geocode(context.Background(), "1012AB")
	if err != nil || got != dam {
		t.Fatalf("got %+v, %v", got, err)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("hit")); v != 1 {
		t.Errorf("hit = %v", v)
	}
}

func TestGeocode_MalformedCacheEntryIsIgnored(t *testing.T) {
	inner := &mockGeocoder{geocodeFn: func(context.Context, string) (geo.Coordinate, error) { return dam, nil }}
	store := &mockKVStore{getFn: func(context.Context, string) ([]byte, error) {
		return []byte(`{"lat":900,"lon":0}`), nil
	}}
	c := New(inner, store, "sk:", 0, nil, zap.NewNop())

	if got, err := c.Geocode(context.Background(), "1012AB"); err != nil || got != dam {
		t.Fatalf("got %+v, %v", got, err)
	}
	if inner.callCount() != 1 {
		t.Errorf("inner calls = %d", inner.callCount())
	}
}

func TestGeocode_ErrorsAreNotCached(t *testing.T) {
	inner := &mockGeocoder{geocodeFn: func(context.Context, string) (geo.Coordinate, error) {
		return geo.Coordinate{}, domain.ErrPostalCodeNotFound
	}}
	store := &mockKVStore{setWithTTLFn: func(context.Context, string, []byte, time.Duration) error {
		t.Error("a failed lookup must not be cached")
		return nil
	}}
	c := New(inner, store, "sk:", 0, nil, zap.NewNop())

	if _, err := c.Geocode(context.Background(), "9999ZZ"); !errors.Is(err, domain.ErrPostalCodeNotFound) {
		t.Errorf("expected ErrPostalCodeNotFound, got %v", err)
	}
}

func TestGeocode_StoreFailureFallsThrough(t *testing.T) {
	inner := &mockGeocoder{geocodeFn: func(context.Context, string) (geo.Coordinate, error) { return dam, nil }}
	store := &mockKVStore{
		getFn: func(context.Context, string) ([]byte, error) { return nil, errors.New("connection reset") },
		setWithTTLFn: func(context.Context, string, []byte, time.Duration) error {
			return errors.New("connection reset")
		},
	}
	c := New(inner, store, "sk:", 0, nil, zap.NewNop())
	if got, err := c.Geocode(context.Background(), "1012AB"); err != nil || got != dam {
		t.Fatalf("got %+v, %v", got, err)
	}
}

func TestGeocode_CollapsesConcurrentLookups(t *testing.T) {
	release := make(chan struct{})
	inner := &mockGeocoder{geocodeFn: func(context.Context, string) (geo.Coordinate, error) {
		<-release
		return dam, nil
	}}
	c := New(inner, &mockKVStore{}, "sk:", 0, nil, zap.NewNop())

	const n = 8
	var wg sync.WaitGroup
	started := make(chan struct{}, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			if got, err := c.Geocode(context.Background(), "1012AB"); err != nil || got != dam {
				t.Errorf("got %+v, %v", got, err)
			}
		}()
	}
	for range n {
		<-started
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls := inner.callCount(); calls < 1 || calls >= n {
		t.Errorf("concurrent lookups were not collapsed: %d inner calls", calls)
	}
}

func TestGeocode_CancelledCallerDoesNotFailOthers(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	inner := &mockGeocoder{geocodeFn: func(ctx context.Context, string) (geo.Coordinate, error) {
		entered <- struct{}{}
		<-release
		if err := ctx.Err(); err != nil {
			return geo.Coordinate{}, err
		}
		return dam, nil
	}}
	c := New(inner, &mockKVStore{}, "sk:", 0, nil, zap.NewNop())

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Geocode(firstCtx, "1012AB")
		firstErr <- err
	}()
	<-entered

	type result struct {
		coord geo.Coordinate
		err   error
	}
	second := make(chan result, 1)
	go func() {
		coord, err := c.Geocode(context.Background(), "1012AB")
		second <- result{coord, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller: got %v, want context.Canceled", err)
	}

	close(release)
	res := <-second
	if res.err != nil || res.coord != dam {
		t.Fatalf("second caller: got %+v, %v", res.coord, res.err)
	}
}

func TestNew_DefaultTTL(t *testing.T) {
	c := New(&mockGeocoder{}, &mockKVStore{}, "", 0, nil, zap.NewNop())
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v", c.ttl)
	}
}
