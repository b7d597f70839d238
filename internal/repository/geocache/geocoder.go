// Package geocache caches postal-code coordinates in a key-value store.
package geocache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/schoolkeuze/internal/db"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
)

const (
	// DefaultTTL keeps a resolved postal code for thirty days.
	DefaultTTL = 30 * 24 * time.Hour

	// lookupTimeout bounds a shared upstream lookup once it is detached from its caller.
	lookupTimeout = 30 * time.Second
)

// Geocoder resolves a normalized postal code.
type Geocoder interface {
	Geocode(ctx context.Context, postalCode string) (geo.Coordinate, error)
}

// store is the consumer interface for the geocode cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedGeocoder caches successful lookups and collapses concurrent lookups
// of the same postal code into one upstream call. Misses and failures are not cached.
type CachedGeocoder struct {
	inner      Geocoder
	store      store
	prefix     string
	ttl        time.Duration
	group      singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Geocoder,
	s store,
	prefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedGeocoder {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedGeocoder{
		inner:      inner,
		store:      s,
		prefix:     prefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Geocode returns a cached coordinate or asks the inner geocoder.
func (c *CachedGeocoder) Geocode(ctx context.Context, postalCode string) (geo.Coordinate, error) {
	key := c.cacheKey(postalCode)

	if coord, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return coord, nil
	}
	c.incCache("miss")

	// The shared lookup outlives any single caller; each caller waits on its own ctx.
	ch := c.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		coord, err := c.inner.Geocode(lookupCtx, postalCode)
		if err != nil {
			return geo.Coordinate{}, err
		}
		c.putToCache(lookupCtx, key, coord)
		return coord, nil
	})

	select {
	case <-ctx.Done():
		return geo.Coordinate{}, fmt.Errorf("geocode %s: %w", postalCode, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return geo.Coordinate{}, fmt.Errorf("geocode %s: %w", postalCode, res.Err)
		}
		coord, _ := res.Val.(geo.Coordinate)
		return coord, nil
	}
}

func (c *CachedGeocoder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedGeocoder) cacheKey(postalCode string) string {
	h := sha256.Sum256([]byte(postalCode))
	return c.prefix + "geocode:" + hex.EncodeToString(h[:])
}

func (c *CachedGeocoder) getFromCache(ctx context.Context, key string) (geo.Coordinate, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached coordinate", zap.String("key", key), zap.Error(err))
		}
		return geo.Coordinate{}, false
	}

	var coord geo.Coordinate
	if err := json.Unmarshal(data, &coord); err != nil || !coord.Valid() {
		c.logger.Warn("Discarding malformed cached coordinate", zap.String("key", key), zap.Error(err))
		return geo.Coordinate{}, false
	}
	return coord, true
}

func (c *CachedGeocoder) putToCache(ctx context.Context, key string, coord geo.Coordinate) {
	data, err := json.Marshal(coord)
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache coordinate", zap.String("key", key), zap.Error(err))
	}
}
