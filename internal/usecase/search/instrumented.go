package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/school"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/query"
	"github.com/kailas-cloud/schoolkeuze/internal/metrics"
)

// InstrumentedProvider wraps a Provider with fetch metrics and logging.
type InstrumentedProvider struct {
	inner  Provider
	logger *zap.Logger
}

// InstrumentedCoarseProvider is the instrumented form of a CoarseProvider.
type InstrumentedCoarseProvider struct {
	*InstrumentedProvider
	coarse CoarseProvider
}

// Instrument wraps p, keeping its coarse capability when it has one.
func Instrument(p Provider, logger *zap.Logger) Provider {
	ip := &InstrumentedProvider{inner: p, logger: logger}
	if cp, ok := p.(CoarseProvider); ok {
		return &InstrumentedCoarseProvider{InstrumentedProvider: ip, coarse: cp}
	}
	return ip
}

// Name returns the wrapped provider's name.
func (p *InstrumentedProvider) Name() string { return p.inner.Name() }

// List delegates to the inner provider and records the fetch.
func (p *InstrumentedProvider) List(ctx context.Context) ([]school.School, error) {
	start := time.Now()
	schools, err := p.inner.List(ctx)
	p.observe("list", start, len(schools), err)
	return schools, err //nolint:wrapcheck // decorator
}

// Fetch delegates to the inner coarse provider and records the fetch.
func (p *InstrumentedCoarseProvider) Fetch(
	ctx context.Context, c query.Coarse, limit int,
) ([]school.School, error) {
	start := time.Now()
	schools, err := p.coarse.Fetch(ctx, c, limit)
	p.observe("fetch", start, len(schools), err)
	return schools, err //nolint:wrapcheck // decorator
}

func (p *InstrumentedProvider) observe(op string, start time.Time, n int, err error) {
	duration := time.Since(start)
	name := p.inner.Name()
	metrics.SearchFetchDuration.WithLabelValues(name).Observe(duration.Seconds())

	if err != nil {
		p.logger.Error("School fetch failed",
			zap.String("provider", name),
			zap.String("op", op),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	metrics.SearchCandidates.WithLabelValues(name).Observe(float64(n))
	p.logger.Debug("School fetch completed",
		zap.String("provider", name),
		zap.String("op", op),
		zap.Duration("duration", duration),
		zap.Int("candidates", n),
	)
}
