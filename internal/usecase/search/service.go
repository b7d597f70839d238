package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schoolkeuze/internal/domain"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/admissions"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/school"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/filter"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/query"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/rank"
	"github.com/kailas-cloud/schoolkeuze/internal/logger"
	"github.com/kailas-cloud/schoolkeuze/internal/metrics"
)

// WarningOriginUnresolved is reported when a distance budget was requested for a
// postal code that could not be turned into a coordinate.
const WarningOriginUnresolved = "origin_unresolved"

// Defaults for candidate over-fetching.
const (
	DefaultFetchMultiplier = 4
	DefaultMaxCandidates   = 800
)

// Config tunes the engine.
type Config struct {
	Policy          level.Policy
	FetchMultiplier int
	MaxCandidates   int
}

// Hit is one search result. Distance fields are set only when an origin is active
// and the school has a coordinate.
type Hit struct {
	School      school.School
	DistanceKm  *float64
	BikeMinutes *int
}

// Result is the outcome of a search.
type Result struct {
	Items    []Hit
	Warnings []string
}

// Service runs filter queries against a school provider.
type Service struct {
	provider Provider
	resolver Resolver
	cfg      Config
}

// New creates a search service. resolver may be nil.
func New(provider Provider, resolver Resolver, cfg Config) *Service {
	if cfg.FetchMultiplier < 1 {
		cfg.FetchMultiplier = DefaultFetchMultiplier
	}
	if cfg.MaxCandidates < 1 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	return &Service{provider: provider, resolver: resolver, cfg: cfg}
}

// Search returns the schools matching q, in provider order, capped at q.Take().
func (s *Service) Search(ctx context.Context, q query.Query) (Result, error) {
	var res Result

	if q.NeedsOrigin() {
		origin, ok := s.resolveOrigin(ctx, q.OriginPostalCode())
		if ok {
			q = q.WithOrigin(origin)
		} else {
			res.Warnings = append(res.Warnings, WarningOriginUnresolved)
		}
	}

	candidates, err := s.fetch(ctx, q)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(s.provider.Name(), "error").Inc()
		return Result{}, domain.NewProviderError(s.provider.Name(), err)
	}

	matched := filter.Apply(candidates, q, s.cfg.Policy)
	res.Items = hits(matched, q)

	outcome := "ok"
	if len(res.Warnings) > 0 {
		outcome = "degraded"
	}
	metrics.SearchRequestsTotal.WithLabelValues(s.provider.Name(), outcome).Inc()
	metrics.SearchResults.Observe(float64(len(res.Items)))

	return res, nil
}

// CandidateLimit is how many candidates a coarse store is asked for.
func (s *Service) CandidateLimit(q query.Query) int {
	if !q.NeedsOverfetch() {
		return q.Take()
	}
	return max(q.Take(), min(q.Take()*s.cfg.FetchMultiplier, s.cfg.MaxCandidates))
}

func (s *Service) fetch(ctx context.Context, q query.Query) ([]school.School, error) {
	if cp, ok := s.provider.(CoarseProvider); ok {
		schools, err := cp.Fetch(ctx, q.Coarse(s.cfg.Policy), s.CandidateLimit(q))
		if err != nil {
			return nil, fmt.Errorf("fetch candidates: %w", err)
		}
		return schools, nil
	}
	schools, err := s.provider.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return schools, nil
}

func (s *Service) resolveOrigin(ctx context.Context, postalCode string) (geo.Coordinate, bool) {
	if s.resolver == nil {
		return geo.Coordinate{}, false
	}
	c, err := s.resolver.Resolve(ctx, postalCode)
	if err != nil {
		logger.FromContext(ctx).Warn("Origin postal code not resolved",
			zap.String("postal_code", postalCode),
			zap.Error(err),
		)
		return geo.Coordinate{}, false
	}
	return c, true
}

func hits(schools []school.School, q query.Query) []Hit {
	origin, hasOrigin := q.Origin()
	out := make([]Hit, len(schools))
	for i := range schools {
		out[i] = Hit{School: schools[i]}
		if !hasOrigin {
			continue
		}
		c, ok := schools[i].Coordinate()
		if !ok {
			continue
		}
		km := origin.DistanceKm(c)
		minutes := geo.TravelMinutes(km)
		out[i].DistanceKm = &km
		out[i].BikeMinutes = &minutes
	}
	return out
}

// SortForDisplay orders hits for list display: favorites first, then highest level, then name.
func (s *Service) SortForDisplay(items []Hit, favoriteIDs []string) []Hit {
	byID := make(map[string]Hit, len(items))
	schools := make([]school.School, len(items))
	for i := range items {
		schools[i] = items[i].School
		byID[schools[i].ID()] = items[i]
	}
	sorted := rank.SortForDisplay(schools, favoriteIDs)
	out := make([]Hit, len(sorted))
	for i := range sorted {
		out[i] = byID[sorted[i].ID()]
	}
	return out
}

// BuildAdmissionsInfo generates the bilingual admissions guidance for a school.
func (s *Service) BuildAdmissionsInfo(name, websiteURL string, levels []level.Level) admissions.Info {
	return admissions.Build(name, websiteURL, levels)
}
