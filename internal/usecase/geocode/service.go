package geocode

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/schoolkeuze/internal/domain"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/postcode"
)

// Result is a resolved postal code.
type Result struct {
	PostalCode string
	Coordinate geo.Coordinate
}

// Service validates postal codes and resolves them through a geocoder.
type Service struct {
	geocoder Geocoder
}

// New creates a geocode service. geocoder may be nil when geocoding is disabled.
func New(geocoder Geocoder) *Service {
	return &Service{geocoder: geocoder}
}

// Enabled reports whether a geocoder is configured.
func (s *Service) Enabled() bool { return s.geocoder != nil }

// Lookup normalizes raw, validates it as 1234AB and resolves it.
func (s *Service) Lookup(ctx context.Context, raw string) (Result, error) {
	code, ok := postcode.Parse(raw)
	if !ok {
		return Result{}, fmt.Errorf("%q: %w", raw, domain.ErrInvalidPostalCode)
	}
	if s.geocoder == nil {
		return Result{}, fmt.Errorf("geocoding disabled: %w", domain.ErrGeocoderUnavailable)
	}
	c, err := s.geocoder.Geocode(ctx, code)
	if err != nil {
		return Result{}, fmt.Errorf("lookup %s: %w", code, err)
	}
	return Result{PostalCode: code, Coordinate: c}, nil
}

// Resolve implements the search engine's origin resolver.
func (s *Service) Resolve(ctx context.Context, postalCode string) (geo.Coordinate, error) {
	r, err := s.Lookup(ctx, postalCode)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return r.Coordinate, nil
}
