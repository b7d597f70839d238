package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/schoolkeuze/internal/domain"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
)

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, postalCode string) (geo.Coordinate, error)
	last      string
}

func (m *mockGeocoder) Geocode(ctx context.Context, postalCode string) (geo.Coordinate, error) {
	m.last = postalCode
	return m.geocodeFn(ctx, postalCode)
}

var dam = geo.Coordinate{Lat: 52.3731, Lon: 4.8926}

func TestLookup_Normalizes(t *testing.T) {
	g := &mockGeocoder{geocodeFn: func(context.Context, string) (geo.Coordinate, error) { return dam, nil }}
	svc := New(g)

	r, err := svc.Lookup(context.Background(), " 1012 ab ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.last != "1012AB" || r.PostalCode != "1012AB" || r.Coordinate != dam {
		t.Errorf("result = %+v, geocoded %q", r, g.last)
	}
}

func TestLookup_Invalid(t *testing.T) {
	g := &mockGeocoder{geocodeFn: func(context.Context, string) (geo.Coordinate, error) {
		t.Error("invalid codes must not reach the geocoder")
		return geo.Coordinate{}, nil
	}}
	svc := New(g)
	for _, raw := range []string{"", "1012", "1012ABC", "AB1012", "10 12 A"} {
		if _, err := svc.Lookup(context.Background(), raw); !errors.Is(err, domain.ErrInvalidPostalCode) {
			t.Errorf("%q: expected ErrInvalidPostalCode, got %v", raw, err)
		}
	}
}

func TestLookup_PropagatesGeocoderErrors(t *testing.T) {
	for _, want := range []error{domain.ErrPostalCodeNotFound, domain.ErrGeocoderUnavailable} {
		g := &mockGeocoder{geocodeFn: func(context.Context, string) (geo.Coordinate, error) { return geo.Coordinate{}, want }}
		if _, err := New(g).Lookup(context.Background(), "1012AB"); !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	}
}

func TestLookup_Disabled(t *testing.T) {
	svc := New(nil)
	if svc.Enabled() {
		t.Error("expected disabled")
	}
	if _, err := svc.Resolve(context.Background(), "1012AB"); !errors.Is(err, domain.ErrGeocoderUnavailable) {
		t.Errorf("expected ErrGeocoderUnavailable, got %v", err)
	}
}
