package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schoolkeuze/internal/domain"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	domschool "github.com/kailas-cloud/schoolkeuze/internal/domain/school"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/query"
	"github.com/kailas-cloud/schoolkeuze/internal/metrics"
	geocodeuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/geocode"
	healthuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/health"
	schooluc "github.com/kailas-cloud/schoolkeuze/internal/usecase/school"
	searchuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/search"
)

func TestMain(m *testing.M) {
	metrics.RegisterSearchMetrics()
	m.Run()
}

type mockCatalog struct {
	schools []domschool.School
	err     error
}

func (m *mockCatalog) Name() string { return "mock" }

func (m *mockCatalog) List(context.Context) ([]domschool.School, error) {
	return m.schools, m.err
}

func (m *mockCatalog) Count(context.Context) (int, error) {
	return len(m.schools), m.err
}

func (m *mockCatalog) Get(_ context.Context, id string) (domschool.School, error) {
	if m.err != nil {
		return domschool.School{}, m.err
	}
	for i := range m.schools {
		if m.schools[i].ID() == id {
			return m.schools[i], nil
		}
	}
	return domschool.School{}, domain.ErrNotFound
}

func (m *mockCatalog) GetMany(ctx context.Context, ids []string) ([]domschool.School, error) {
	var out []domschool.School
	for _, id := range ids {
		s, err := m.Get(ctx, id)
		if err == nil {
			out = append(out, s)
		}
	}
	return out, m.err
}

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, postalCode string) (geo.Coordinate, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, postalCode string) (geo.Coordinate, error) {
	return m.geocodeFn(ctx, postalCode)
}

// Alpha sits at the origin, Bravo ~10 km north, Charlie has no location.
var origin = geo.Coordinate{Lat: 52.36, Lon: 4.88}

func fixtures() []domschool.School {
	far := geo.Coordinate{Lat: 52.45, Lon: 4.88}
	return []domschool.School{
		domschool.Reconstruct(domschool.Fields{
			ID: "a", Name: "Alpha Lyceum", PostalCode: "1071 AB", City: "Amsterdam",
			Coordinate: &origin, Levels: []level.Level{level.VWO}, Source: "sample",
		}),
		domschool.Reconstruct(domschool.Fields{
			ID: "b", Name: "Bravo College", PostalCode: "1031 CD", City: "Amsterdam",
			Coordinate: &far, Levels: []level.Level{level.HAVO, level.VMBOT}, Source: "sample",
			Results: []byte(`{"examens_2023_2024":{"HAVO":{"slagingspercentage":88.4}}}`),
		}),
		domschool.Reconstruct(domschool.Fields{
			ID: "c", Name: "Charlie School", City: "Amsterdam",
			Levels: []level.Level{level.VWO, level.HAVO}, Source: "sample",
		}),
	}
}

type testEnv struct {
	catalog  *mockCatalog
	geocoder *mockGeocoder
	handler  http.Handler
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	env := &testEnv{
		catalog: &mockCatalog{schools: fixtures()},
		geocoder: &mockGeocoder{geocodeFn: func(context.Context, string) (geo.Coordinate, error) {
			return origin, nil
		}},
	}
	geocodeSvc := geocodeuc.New(env.geocoder)
	srv := NewServer(
		searchuc.New(env.catalog, geocodeSvc, searchuc.Config{}),
		schooluc.New(env.catalog),
		geocodeSvc,
		healthuc.New(nil, env.catalog),
		query.DefaultLimits(),
		zap.NewNop(),
	)
	env.handler = srv.Router(opts)
	return env
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}
