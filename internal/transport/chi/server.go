// Package chi exposes the school search engine over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schoolkeuze/internal/domain"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/query"
	"github.com/kailas-cloud/schoolkeuze/internal/metrics"
	geocodeuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/geocode"
	healthuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/health"
	schooluc "github.com/kailas-cloud/schoolkeuze/internal/usecase/school"
	searchuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the school API.
type Server struct {
	search        *searchuc.Service
	schools       *schooluc.Service
	geocode       *geocodeuc.Service
	health        *healthuc.Service
	limits        query.Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	schools *schooluc.Service,
	geocode *geocodeuc.Service,
	health *healthuc.Service,
	limits query.Limits,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		schools: schools,
		geocode: geocode,
		health:  health,
		limits:  limits,
		logger:  logger,
	}
	// Order matters: a rate-limited geocoder error also matches ErrGeocoderUnavailable.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidPostalCode, http.StatusBadRequest, ErrorCodeInvalidPostalCode),
		sentinelHandler(domain.ErrPostalCodeNotFound, http.StatusNotFound, ErrorCodePostalCodeNotFound),
		sentinelHandler(domain.ErrGeocoderUnavailable, http.StatusBadGateway, ErrorCodeGeocoderUnavailable),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrProviderUnavailable, http.StatusServiceUnavailable, ErrorCodeProviderUnavailable),
	}
	return s
}

// Options configures the router middleware stack.
type Options struct {
	APIKeys []string
}

// Router mounts the API and its middleware stack on a chi router.
func (s *Server) Router(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(opts.APIKeys))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api", func(r chi.Router) {
		r.Get("/schools", s.SearchSchools)
		r.Get("/schools.geojson", s.SearchSchoolsGeoJSON)
		r.Get("/schools/{id}", s.GetSchool)
		r.Get("/schools/{id}/admissions", s.GetAdmissions)
		r.Get("/compare", s.CompareSchools)
		r.Get("/geocode-zip", s.GeocodeZip)
	})

	return r
}

// SearchSchools handles GET /api/schools.
func (s *Server) SearchSchools(w http.ResponseWriter, r *http.Request) {
	hits, warnings, ok := s.runSearch(w, r)
	if !ok {
		return
	}

	items := make([]SchoolResponse, len(hits))
	for i := range hits {
		items[i] = hitToResponse(&hits[i])
	}
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: items, Warnings: warnings})
}

// SearchSchoolsGeoJSON handles GET /api/schools.geojson.
func (s *Server) SearchSchoolsGeoJSON(w http.ResponseWriter, r *http.Request) {
	hits, warnings, ok := s.runSearch(w, r)
	if !ok {
		return
	}
	if len(warnings) > 0 {
		w.Header().Set("X-Search-Warnings", strings.Join(warnings, ","))
	}

	body, err := json.Marshal(hitsToFeatureCollection(hits))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request) ([]searchuc.Hit, []string, bool) {
	params := bindSearchParams(r.URL.Query())

	res, err := s.search.Search(r.Context(), query.New(params.Query(), s.limits))
	if err != nil {
		s.handleDomainError(w, err)
		return nil, nil, false
	}

	hits := res.Items
	if favorites := params.FavoriteIDs(); favorites != nil {
		hits = s.search.SortForDisplay(hits, favorites)
	}
	return hits, res.Warnings, true
}

// GetSchool handles GET /api/schools/{id}.
func (s *Server) GetSchool(w http.ResponseWriter, r *http.Request) {
	sc, err := s.schools.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SchoolEnvelope{School: schoolToResponse(&sc)})
}

// GetAdmissions handles GET /api/schools/{id}/admissions.
func (s *Server) GetAdmissions(w http.ResponseWriter, r *http.Request) {
	info, err := s.schools.Admissions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// CompareSchools handles GET /api/compare.
func (s *Server) CompareSchools(w http.ResponseWriter, r *http.Request) {
	ids := splitList(r.URL.Query()["ids"])

	comparisons, err := s.schools.Compare(r.Context(), ids)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]CompareItem, len(comparisons))
	for i := range comparisons {
		items[i] = comparisonToResponse(&comparisons[i])
	}
	writeJSON(w, http.StatusOK, CompareResponse{Schools: items})
}

// GeocodeZip handles GET /api/geocode-zip.
func (s *Server) GeocodeZip(w http.ResponseWriter, r *http.Request) {
	res, err := s.geocode.Lookup(r.Context(), r.URL.Query().Get("zip"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GeocodeResponse{
		Lat: res.Coordinate.Lat,
		Lon: res.Coordinate.Lon,
		Zip: res.PostalCode,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Schools: report.Schools,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidPostalCode,
		domain.ErrPostalCodeNotFound,
		domain.ErrGeocoderUnavailable,
		domain.ErrRateLimited,
		domain.ErrNotFound,
		domain.ErrProviderUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
