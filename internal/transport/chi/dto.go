package chi

import (
	"encoding/json"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/admissions"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	domschool "github.com/kailas-cloud/schoolkeuze/internal/domain/school"
	schooluc "github.com/kailas-cloud/schoolkeuze/internal/usecase/school"
	searchuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/search"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeUnauthorized        ErrorCode = "unauthorized"
	ErrorCodeNotFound            ErrorCode = "not_found"
	ErrorCodeInvalidPostalCode   ErrorCode = "invalid_postal_code"
	ErrorCodePostalCodeNotFound  ErrorCode = "postal_code_not_found"
	ErrorCodeGeocoderUnavailable ErrorCode = "geocoder_unavailable"
	ErrorCodeRateLimited         ErrorCode = "rate_limited"
	ErrorCodeProviderUnavailable ErrorCode = "provider_unavailable"
	ErrorCodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SchoolResponse is the wire form of a school.
type SchoolResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	BRIN           string           `json:"brin,omitempty"`
	WebsiteURL     string           `json:"websiteUrl,omitempty"`
	Phone          string           `json:"phone,omitempty"`
	Street         string           `json:"street,omitempty"`
	HouseNumber    string           `json:"houseNumber,omitempty"`
	PostalCode     string           `json:"postalCode,omitempty"`
	City           string           `json:"city"`
	Lat            *float64         `json:"lat"`
	Lon            *float64         `json:"lon"`
	Levels         []string         `json:"levels"`
	Concepts       []string         `json:"concepts"`
	Denomination   string           `json:"denomination,omitempty"`
	Size           *int             `json:"size,omitempty"`
	Results        json.RawMessage  `json:"results,omitempty"`
	Admissions     json.RawMessage  `json:"admissions,omitempty"`
	AdmissionsInfo *admissions.Info `json:"admissionsInfo,omitempty"`
	Source         string           `json:"source"`
	SourceURL      string           `json:"sourceUrl,omitempty"`
	DistanceKm     *float64         `json:"distanceKm,omitempty"`
	BikeMinutes    *int             `json:"bikeMinutes,omitempty"`
}

// SearchResponse is the body of GET /api/schools.
type SearchResponse struct {
	Items    []SchoolResponse `json:"items"`
	Warnings []string         `json:"warnings"`
}

// SchoolEnvelope is the body of GET /api/schools/{id}.
type SchoolEnvelope struct {
	School SchoolResponse `json:"school"`
}

// CompareItem is one compared school.
type CompareItem struct {
	SchoolResponse
	PassRateTrack   string   `json:"passRateTrack,omitempty"`
	PassRate        *float64 `json:"passRate"`
	PassRateDisplay string   `json:"passRateDisplay"`
}

// CompareResponse is the body of GET /api/compare.
type CompareResponse struct {
	Schools []CompareItem `json:"schools"`
}

// GeocodeResponse is the body of GET /api/geocode-zip.
type GeocodeResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Zip string  `json:"zip"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Schools int               `json:"schools"`
}

func schoolToResponse(s *domschool.School) SchoolResponse {
	resp := SchoolResponse{
		ID:             s.ID(),
		Name:           s.Name(),
		BRIN:           s.BRIN(),
		WebsiteURL:     s.WebsiteURL(),
		Phone:          s.Phone(),
		Street:         s.Street(),
		HouseNumber:    s.HouseNumber(),
		PostalCode:     s.PostalCode(),
		City:           s.City(),
		Levels:         level.Strings(s.Levels()),
		Concepts:       s.Concepts(),
		Denomination:   s.Denomination(),
		Results:        s.Results(),
		Admissions:     s.Admissions(),
		AdmissionsInfo: s.AdmissionsInfo(),
		Source:         s.Source(),
		SourceURL:      s.SourceURL(),
	}
	if resp.Concepts == nil {
		resp.Concepts = []string{}
	}
	if c, ok := s.Coordinate(); ok {
		resp.Lat, resp.Lon = &c.Lat, &c.Lon
	}
	if n, ok := s.Size(); ok {
		resp.Size = &n
	}
	return resp
}

func hitToResponse(h *searchuc.Hit) SchoolResponse {
	resp := schoolToResponse(&h.School)
	resp.DistanceKm = h.DistanceKm
	resp.BikeMinutes = h.BikeMinutes
	return resp
}

func comparisonToResponse(c *schooluc.Comparison) CompareItem {
	return CompareItem{
		SchoolResponse:  schoolToResponse(&c.School),
		PassRateTrack:   c.Track,
		PassRate:        c.PassRate,
		PassRateDisplay: c.Display,
	}
}
