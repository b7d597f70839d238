package chi

import (
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/query"
)

// SearchParams are the query parameters of GET /api/schools and GET /api/schools.geojson.
type SearchParams struct {
	Q                *string
	Concept          *string
	PostalCode       *string
	Levels           *[]string
	Level            *string
	Lat              *float64
	Lon              *float64
	RadiusKm         *float64
	MaxMinutes       *float64
	OriginPostalCode *string
	Take             *float64
	Favorites        *[]string
}

// bindSearchParams binds every parameter independently. A value that does not
// bind is treated as absent, never as a request error.
func bindSearchParams(values url.Values) SearchParams {
	var p SearchParams
	bindOptional(values, "q", &p.Q)
	bindOptional(values, "concept", &p.Concept)
	bindOptional(values, "postalCode", &p.PostalCode)
	bindOptional(values, "levels", &p.Levels)
	bindOptional(values, "level", &p.Level)
	bindOptional(values, "lat", &p.Lat)
	bindOptional(values, "lon", &p.Lon)
	bindOptional(values, "radiusKm", &p.RadiusKm)
	bindOptional(values, "maxMinutes", &p.MaxMinutes)
	bindOptional(values, "originPostalCode", &p.OriginPostalCode)
	bindOptional(values, "take", &p.Take)
	bindOptional(values, "favorites", &p.Favorites)
	return p
}

func bindOptional[T any](values url.Values, name string, dest **T) {
	if err := runtime.BindQueryParameter("form", true, false, name, values, dest); err != nil {
		*dest = nil
	}
}

// Query converts the bound parameters into filter parameters.
func (p SearchParams) Query() query.Params {
	out := query.Params{
		Q:                deref(p.Q),
		Concept:          deref(p.Concept),
		PostalCode:       deref(p.PostalCode),
		Lat:              p.Lat,
		Lon:              p.Lon,
		RadiusKm:         p.RadiusKm,
		MaxMinutes:       p.MaxMinutes,
		OriginPostalCode: deref(p.OriginPostalCode),
		Take:             p.Take,
	}
	if p.Levels != nil {
		out.Levels = splitList(*p.Levels)
	}
	if p.Level != nil {
		out.Levels = append(out.Levels, splitList([]string{*p.Level})...)
	}
	return out
}

// FavoriteIDs returns the favorite ids, or nil when the parameter is absent.
func (p SearchParams) FavoriteIDs() []string {
	if p.Favorites == nil {
		return nil
	}
	return splitList(*p.Favorites)
}

// splitList flattens repeated and comma-separated values, dropping blanks.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
