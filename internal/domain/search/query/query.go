// Package query turns raw, caller-supplied filter parameters into a Query.
// Construction never fails: malformed values are dropped and treated as absent.
package query

import (
	"math"
	"strings"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/postcode"
)

// Result cap bounds.
const (
	DefaultTake = 50
	MaxTake     = 200
)

// MinPushdownPrefix is the shortest postal prefix a coarse store query may evaluate.
const MinPushdownPrefix = 2

// Limits bounds the result cap.
type Limits struct {
	DefaultTake int
	MaxTake     int
}

// DefaultLimits returns the standard cap bounds.
func DefaultLimits() Limits {
	return Limits{DefaultTake: DefaultTake, MaxTake: MaxTake}
}

// Params are raw filter values. Nil pointers and empty strings mean "not given".
type Params struct {
	Q                string
	Concept          string
	PostalCode       string
	Levels           []string
	Lat              *float64
	Lon              *float64
	RadiusKm         *float64
	MaxMinutes       *float64
	OriginPostalCode string
	Take             *float64
}

// Query is a normalized filter query (immutable value object).
type Query struct {
	text             string
	concept          string
	postalPrefix     string
	selection        level.Selection
	origin           *geo.Coordinate
	originPostalCode string
	radiusKm         *float64
	take             int
}

// New normalizes p. Invalid values are dropped.
func New(p Params, lim Limits) Query {
	if lim.MaxTake < 1 {
		lim.MaxTake = MaxTake
	}
	if lim.DefaultTake < 1 || lim.DefaultTake > lim.MaxTake {
		lim.DefaultTake = min(DefaultTake, lim.MaxTake)
	}

	q := Query{
		text:         strings.TrimSpace(p.Q),
		concept:      strings.TrimSpace(p.Concept),
		selection:    level.ParseSelection(p.Levels),
		take:         lim.DefaultTake,
	}

	if prefix := postcode.Normalize(p.PostalCode); postcode.ValidPrefix(prefix) {
		q.postalPrefix = prefix
	}

	if lat, lon, ok := finitePair(p.Lat, p.Lon); ok {
		if c, ok := geo.NewCoordinate(lat, lon); ok {
			q.origin = &c
		}
	}
	if code := postcode.Normalize(p.OriginPostalCode); code != "" {
		q.originPostalCode = code
	}

	q.radiusKm = effectiveRadius(p.RadiusKm, p.MaxMinutes)

	if t, ok := finite(p.Take); ok {
		q.take = clampTake(t, lim.MaxTake)
	}

	return q
}

// effectiveRadius picks the tighter of an explicit radius and a travel-time budget.
func effectiveRadius(radiusKm, maxMinutes *float64) *float64 {
	var out *float64
	if r, ok := finite(radiusKm); ok && r >= 0 {
		out = &r
	}
	if m, ok := finite(maxMinutes); ok && m >= 0 {
		r := geo.RadiusForMinutes(m)
		if out == nil || r < *out {
			out = &r
		}
	}
	return out
}

func clampTake(t float64, maxTake int) int {
	if t < 1 {
		return 1
	}
	if t > float64(maxTake) {
		return maxTake
	}
	return int(t)
}

func finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func finitePair(a, b *float64) (float64, float64, bool) {
	x, okA := finite(a)
	y, okB := finite(b)
	return x, y, okA && okB
}

// Text returns the free-text substring, or "".
func (q Query) Text() string { return q.text }

// Concept returns the concept substring, or "".
func (q Query) Concept() string { return q.concept }

// PostalPrefix returns the normalized postal-code prefix, or "".
func (q Query) PostalPrefix() string { return q.postalPrefix }

// Selection returns the selected level groups.
func (q Query) Selection() level.Selection { return q.selection }

// Origin returns the distance origin, if known.
func (q Query) Origin() (geo.Coordinate, bool) {
	if q.origin == nil {
		return geo.Coordinate{}, false
	}
	return *q.origin, true
}

// OriginPostalCode returns the postal code to resolve into an origin, or "".
func (q Query) OriginPostalCode() string { return q.originPostalCode }

// RadiusKm returns the effective distance limit, if any.
func (q Query) RadiusKm() (float64, bool) {
	if q.radiusKm == nil {
		return 0, false
	}
	return *q.radiusKm, true
}

// Take returns the result cap.
func (q Query) Take() int { return q.take }

// HasDistance reports whether the distance predicate is active.
func (q Query) HasDistance() bool {
	return q.origin != nil && q.radiusKm != nil
}

// NeedsOrigin reports whether a distance limit was given without coordinates
// but with a postal code that can be resolved into an origin.
func (q Query) NeedsOrigin() bool {
	return q.radiusKm != nil && q.origin == nil && q.originPostalCode != ""
}

// WithOrigin returns a copy with the origin set.
func (q Query) WithOrigin(c geo.Coordinate) Query {
	q.origin = &c
	return q
}

// NeedsOverfetch reports whether some active predicate can only be evaluated in memory,
// so a coarse store fetch must return more candidates than the cap.
func (q Query) NeedsOverfetch() bool {
	if q.text != "" || q.concept != "" || q.HasDistance() {
		return true
	}
	return q.postalPrefix != "" && len(q.postalPrefix) < MinPushdownPrefix
}

// Coarse is the part of a query a simple tag store can evaluate.
type Coarse struct {
	Required     []level.Level
	Excluded     []level.Level
	PostalPrefix string
}

// Coarse returns the pushable predicates under policy p.
func (q Query) Coarse(p level.Policy) Coarse {
	c := Coarse{
		Required: q.selection.Groups(),
		Excluded: q.selection.Excluded(p),
	}
	if len(q.postalPrefix) >= MinPushdownPrefix {
		c.PostalPrefix = q.postalPrefix
	}
	return c
}
