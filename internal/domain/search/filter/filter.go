// Package filter applies a query's predicates to an in-memory school list.
package filter

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/postcode"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/school"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/query"
)

// Apply returns the schools matching every active predicate of q, in input order,
// truncated to q.Take(). It never fails; an empty result is a normal outcome.
func Apply(schools []school.School, q query.Query, p level.Policy) []school.School {
	m := newMatcher(q, p)
	out := make([]school.School, 0, min(len(schools), q.Take()))
	for i := range schools {
		if len(out) == q.Take() {
			break
		}
		if m.match(&schools[i]) {
			out = append(out, schools[i])
		}
	}
	return out
}

type matcher struct {
	fold    cases.Caser
	text    string
	concept string
	q       query.Query
	policy  level.Policy
}

func newMatcher(q query.Query, p level.Policy) *matcher {
	m := &matcher{fold: cases.Fold(), q: q, policy: p}
	m.text = m.fold.String(q.Text())
	m.concept = m.fold.String(q.Concept())
	return m
}

func (m *matcher) match(s *school.School) bool {
	return m.matchText(s) &&
		m.matchConcept(s) &&
		m.matchPostal(s) &&
		m.q.Selection().Matches(s.Levels(), m.policy) &&
		m.matchDistance(s)
}

func (m *matcher) contains(haystack, needle string) bool {
	return strings.Contains(m.fold.String(haystack), needle)
}

// matchText checks the name and, when present, the BRIN code.
func (m *matcher) matchText(s *school.School) bool {
	if m.text == "" {
		return true
	}
	if m.contains(s.Name(), m.text) {
		return true
	}
	return s.BRIN() != "" && m.contains(s.BRIN(), m.text)
}

func (m *matcher) matchConcept(s *school.School) bool {
	if m.concept == "" {
		return true
	}
	for _, c := range s.Concepts() {
		if m.contains(c, m.concept) {
			return true
		}
	}
	return false
}

func (m *matcher) matchPostal(s *school.School) bool {
	prefix := m.q.PostalPrefix()
	if prefix == "" {
		return true
	}
	return postcode.HasPrefix(s.PostalCode(), prefix)
}

// matchDistance keeps schools within the radius, boundary inclusive.
// Schools without a coordinate never pass an active distance predicate.
func (m *matcher) matchDistance(s *school.School) bool {
	if !m.q.HasDistance() {
		return true
	}
	origin, _ := m.q.Origin()
	radius, _ := m.q.RadiusKm()
	c, ok := s.Coordinate()
	if !ok {
		return false
	}
	return origin.DistanceKm(c) <= radius
}
