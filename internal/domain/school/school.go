// Package school holds the School aggregate read by the filter engine.
package school

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/admissions"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
)

// Fields carries every School attribute for construction and hydration.
type Fields struct {
	ID           string
	Name         string
	BRIN         string
	WebsiteURL   string
	Phone        string
	Street       string
	HouseNumber  string
	PostalCode   string
	City         string
	Coordinate   *geo.Coordinate
	Levels       []level.Level
	Concepts     []string
	Denomination string
	Size         *int
	// Results and Admissions are open-ended JSON payloads; nil when absent.
	Results        json.RawMessage
	Admissions     json.RawMessage
	AdmissionsInfo *admissions.Info
	Source         string
	SourceURL      string
}

// School is one secondary school (immutable value object).
type School struct {
	f Fields
}

// New validates and creates a School.
func New(f Fields) (School, error) {
	if f.ID == "" {
		return School{}, fmt.Errorf("school ID is required")
	}
	if f.Name == "" {
		return School{}, fmt.Errorf("school name is required")
	}
	if f.Coordinate != nil && !f.Coordinate.Valid() {
		return School{}, fmt.Errorf("school %s: coordinate out of range", f.ID)
	}
	for _, l := range f.Levels {
		if !l.IsValid() {
			return School{}, fmt.Errorf("school %s: unknown level %q", f.ID, l)
		}
	}
	return Reconstruct(f), nil
}

// Reconstruct creates a School without validation (storage hydration).
func Reconstruct(f Fields) School {
	if f.Coordinate != nil {
		c := *f.Coordinate
		f.Coordinate = &c
	}
	if f.Size != nil {
		n := *f.Size
		f.Size = &n
	}
	f.Levels = slices.Clone(f.Levels)
	f.Concepts = slices.Clone(f.Concepts)
	return School{f: f}
}

// ID returns the school identifier.
func (s *School) ID() string { return s.f.ID }

// Name returns the display name.
func (s *School) Name() string { return s.f.Name }

// BRIN returns the ministry registration number, if known.
func (s *School) BRIN() string { return s.f.BRIN }

// WebsiteURL returns the school website, if known.
func (s *School) WebsiteURL() string { return s.f.WebsiteURL }

// Phone returns the contact phone number.
func (s *School) Phone() string { return s.f.Phone }

// Street returns the street name.
func (s *School) Street() string { return s.f.Street }

// HouseNumber returns the house number.
func (s *School) HouseNumber() string { return s.f.HouseNumber }

// PostalCode returns the postal code as stored.
func (s *School) PostalCode() string { return s.f.PostalCode }

// City returns the city.
func (s *School) City() string { return s.f.City }

// Coordinate returns the location. Both components are present or neither is.
func (s *School) Coordinate() (geo.Coordinate, bool) {
	if s.f.Coordinate == nil {
		return geo.Coordinate{}, false
	}
	return *s.f.Coordinate, true
}

// Levels returns the offered levels.
func (s *School) Levels() []level.Level { return s.f.Levels }

// Concepts returns the pedagogical concept tags.
func (s *School) Concepts() []string { return s.f.Concepts }

// Denomination returns the religious or philosophical denomination.
func (s *School) Denomination() string { return s.f.Denomination }

// Size returns the enrollment size, if known.
func (s *School) Size() (int, bool) {
	if s.f.Size == nil {
		return 0, false
	}
	return *s.f.Size, true
}

// Results returns the raw results payload.
func (s *School) Results() json.RawMessage { return s.f.Results }

// Exams returns the exam statistics embedded in the results payload.
func (s *School) Exams() ExamResults { return ParseExamResults(s.f.Results) }

// Admissions returns the raw admissions payload.
func (s *School) Admissions() json.RawMessage { return s.f.Admissions }

// AdmissionsInfo returns the cached admissions guidance, or nil.
func (s *School) AdmissionsInfo() *admissions.Info { return s.f.AdmissionsInfo }

// Source returns the provenance identifier of the record.
func (s *School) Source() string { return s.f.Source }

// SourceURL returns the provenance URL of the record.
func (s *School) SourceURL() string { return s.f.SourceURL }

// Fields returns a copy of all attributes.
func (s *School) Fields() Fields {
	out := Reconstruct(s.f)
	return out.f
}

// EnsureAdmissionsInfo returns the cached guidance, generating it when absent.
func (s *School) EnsureAdmissionsInfo() admissions.Info {
	if s.f.AdmissionsInfo != nil {
		return *s.f.AdmissionsInfo
	}
	return admissions.Build(s.f.Name, s.f.WebsiteURL, s.f.Levels)
}

// WithAdmissionsInfo returns a copy with the admissions guidance set.
func (s *School) WithAdmissionsInfo(info admissions.Info) School {
	out := Reconstruct(s.f)
	out.f.AdmissionsInfo = &info
	return out
}
