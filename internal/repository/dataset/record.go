package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/admissions"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/school"
)

// DefaultSource tags schools loaded from the flat file.
const DefaultSource = "sample"

var nonWord = regexp.MustCompile(`\W+`)

// record is one input entry of the dataset file.
type record struct {
	BRIN           string           `json:"brin"`
	Name           string           `json:"name"`
	WebsiteURL     string           `json:"websiteUrl"`
	Phone          string           `json:"phone"`
	Street         string           `json:"street"`
	HouseNumber    string           `json:"houseNumber"`
	PostalCode     string           `json:"postalCode"`
	City           string           `json:"city"`
	Lat            *float64         `json:"lat"`
	Lon            *float64         `json:"lon"`
	Levels         []string         `json:"levels"`
	Concepts       []string         `json:"concepts"`
	Denomination   string           `json:"denomination"`
	Size           *int             `json:"size"`
	Results        json.RawMessage  `json:"results"`
	Exams          json.RawMessage  `json:"examens_2023_2024"`
	ExamsSource    json.RawMessage  `json:"examens_bron"`
	Admissions     json.RawMessage  `json:"admissions"`
	AdmissionsInfo *admissions.Info `json:"admissionsInfo"`
	Source         string           `json:"source"`
	SourceURL      string           `json:"sourceUrl"`
}

// ID derives the identifier of the record at position index.
func ID(brin, name string, index int) string {
	base := brin
	if base == "" {
		base = name
	}
	return fmt.Sprintf("sample_%s_%d", nonWord.ReplaceAllString(strings.ToLower(base), "_"), index)
}

func (r *record) toSchool(index int, defaultCity string) (school.School, error) {
	f := school.Fields{
		ID:             ID(r.BRIN, r.Name, index),
		Name:           r.Name,
		BRIN:           r.BRIN,
		WebsiteURL:     r.WebsiteURL,
		Phone:          r.Phone,
		Street:         r.Street,
		HouseNumber:    r.HouseNumber,
		PostalCode:     r.PostalCode,
		City:           r.City,
		Levels:         level.Parse(r.Levels),
		Concepts:       r.Concepts,
		Denomination:   r.Denomination,
		Size:           r.Size,
		Admissions:     nullToNil(r.Admissions),
		AdmissionsInfo: r.AdmissionsInfo,
		Source:         r.Source,
		SourceURL:      r.SourceURL,
	}
	if f.City == "" {
		f.City = defaultCity
	}
	if f.Source == "" {
		f.Source = DefaultSource
	}
	if r.Lat != nil && r.Lon != nil {
		if c, ok := geo.NewCoordinate(*r.Lat, *r.Lon); ok {
			f.Coordinate = &c
		}
	}

	results, err := r.mergedResults()
	if err != nil {
		return school.School{}, fmt.Errorf("record %d (%s): %w", index, r.Name, err)
	}
	f.Results = results

	return school.New(f)
}

// mergedResults folds top-level exam fields into the results payload.
// An object payload is kept and extended; any other payload is replaced.
func (r *record) mergedResults() (json.RawMessage, error) {
	if r.Exams == nil && r.ExamsSource == nil {
		return nullToNil(r.Results), nil
	}

	base := map[string]json.RawMessage{}
	if trimmed := bytes.TrimSpace(r.Results); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &base); err != nil {
			return nil, fmt.Errorf("decode results: %w", err)
		}
	}
	base[school.ExamsKey] = orNull(r.Exams)
	base[school.ExamsSourceKey] = orNull(r.ExamsSource)

	out, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	return out, nil
}

func orNull(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return json.RawMessage("null")
	}
	return raw
}

func nullToNil(raw json.RawMessage) json.RawMessage {
	if t := bytes.TrimSpace(raw); len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return nil
	}
	return raw
}
