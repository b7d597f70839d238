package school

import (
	"encoding/json"

	"golang.org/x/text/cases"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/admissions"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/postcode"
	domschool "github.com/kailas-cloud/schoolkeuze/internal/domain/school"
)

// schoolDoc is the RedisJSON representation of a school.
// groups, postalKey and nameKey are derived fields that exist only for the index.
type schoolDoc struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	NameKey        string           `json:"nameKey"`
	BRIN           string           `json:"brin,omitempty"`
	WebsiteURL     string           `json:"websiteUrl,omitempty"`
	Phone          string           `json:"phone,omitempty"`
	Street         string           `json:"street,omitempty"`
	HouseNumber    string           `json:"houseNumber,omitempty"`
	PostalCode     string           `json:"postalCode,omitempty"`
	PostalKey      string           `json:"postalKey,omitempty"`
	City           string           `json:"city,omitempty"`
	Lat            *float64         `json:"lat,omitempty"`
	Lon            *float64         `json:"lon,omitempty"`
	Levels         []string         `json:"levels"`
	Groups         []string         `json:"groups"`
	Concepts       []string         `json:"concepts,omitempty"`
	Denomination   string           `json:"denomination,omitempty"`
	Size           *int             `json:"size,omitempty"`
	Results        json.RawMessage  `json:"results,omitempty"`
	Admissions     json.RawMessage  `json:"admissions,omitempty"`
	AdmissionsInfo *admissions.Info `json:"admissionsInfo,omitempty"`
	Source         string           `json:"source"`
	SourceURL      string           `json:"sourceUrl,omitempty"`
}

func toDoc(s *domschool.School) schoolDoc {
	f := s.Fields()
	d := schoolDoc{
		ID:             f.ID,
		Name:           f.Name,
		NameKey:        cases.Fold().String(f.Name),
		BRIN:           f.BRIN,
		WebsiteURL:     f.WebsiteURL,
		Phone:          f.Phone,
		Street:         f.Street,
		HouseNumber:    f.HouseNumber,
		PostalCode:     f.PostalCode,
		PostalKey:      postcode.Normalize(f.PostalCode),
		City:           f.City,
		Levels:         level.Strings(f.Levels),
		Groups:         level.Strings(level.Groups(f.Levels)),
		Concepts:       f.Concepts,
		Denomination:   f.Denomination,
		Size:           f.Size,
		Results:        f.Results,
		Admissions:     f.Admissions,
		AdmissionsInfo: f.AdmissionsInfo,
		Source:         f.Source,
		SourceURL:      f.SourceURL,
	}
	if c := f.Coordinate; c != nil {
		lat, lon := c.Lat, c.Lon
		d.Lat, d.Lon = &lat, &lon
	}
	return d
}

func fromDoc(d *schoolDoc) domschool.School {
	f := domschool.Fields{
		ID:             d.ID,
		Name:           d.Name,
		BRIN:           d.BRIN,
		WebsiteURL:     d.WebsiteURL,
		Phone:          d.Phone,
		Street:         d.Street,
		HouseNumber:    d.HouseNumber,
		PostalCode:     d.PostalCode,
		City:           d.City,
		Levels:         level.Parse(d.Levels),
		Concepts:       d.Concepts,
		Denomination:   d.Denomination,
		Size:           d.Size,
		Results:        d.Results,
		Admissions:     d.Admissions,
		AdmissionsInfo: d.AdmissionsInfo,
		Source:         d.Source,
		SourceURL:      d.SourceURL,
	}
	if d.Lat != nil && d.Lon != nil {
		if c, ok := geo.NewCoordinate(*d.Lat, *d.Lon); ok {
			f.Coordinate = &c
		}
	}
	return domschool.Reconstruct(f)
}

func decodeDoc(raw []byte) (domschool.School, error) {
	var d schoolDoc
	if err := json.Unmarshal(raw, &d); err != nil {
		return domschool.School{}, err //nolint:wrapcheck // wrapped by callers with the key
	}
	return fromDoc(&d), nil
}

func marshalDoc(d *schoolDoc) ([]byte, error) {
	return json.Marshal(d) //nolint:wrapcheck // wrapped by the caller with the id
}
