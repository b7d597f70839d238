package filter

import (
	"math"
	"reflect"
	"testing"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/school"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/query"
)

func ptr(v float64) *float64 { return &v }

func newSchool(id, name string, levels ...level.Level) school.School {
	return school.Reconstruct(school.Fields{ID: id, Name: name, Levels: levels})
}

func ids(schools []school.School) []string {
	out := make([]string, 0, len(schools))
	for i := range schools {
		out = append(out, schools[i].ID())
	}
	return out
}

func scenario() []school.School {
	return []school.School{
		newSchool("A", "Alpha", level.VWO),
		newSchool("B", "Bravo", level.HAVO, level.VMBOT),
		newSchool("C", "Charlie", level.VWO, level.HAVO),
		newSchool("D", "Delta", level.Praktijkonderwijs),
	}
}

func TestApply_EmptyQueryKeepsProviderOrder(t *testing.T) {
	q := query.New(query.Params{}, query.DefaultLimits())
	got := Apply(scenario(), q, level.ExcludeBelowMin)
	if want := []string{"A", "B", "C", "D"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("got %v, want %v", ids(got), want)
	}
}

func TestApply_TruncatesToTake(t *testing.T) {
	q := query.New(query.Params{Take: ptr(2)}, query.DefaultLimits())
	got := Apply(scenario(), q, level.ExcludeBelowMin)
	if want := []string{"A", "B"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("got %v, want %v", ids(got), want)
	}
}

func TestApply_LevelScenario(t *testing.T) {
	tests := []struct {
		levels []string
		want   []string
	}{
		{[]string{"HAVO"}, []string{"C"}},
		{[]string{"HAVO", "VMBO"}, []string{"B"}},
		{[]string{"VWO"}, []string{"A"}},
		{[]string{"praktijk"}, []string{"D"}},
		{[]string{"nonsense"}, []string{"A", "B", "C", "D"}},
	}
	for _, tt := range tests {
		q := query.New(query.Params{Levels: tt.levels}, query.DefaultLimits())
		got := ids(Apply(scenario(), q, level.ExcludeBelowMin))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("levels %v: got %v, want %v", tt.levels, got, tt.want)
		}
	}
}

func TestApply_LevelPolicy(t *testing.T) {
	schools := []school.School{newSchool("S", "Scala", level.VMBO, level.HAVO, level.VWO)}
	q := query.New(query.Params{Levels: []string{"VMBO", "VWO"}}, query.DefaultLimits())

	if got := Apply(schools, q, level.ExcludeBelowMin); len(got) != 1 {
		t.Error("min policy must include the school")
	}
	if got := Apply(schools, q, level.ExcludeBelowMax); len(got) != 0 {
		t.Error("max policy must exclude the school")
	}
}

func TestApply_Text(t *testing.T) {
	schools := []school.School{
		school.Reconstruct(school.Fields{ID: "1", Name: "Barlaeus Gymnasium", BRIN: "20AA"}),
		school.Reconstruct(school.Fields{ID: "2", Name: "Cygnus Gymnasium"}),
		school.Reconstruct(school.Fields{ID: "3", Name: "Het Amsterdams Lyceum", BRIN: "19XZ"}),
	}
	tests := []struct {
		q    string
		want []string
	}{
		{"gymnasium", []string{"1", "2"}},
		{"LYCEUM", []string{"3"}},
		{"20aa", []string{"1"}},
		{"nowhere", []string{}},
	}
	for _, tt := range tests {
		q := query.New(query.Params{Q: tt.q}, query.DefaultLimits())
		if got := ids(Apply(schools, q, level.ExcludeBelowMin)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("q=%q: got %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestApply_Concept(t *testing.T) {
	schools := []school.School{
		school.Reconstruct(school.Fields{ID: "1", Name: "a", Concepts: []string{"Montessori", "Tweetalig"}}),
		school.Reconstruct(school.Fields{ID: "2", Name: "b", Concepts: []string{"Dalton"}}),
		school.Reconstruct(school.Fields{ID: "3", Name: "c"}),
	}
	q := query.New(query.Params{Concept: "montes"}, query.DefaultLimits())
	if got := ids(Apply(schools, q, level.ExcludeBelowMin)); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("got %v", got)
	}
}

func TestApply_PostalPrefix(t *testing.T) {
	schools := []school.School{
		school.Reconstruct(school.Fields{ID: "1", Name: "a", PostalCode: "1071 AB"}),
		school.Reconstruct(school.Fields{ID: "2", Name: "b", PostalCode: "1012XY"}),
		school.Reconstruct(school.Fields{ID: "3", Name: "c"}),
	}
	q := query.New(query.Params{PostalCode: "107 1a"}, query.DefaultLimits())
	if got := ids(Apply(schools, q, level.ExcludeBelowMin)); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("got %v", got)
	}
}

func TestApply_Distance(t *testing.T) {
	origin := geo.Coordinate{Lat: 52.3600, Lon: 4.8852}
	near := geo.Coordinate{Lat: 52.3700, Lon: 4.8852} // ~1.1 km north
	far := geo.Coordinate{Lat: 52.4500, Lon: 4.8852}  // ~10 km north

	schools := []school.School{
		school.Reconstruct(school.Fields{ID: "near", Name: "n", Coordinate: &near}),
		school.Reconstruct(school.Fields{ID: "far", Name: "f", Coordinate: &far}),
		school.Reconstruct(school.Fields{ID: "nowhere", Name: "x"}),
	}

	q := query.New(query.Params{Lat: ptr(origin.Lat), Lon: ptr(origin.Lon), RadiusKm: ptr(2)}, query.DefaultLimits())
	if got := ids(Apply(schools, q, level.ExcludeBelowMin)); !reflect.DeepEqual(got, []string{"near"}) {
		t.Errorf("radius: got %v", got)
	}

	// An hour by bike covers 15 km.
	q = query.New(query.Params{Lat: ptr(origin.Lat), Lon: ptr(origin.Lon), MaxMinutes: ptr(60)}, query.DefaultLimits())
	if got := ids(Apply(schools, q, level.ExcludeBelowMin)); !reflect.DeepEqual(got, []string{"near", "far"}) {
		t.Errorf("budget: got %v", got)
	}
}

func TestApply_MalformedPostalPrefixIsDropped(t *testing.T) {
	schools := []school.School{school.Reconstruct(school.Fields{ID: "1", Name: "a", PostalCode: "1012 AB"})}
	for _, pc := range []string{"??", "AB12", "10|2", "!!!", "10[", "1012ABC", "10122"} {
		q := query.New(query.Params{PostalCode: pc}, query.DefaultLimits())
		if got := Apply(schools, q, level.ExcludeBelowMin); len(got) != 1 {
			t.Errorf("postalCode %q: got %d schools, want 1", pc, len(got))
		}
	}
}

func TestApply_DistanceBoundaryInclusive(t *testing.T) {
	c := geo.Coordinate{Lat: 52.37, Lon: 4.89}
	schools := []school.School{school.Reconstruct(school.Fields{ID: "same", Name: "s", Coordinate: &c})}
	q := query.New(query.Params{Lat: ptr(c.Lat), Lon: ptr(c.Lon), RadiusKm: ptr(0)}, query.DefaultLimits())
	if got := Apply(schools, q, level.ExcludeBelowMin); len(got) != 1 {
		t.Error("distance equal to the radius must be included")
	}
}

func TestApply_DistanceIgnoredWithoutOrigin(t *testing.T) {
	q := query.New(query.Params{RadiusKm: ptr(1)}, query.DefaultLimits())
	if got := Apply(scenario(), q, level.ExcludeBelowMin); len(got) != 4 {
		t.Errorf("radius without origin must be a no-op, got %d", len(got))
	}
}

func TestApply_MalformedValuesNeverFail(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(-1)
	params := []query.Params{
		{Lat: &nan, Lon: &inf, RadiusKm: &nan, Take: &inf},
		{Levels: []string{"", " ", "---", "VMBO__T"}, MaxMinutes: ptr(-10)},
		{Lat: ptr(1000), Lon: ptr(-1000), RadiusKm: ptr(5)},
		{PostalCode: "   ", Q: "\x00", Concept: "💡"},
		{PostalCode: "10|2"},
		{PostalCode: "AB12"},
		{Take: ptr(-1e300)},
	}
	for i, p := range params {
		q := query.New(p, query.DefaultLimits())
		_ = Apply(scenario(), q, level.ExcludeBelowMin)
		_ = Apply(nil, q, level.ExcludeBelowMax)
		if p.PostalCode != "" && q.PostalPrefix() != "" {
			t.Errorf("params[%d]: malformed postal code %q kept as %q", i, p.PostalCode, q.PostalPrefix())
		}
		if q.Take() < 1 || q.Take() > query.MaxTake {
			t.Errorf("params[%d]: take %d out of bounds", i, q.Take())
		}
	}
}
