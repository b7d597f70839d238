package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/kailas-cloud/schoolkeuze/internal/domain"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/admissions"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/school"
)

const fixture = "testdata/schools.json"

func ids(schools []school.School) []string {
	out := make([]string, len(schools))
	for i := range schools {
		out[i] = schools[i].ID()
	}
	return out
}

func TestLoad_MapsRecords(t *testing.T) {
	schools, err := Load(fixture, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"sample_20ab_0", "sample_het_amsterdams_lyceum_1", "sample_praktijkschool_de_baanbreker_2"}
	if !reflect.DeepEqual(ids(schools), want) {
		t.Fatalf("ids = %v", ids(schools))
	}

	barlaeus := schools[0]
	if barlaeus.City() != DefaultCity || barlaeus.Source() != DefaultSource {
		t.Errorf("defaults not applied: city=%q source=%q", barlaeus.City(), barlaeus.Source())
	}
	if _, ok := barlaeus.Coordinate(); !ok {
		t.Error("expected a coordinate")
	}
	if !reflect.DeepEqual(barlaeus.Levels(), []level.Level{level.VWO}) {
		t.Errorf("levels = %v", barlaeus.Levels())
	}
	if track, rate, ok := barlaeus.Exams().PreferredPassRate(); !ok || track != "VWO" || rate != 96.2 {
		t.Errorf("pass rate = %s %v %v", track, rate, ok)
	}
	if n, ok := barlaeus.Size(); !ok || n != 780 {
		t.Errorf("size = %d %v", n, ok)
	}

	lyceum := schools[1]
	if _, ok := lyceum.Coordinate(); ok {
		t.Error("an out-of-range longitude must drop the coordinate")
	}
	if lyceum.City() != "Amsterdam-Zuid" {
		t.Errorf("city = %q", lyceum.City())
	}
	if !reflect.DeepEqual(lyceum.Levels(), []level.Level{level.HAVO, level.VWO}) {
		t.Errorf("unknown levels must be dropped, got %v", lyceum.Levels())
	}
	if !strings.Contains(string(lyceum.Results()), `"slagingspercentage":93`) {
		t.Errorf("existing results must be kept, got %s", lyceum.Results())
	}

	praktijk := schools[2]
	if praktijk.Source() != "duo" {
		t.Errorf("source = %q", praktijk.Source())
	}
	if !reflect.DeepEqual(praktijk.Levels(), []level.Level{level.Praktijkonderwijs}) {
		t.Errorf("levels = %v", praktijk.Levels())
	}
}

func TestLoad_CustomCity(t *testing.T) {
	schools, err := Load(fixture, "Diemen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schools[0].City() != "Diemen" {
		t.Errorf("city = %q", schools[0].City())
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode(strings.NewReader(`{"not":"an array"}`), ""); err == nil {
		t.Error("expected an error for a non-array document")
	}
	if _, err := Decode(strings.NewReader(`[{"brin":"X"}]`), ""); err == nil {
		t.Error("expected an error for a record without a name")
	}
}

func TestCache_GetAndGetMany(t *testing.T) {
	c := NewCache(fixture, "")
	ctx := context.Background()

	s, err := c.Get(ctx, "sample_20ab_0")
	if err != nil || s.Name() != "Barlaeus Gymnasium" {
		t.Fatalf("Get = %v, %v", s.Name(), err)
	}
	if _, err := c.Get(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	many, err := c.GetMany(ctx, []string{"sample_praktijkschool_de_baanbreker_2", "nope", "sample_20ab_0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"sample_praktijkschool_de_baanbreker_2", "sample_20ab_0"}; !reflect.DeepEqual(ids(many), want) {
		t.Errorf("GetMany = %v", ids(many))
	}
}

func TestCache_LoadsOnceAndResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schools.json")
	write := func(body string) {
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write(`[{"name":"Een"}]`)

	c := NewCache(path, "")
	ctx := context.Background()
	first, err := c.List(ctx)
	if err != nil || len(first) != 1 {
		t.Fatalf("List = %d, %v", len(first), err)
	}

	write(`[{"name":"Een"},{"name":"Twee"}]`)
	cached, _ := c.List(ctx)
	if len(cached) != 1 {
		t.Errorf("expected the cached view, got %d schools", len(cached))
	}

	c.Reset()
	reloaded, _ := c.List(ctx)
	if len(reloaded) != 2 {
		t.Errorf("expected a reload after Reset, got %d schools", len(reloaded))
	}
}

func TestCache_FailedLoadIsRetried(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schools.json")
	c := NewCache(path, "")
	if _, err := c.List(context.Background()); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if err := os.WriteFile(path, []byte(`[{"name":"Een"}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	if got, err := c.List(context.Background()); err != nil || len(got) != 1 {
		t.Errorf("List after fix = %d, %v", len(got), err)
	}
}

func TestCache_ConcurrentReaders(t *testing.T) {
	c := NewCache(fixture, "")
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, err := c.List(context.Background()); err != nil || len(got) != 3 {
				t.Errorf("List = %d, %v", len(got), err)
			}
		}()
	}
	wg.Wait()
}

func TestCache_RewriteAdmissionsResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schools.json")
	if err := os.WriteFile(path, []byte(`[{"name":"Een","levels":["HAVO"]}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	c := NewCache(path, "")
	before, _ := c.List(context.Background())
	if before[0].AdmissionsInfo() != nil {
		t.Fatal("fixture must start without admissions info")
	}

	n, err := c.RewriteAdmissions(admissions.Build)
	if err != nil || n != 1 {
		t.Fatalf("RewriteAdmissions = %d, %v", n, err)
	}
	after, _ := c.List(context.Background())
	if after[0].AdmissionsInfo() == nil {
		t.Error("expected the cache to reload the rewritten file")
	}
}
