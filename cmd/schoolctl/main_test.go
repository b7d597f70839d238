package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/schoolkeuze/internal/config"
)

func useConfig(t *testing.T) {
	t.Helper()
	c := config.Config{HTTP: config.HTTPConfig{Port: 8080}}
	c.ApplyDefaults()
	cfg = c
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func TestCommands_Registered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"seed", "enrich-admissions", "search", "geocode"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("command %q not registered (have %v)", want, names)
		}
	}
}

func TestSearchCmd_JSON(t *testing.T) {
	useConfig(t)
	searchOpts.dataset = filepath.Join("testdata", "schools.json")
	searchOpts.levels = []string{"havo"}
	searchOpts.asJSON = true
	t.Cleanup(func() { searchOpts.levels, searchOpts.asJSON = nil, false })

	out, err := run(t, searchCmd)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var resp struct {
		Items    []hitJSON `json:"items"`
		Warnings []string  `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Name != "Pieter Nieuwland College" {
		t.Errorf("items = %+v", resp.Items)
	}
	if resp.Items[0].PassRate != "—" {
		t.Errorf("pass rate = %q", resp.Items[0].PassRate)
	}
}

func TestSearchCmd_Table(t *testing.T) {
	useConfig(t)
	searchOpts.dataset = filepath.Join("testdata", "schools.json")
	searchOpts.favorites = []string{"sample_praktijkschool_de_atlant_2"}
	t.Cleanup(func() { searchOpts.favorites = nil })

	out, err := run(t, searchCmd)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("want header, 3 rows and a count, got %q", out)
	}
	if !strings.HasPrefix(lines[1], "sample_praktijkschool_de_atlant_2") {
		t.Errorf("favorite must be listed first: %q", lines[1])
	}
	if !strings.Contains(lines[2], "96.2%") {
		t.Errorf("second row = %q", lines[2])
	}
	if lines[4] != "3 schools" {
		t.Errorf("footer = %q", lines[4])
	}
}

func TestEnrichCmd(t *testing.T) {
	useConfig(t)
	src, err := os.ReadFile(filepath.Join("testdata", "schools.json"))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "schools.json")
	if err := os.WriteFile(path, src, 0o600); err != nil {
		t.Fatal(err)
	}
	enrichPath = path
	t.Cleanup(func() { enrichPath = "" })

	out, err := run(t, enrichCmd)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if !strings.Contains(out, "Updated admissionsInfo for 3 schools") {
		t.Errorf("output = %q", out)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatal(err)
	}
	for i, r := range records {
		if _, ok := r["admissionsInfo"]; !ok {
			t.Errorf("record %d has no admissionsInfo", i)
		}
	}
}

func TestGeocodeCmd(t *testing.T) {
	useConfig(t)
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`[{"lat":"52.3600","lon":"4.8800"}]`))
	}))
	defer srv.Close()
	cfg.Geocoder.BaseURL = srv.URL

	out, err := run(t, geocodeCmd, "1071 ab")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if gotQuery != "1071AB Amsterdam Netherlands" {
		t.Errorf("q = %q", gotQuery)
	}
	if out != "1071AB\t52.360000\t4.880000\n" {
		t.Errorf("output = %q", out)
	}
}

func TestGeocodeCmd_Invalid(t *testing.T) {
	useConfig(t)
	if _, err := run(t, geocodeCmd, "nope"); err == nil {
		t.Fatal("expected an error for an invalid postal code")
	}
}

func TestSearchParams_UnsetFlagsAbsent(t *testing.T) {
	p := searchParams(searchCmd.Flags())
	if p.Lat != nil || p.Lon != nil || p.RadiusKm != nil || p.Take != nil {
		t.Errorf("unset flags must be absent: %+v", p)
	}
	if !reflect.DeepEqual(p.Levels, searchOpts.levels) {
		t.Errorf("levels = %v", p.Levels)
	}
}
