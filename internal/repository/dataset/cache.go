// Package dataset serves schools from a flat JSON file.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/kailas-cloud/schoolkeuze/internal/domain"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/admissions"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/school"
)

// ProviderName identifies this provider in errors and metrics.
const ProviderName = "dataset"

// DefaultCity is assigned to records without a city.
const DefaultCity = "Amsterdam"

// Decode reads a dataset array and maps every record to a School.
func Decode(r io.Reader, defaultCity string) ([]school.School, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if defaultCity == "" {
		defaultCity = DefaultCity
	}
	out := make([]school.School, len(records))
	for i := range records {
		s, err := records[i].toSchool(i, defaultCity)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// Load reads and decodes the dataset file at path.
func Load(path, defaultCity string) ([]school.School, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f, defaultCity)
}

// Cache is a process-scoped, lazily loaded view of the dataset file.
// A failed load is not cached; the next call retries.
type Cache struct {
	path        string
	defaultCity string

	mu      sync.RWMutex
	loaded  bool
	schools []school.School
	byID    map[string]int
}

// NewCache creates a cache over the dataset file at path.
func NewCache(path, defaultCity string) *Cache {
	return &Cache{path: path, defaultCity: defaultCity}
}

// Name returns the provider name.
func (c *Cache) Name() string { return ProviderName }

// Count returns the number of schools in the dataset.
func (c *Cache) Count(_ context.Context) (int, error) {
	schools, _, err := c.snapshot()
	if err != nil {
		return 0, err
	}
	return len(schools), nil
}

// List returns every school in file order.
func (c *Cache) List(_ context.Context) ([]school.School, error) {
	schools, _, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return slices.Clone(schools), nil
}

// Get returns a school by id.
func (c *Cache) Get(_ context.Context, id string) (school.School, error) {
	schools, byID, err := c.snapshot()
	if err != nil {
		return school.School{}, err
	}
	i, ok := byID[id]
	if !ok {
		return school.School{}, domain.ErrNotFound
	}
	return schools[i], nil
}

// GetMany returns the schools with the given ids in input order; unknown ids are skipped.
func (c *Cache) GetMany(_ context.Context, ids []string) ([]school.School, error) {
	schools, byID, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]school.School, 0, len(ids))
	for _, id := range ids {
		if i, ok := byID[id]; ok {
			out = append(out, schools[i])
		}
	}
	return out, nil
}

// Reset drops the cached data; the next read reloads the file.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.schools = nil
	c.byID = nil
}

func (c *Cache) snapshot() ([]school.School, map[string]int, error) {
	c.mu.RLock()
	if c.loaded {
		defer c.mu.RUnlock()
		return c.schools, c.byID, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.schools, c.byID, nil
	}

	schools, err := Load(c.path, c.defaultCity)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]int, len(schools))
	for i := range schools {
		byID[schools[i].ID()] = i
	}
	c.schools, c.byID, c.loaded = schools, byID, true
	return schools, byID, nil
}

// RewriteAdmissions regenerates the admissionsInfo of every record in the
// backing file and drops the cached view.
func (c *Cache) RewriteAdmissions(
	build func(name, websiteURL string, levels []level.Level) admissions.Info,
) (int, error) {
	defer c.Reset()
	return RewriteAdmissions(c.path, build)
}
