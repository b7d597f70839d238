package school

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/schoolkeuze/internal/domain"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/admissions"
	domschool "github.com/kailas-cloud/schoolkeuze/internal/domain/school"
)

// MaxCompare is the most schools a comparison returns.
const MaxCompare = 25

// Comparison is one compared school with its preferred exam pass rate.
type Comparison struct {
	School   domschool.School
	Track    string
	PassRate *float64
	Display  string
}

// Service serves single-school reads and comparisons.
type Service struct {
	repo Repository
}

// New creates a school service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a school by id with its admissions guidance filled in.
func (s *Service) Get(ctx context.Context, id string) (domschool.School, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domschool.School{}, domain.ErrNotFound
	}
	sc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domschool.School{}, fmt.Errorf("get school %s: %w", id, err)
	}
	return sc.WithAdmissionsInfo(sc.EnsureAdmissionsInfo()), nil
}

// Admissions returns the admissions guidance of a school, generating it when not cached.
func (s *Service) Admissions(ctx context.Context, id string) (admissions.Info, error) {
	sc, err := s.Get(ctx, id)
	if err != nil {
		return admissions.Info{}, err
	}
	return sc.EnsureAdmissionsInfo(), nil
}

// Compare returns the schools named by ids in input order. Unknown ids are skipped.
func (s *Service) Compare(ctx context.Context, ids []string) ([]Comparison, error) {
	ids = CompareIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	schools, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get schools: %w", err)
	}

	byID := make(map[string]domschool.School, len(schools))
	for i := range schools {
		byID[schools[i].ID()] = schools[i]
	}

	out := make([]Comparison, 0, len(ids))
	for _, id := range ids {
		sc, ok := byID[id]
		if !ok {
			continue
		}
		c := Comparison{School: sc}
		track, rate, ok := sc.Exams().PreferredPassRate()
		if ok {
			c.Track, c.PassRate = track, &rate
		}
		c.Display = domschool.FormatPassRate(rate, ok)
		out = append(out, c)
	}
	return out, nil
}

// CompareIDs trims ids, drops blanks and duplicates and keeps the first MaxCompare.
func CompareIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, min(len(ids), MaxCompare))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == MaxCompare {
			break
		}
	}
	return out
}
