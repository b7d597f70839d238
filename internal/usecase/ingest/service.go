// Package ingest loads school records into the search store and refreshes
// their generated admissions guidance.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/admissions"
	domschool "github.com/kailas-cloud/schoolkeuze/internal/domain/school"
)

const (
	// DefaultSource is the provenance replaced by a seed.
	DefaultSource = "sample"
	// DefaultChunkSize is the number of records per write.
	DefaultChunkSize = 200
	// DefaultConcurrency bounds parallel writes.
	DefaultConcurrency = 4
)

// Report summarizes one seed run.
type Report struct {
	Loaded  int `json:"loaded"`
	Unique  int `json:"unique"`
	Deleted int `json:"deleted"`
	Written int `json:"written"`
}

// Config tunes a seed.
type Config struct {
	Source      string
	ChunkSize   int
	Concurrency int
}

// Service runs imports.
type Service struct {
	src    Source
	target Target
	cfg    Config
	logger *zap.Logger
}

// New creates an ingest service. Zero config fields take their defaults.
func New(src Source, target Target, cfg Config, logger *zap.Logger) *Service {
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{src: src, target: target, cfg: cfg, logger: logger}
}

// Seed replaces every stored record of the configured source with the
// deduplicated contents of the source, each carrying fresh admissions guidance.
func (s *Service) Seed(ctx context.Context) (Report, error) {
	loaded, err := s.src.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load %s: %w", s.src.Name(), err)
	}
	schools := Dedupe(loaded)
	for i := range schools {
		schools[i] = schools[i].WithAdmissionsInfo(
			admissions.Build(schools[i].Name(), schools[i].WebsiteURL(), schools[i].Levels()),
		)
	}
	rep := Report{Loaded: len(loaded), Unique: len(schools)}

	if err := s.target.EnsureIndex(ctx); err != nil {
		return rep, fmt.Errorf("ensure index: %w", err)
	}
	rep.Deleted, err = s.target.DeleteBySource(ctx, s.cfg.Source)
	if err != nil {
		return rep, fmt.Errorf("delete source %s: %w", s.cfg.Source, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for start := 0; start < len(schools); start += s.cfg.ChunkSize {
		chunk := schools[start:min(start+s.cfg.ChunkSize, len(schools))]
		g.Go(func() error {
			if err := s.target.UpsertMany(gctx, chunk); err != nil {
				return fmt.Errorf("write records %d-%d: %w", start, start+len(chunk)-1, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}
	rep.Written = len(schools)

	s.logger.Info("seed complete",
		zap.String("source", s.src.Name()),
		zap.Int("loaded", rep.Loaded),
		zap.Int("unique", rep.Unique),
		zap.Int("deleted", rep.Deleted),
		zap.Int("written", rep.Written),
	)
	return rep, nil
}

// Enrich regenerates the admissions guidance of every record held by w.
func (s *Service) Enrich(w AdmissionsRewriter) (int, error) {
	n, err := w.RewriteAdmissions(admissions.Build)
	if err != nil {
		return 0, fmt.Errorf("rewrite admissions: %w", err)
	}
	s.logger.Info("admissions refreshed", zap.Int("schools", n))
	return n, nil
}

// Dedupe collapses records sharing a source key. The last record wins and
// takes the position of the first.
func Dedupe(schools []domschool.School) []domschool.School {
	pos := make(map[string]int, len(schools))
	out := make([]domschool.School, 0, len(schools))
	for i := range schools {
		key := schools[i].SourceKey()
		if j, ok := pos[key]; ok {
			out[j] = schools[i]
			continue
		}
		pos[key] = len(out)
		out = append(out, schools[i])
	}
	return out
}
