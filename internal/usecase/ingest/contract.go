package ingest

import (
	"context"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/admissions"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	domschool "github.com/kailas-cloud/schoolkeuze/internal/domain/school"
)

// Source yields the records to import.
type Source interface {
	Name() string
	List(ctx context.Context) ([]domschool.School, error)
}

// Target is the store a seed writes to.
type Target interface {
	EnsureIndex(ctx context.Context) error
	DeleteBySource(ctx context.Context, source string) (int, error)
	UpsertMany(ctx context.Context, schools []domschool.School) error
}

// AdmissionsRewriter regenerates the admissions guidance stored with each record.
type AdmissionsRewriter interface {
	RewriteAdmissions(build func(name, websiteURL string, levels []level.Level) admissions.Info) (int, error)
}
