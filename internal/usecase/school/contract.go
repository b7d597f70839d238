package school

import (
	"context"

	domschool "github.com/kailas-cloud/schoolkeuze/internal/domain/school"
)

// Repository reads schools by identifier.
type Repository interface {
	Get(ctx context.Context, id string) (domschool.School, error)
	GetMany(ctx context.Context, ids []string) ([]domschool.School, error)
}
