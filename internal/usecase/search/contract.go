package search

import (
	"context"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/school"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/query"
)

// Provider yields the whole school collection in a stable order.
type Provider interface {
	Name() string
	List(ctx context.Context) ([]school.School, error)
}

// CoarseProvider is an optional Provider capability: a store that can evaluate
// the pushable part of a query and return at most limit candidates.
type CoarseProvider interface {
	Provider
	Fetch(ctx context.Context, c query.Coarse, limit int) ([]school.School, error)
}

// Resolver turns a postal code into a coordinate.
type Resolver interface {
	Resolve(ctx context.Context, postalCode string) (geo.Coordinate, error)
}
