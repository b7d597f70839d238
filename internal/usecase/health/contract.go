package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Catalog is the school source the API serves from.
type Catalog interface {
	Count(ctx context.Context) (int, error)
}
