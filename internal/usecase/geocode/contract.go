package geocode

import (
	"context"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/geo"
)

// Geocoder resolves a normalized postal code into a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, postalCode string) (geo.Coordinate, error)
}
