package chi

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	searchuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/search"
)

// hitsToFeatureCollection renders every hit with a coordinate as a point feature.
// Hits without a location are left out.
func hitsToFeatureCollection(hits []searchuc.Hit) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(hits))}
	for i := range hits {
		s := &hits[i].School
		c, ok := s.Coordinate()
		if !ok {
			continue
		}
		props := map[string]any{
			"name":   s.Name(),
			"levels": level.Strings(s.Levels()),
			"city":   s.City(),
		}
		if s.PostalCode() != "" {
			props["postalCode"] = s.PostalCode()
		}
		if hits[i].DistanceKm != nil {
			props["distanceKm"] = *hits[i].DistanceKm
		}
		if hits[i].BikeMinutes != nil {
			props["bikeMinutes"] = *hits[i].BikeMinutes
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         s.ID(),
			Geometry:   geom.NewPointFlat(geom.XY, []float64{c.Lon, c.Lat}),
			Properties: props,
		})
	}
	return fc
}
