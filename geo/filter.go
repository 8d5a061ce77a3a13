package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/geodata-ops/firepipe/pipeline"
	"github.com/geodata-ops/firepipe/schema"
)

const logPrefix = "geo"

// Filter - keep only the fire points contained in at least one boundary
// polygon. A point on a polygon edge counts as contained, so detections on a
// shared border are not lost; every kept record appears exactly once and is
// attributed to the first boundary that contains it, in input order.
func Filter(set *schema.FeatureSet, boundaries []schema.Boundary) (*schema.FeatureSet, error) {
	log.WithFields(log.Fields{
		"prefix":     logPrefix,
		"points":     set.Len(),
		"boundaries": len(boundaries),
	}).Info("filtering fire data")

	for _, boundary := range boundaries {
		if err := validate(boundary); nil != err {
			return nil, err
		}
	}

	kept := []schema.FirePoint{}
	for _, point := range set.Points {
		for _, boundary := range boundaries {
			if !contains(boundary.Geometry, point.Point) {
				continue
			}
			point.Country = boundary.Country
			kept = append(kept, point)
			break
		}
	}

	log.WithFields(log.Fields{
		"prefix": logPrefix,
		"count":  len(kept),
	}).Info("filtered fire records")

	return &schema.FeatureSet{
		Columns: set.Columns,
		Points:  kept,
	}, nil
}

func contains(geometry orb.Geometry, point orb.Point) bool {
	switch g := geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, point)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, point)
	}
	return false
}

func validate(boundary schema.Boundary) error {
	var polygons orb.MultiPolygon

	switch g := boundary.Geometry.(type) {
	case orb.Polygon:
		polygons = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		polygons = g
	default:
		return &pipeline.GeometryError{
			Subject: boundary.Country,
			Err:     errors.New("boundary geometry is not a polygon"),
		}
	}

	if len(polygons) == 0 {
		return &pipeline.GeometryError{
			Subject: boundary.Country,
			Err:     errors.New("empty boundary geometry"),
		}
	}

	for _, polygon := range polygons {
		if len(polygon) == 0 {
			return &pipeline.GeometryError{
				Subject: boundary.Country,
				Err:     errors.New("polygon without rings"),
			}
		}
		for _, ring := range polygon {
			// a closed ring needs at least 4 coordinates
			if len(ring) < 4 {
				return &pipeline.GeometryError{
					Subject: boundary.Country,
					Err:     errors.Errorf("ring with %d coordinates", len(ring)),
				}
			}
			if !ring.Closed() {
				return &pipeline.GeometryError{
					Subject: boundary.Country,
					Err:     errors.New("unclosed ring"),
				}
			}
		}
	}

	return nil
}
