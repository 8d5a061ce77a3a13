package schema

import "github.com/paulmach/orb"

// FirePoint - a single active-fire detection from the FIRMS feed
type FirePoint struct {
	Latitude  float64
	Longitude float64

	// Point is always derived from this record's own lat/lon pair,
	// in lon/lat order (WGS84 / EPSG:4326).
	Point orb.Point

	// Country is set by the containment filter; empty until then.
	Country string

	// Attributes carries every source column unmodified, keyed by header name.
	Attributes map[string]string
}

// FeatureSet - an in-memory fire dataset together with the source column order
type FeatureSet struct {
	Columns []string
	Points  []FirePoint
}

// Len - number of fire records in the set
func (s *FeatureSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}
