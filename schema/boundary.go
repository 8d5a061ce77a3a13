package schema

import "github.com/paulmach/orb"

// Boundary - a country boundary polygon in WGS84
type Boundary struct {
	Country string

	// Geometry is an orb.Polygon or orb.MultiPolygon.
	Geometry orb.Geometry
}
