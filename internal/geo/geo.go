// Package geo converts between geographic coordinates and the planar
// Web-Mercator frame used for all footprint geometry math.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusMeters is the WGS84 semi-major axis used by the spherical
// Web-Mercator projection.
const EarthRadiusMeters = 6378137.0

// ErrOutOfRange reports a geographic coordinate outside the projectable
// domain. Fixes carrying such coordinates are rejected without state change.
var ErrOutOfRange = errors.New("geo: coordinate out of range")

// Point is a position in projected Web-Mercator meters.
type Point struct {
	X float64
	Y float64
}

// ToPlanar projects geographic degrees to Web-Mercator meters. Longitude
// must lie in [-180, 180] and latitude strictly inside (-90, 90); the
// projection diverges at the poles.
func ToPlanar(lon, lat float64) (Point, error) {
	if math.IsNaN(lon) || math.IsNaN(lat) || lon < -180 || lon > 180 {
		return Point{}, fmt.Errorf("%w: longitude %v", ErrOutOfRange, lon)
	}
	if lat <= -90 || lat >= 90 {
		return Point{}, fmt.Errorf("%w: latitude %v", ErrOutOfRange, lat)
	}
	latRad := lat * math.Pi / 180
	return Point{
		X: EarthRadiusMeters * lon * math.Pi / 180,
		Y: EarthRadiusMeters * math.Log(math.Tan(math.Pi/4+latRad/2)),
	}, nil
}

// ToGeographic inverts ToPlanar, returning longitude and latitude in
// degrees.
func ToGeographic(x, y float64) (lon, lat float64) {
	lon = x / EarthRadiusMeters * 180 / math.Pi
	lat = (2*math.Atan(math.Exp(y/EarthRadiusMeters)) - math.Pi/2) * 180 / math.Pi
	return lon, lat
}

// Distance returns the straight-line planar distance between two projected
// points.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
