// Package footprint maintains the explored-area region: the union of
// buffered shapes covering all ground the user has physically crossed.
package footprint

import "github.com/fogbound/fogmap/internal/geo"

// Fix is a single position report from the platform location stack. The
// engine never retains more than the most recent one.
type Fix struct {
	Longitude          float64 `json:"longitude"`
	Latitude           float64 `json:"latitude"`
	TSUnixMillis       int64   `json:"ts_unix_millis"`
	BufferRadiusMeters float64 `json:"buffer_radius_m"`
}

// TunnelSegment records a classified teleport gap between two projected
// points, e.g. underground transit. Kept for visualization only; it never
// joins the region.
type TunnelSegment struct {
	From           geo.Point
	To             geo.Point
	FromUnixMillis int64
	ToUnixMillis   int64
}

// cursor is the engine's only "last seen" state. It moves together with the
// region on every accepted fix and is cleared by reset and snapshot load.
type cursor struct {
	point      geo.Point
	unixMillis int64
	valid      bool
}
