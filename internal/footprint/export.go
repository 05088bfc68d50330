package footprint

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-geos"

	"github.com/fogbound/fogmap/internal/geo"
)

// worldRing returns the outer boundary of the fog polygon: the full
// geographic extent wound counterclockwise, giving it positive signed area.
func worldRing() orb.Ring {
	return orb.Ring{{-180, -90}, {180, -90}, {180, 90}, {-180, 90}, {-180, -90}}
}

// RegionComponents decodes the region into its simple polygon components in
// planar coordinates. An empty region yields no components.
func RegionComponents(region *geos.Geom) ([]orb.Polygon, error) {
	if region == nil || region.IsEmpty() {
		return nil, nil
	}
	decoded, err := wkb.Unmarshal(region.ToWKB())
	if err != nil {
		return nil, fmt.Errorf("decode region: %w", err)
	}
	switch g := decoded.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}, nil
	case orb.MultiPolygon:
		return g, nil
	default:
		return nil, fmt.Errorf("unexpected region geometry %T", decoded)
	}
}

// FogPolygon converts the region into the renderable fog polygon: one outer
// ring covering the world plus one hole per simple component of the region,
// each hole being the component's exterior ring projected back to
// geographic coordinates. Hole rings are wound clockwise, opposite to the
// outer ring, per the rendering convention. An empty region degenerates to
// just the world ring.
func FogPolygon(region *geos.Geom) (orb.Polygon, error) {
	fog := orb.Polygon{worldRing()}

	components, err := RegionComponents(region)
	if err != nil {
		return nil, err
	}
	for _, comp := range components {
		if len(comp) == 0 {
			continue
		}
		hole := toGeographicRing(comp[0])
		if len(hole) < 4 {
			continue
		}
		if hole.Orientation() == orb.CCW {
			hole.Reverse()
		}
		fog = append(fog, hole)
	}
	return fog, nil
}

// FogGeoJSON renders the fog polygon as a GeoJSON Feature.
func FogGeoJSON(region *geos.Geom) ([]byte, error) {
	poly, err := FogPolygon(region)
	if err != nil {
		return nil, err
	}
	f := geojson.NewFeature(poly)
	f.Properties["kind"] = "fog"
	return f.MarshalJSON()
}

// toGeographicRing projects a planar ring back to geographic degrees and
// closes it (first point equals last).
func toGeographicRing(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	for _, pt := range r {
		lon, lat := geo.ToGeographic(pt[0], pt[1])
		out = append(out, orb.Point{lon, lat})
	}
	if len(out) > 0 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}
