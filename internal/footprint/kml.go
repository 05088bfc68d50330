package footprint

import (
	"io"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"
	kml "github.com/twpayne/go-kml/v2"

	"github.com/fogbound/fogmap/internal/geo"
)

// WriteFogKML writes the fog polygon and any tunnel segments as a KML
// document for inspection in external viewers.
func WriteFogKML(w io.Writer, region *geos.Geom, tunnels []TunnelSegment) error {
	fog, err := FogPolygon(region)
	if err != nil {
		return err
	}

	polyChildren := []kml.Element{
		kml.Tessellate(true),
		kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(ringCoordinates(fog[0])...))),
	}
	for _, hole := range fog[1:] {
		polyChildren = append(polyChildren,
			kml.InnerBoundaryIs(kml.LinearRing(kml.Coordinates(ringCoordinates(hole)...))))
	}

	docChildren := []kml.Element{
		kml.Name("fogmap"),
		kml.Placemark(
			kml.Name("fog"),
			kml.Polygon(polyChildren...),
		),
	}

	for _, t := range tunnels {
		fromLon, fromLat := geo.ToGeographic(t.From.X, t.From.Y)
		toLon, toLat := geo.ToGeographic(t.To.X, t.To.Y)
		docChildren = append(docChildren, kml.Placemark(
			kml.Name("tunnel"),
			kml.LineString(kml.Coordinates(
				kml.Coordinate{Lon: fromLon, Lat: fromLat},
				kml.Coordinate{Lon: toLon, Lat: toLat},
			)),
		))
	}

	return kml.KML(kml.Document(docChildren...)).WriteIndent(w, "", "  ")
}

func ringCoordinates(r orb.Ring) []kml.Coordinate {
	coords := make([]kml.Coordinate, 0, len(r))
	for _, pt := range r {
		coords = append(coords, kml.Coordinate{Lon: pt[0], Lat: pt[1]})
	}
	return coords
}
