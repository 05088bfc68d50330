package footprint

// Reference areas for coverage percentages.
const (
	// EarthSurfaceAreaSquareMeters is the total surface area of Earth.
	EarthSurfaceAreaSquareMeters = 5.10072e14
	// EarthLandAreaSquareMeters is the total land area of Earth.
	EarthLandAreaSquareMeters = 1.4894e14
)

// ExploredAreaSquareMeters returns the planar Web-Mercator area of the
// region in square meters. This is a documented approximation: Mercator
// inflates area away from the equator, so no geodesic correction is applied.
func (m *Manager) ExploredAreaSquareMeters() float64 {
	region := m.Region()
	if region == nil {
		return 0
	}
	return region.Area()
}

// PercentOfEarthSurface returns the explored share of Earth's total surface.
func (m *Manager) PercentOfEarthSurface() float64 {
	return m.ExploredAreaSquareMeters() / EarthSurfaceAreaSquareMeters * 100
}

// PercentOfLand returns the explored share of Earth's land area.
func (m *Manager) PercentOfLand() float64 {
	return m.ExploredAreaSquareMeters() / EarthLandAreaSquareMeters * 100
}
