// Package units provides shared constants and validation for area units
package units

// Unit constants
const (
	M2      = "m2"
	KM2     = "km2"
	Hectare = "ha"
	MI2     = "mi2"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{M2, KM2, Hectare, MI2}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m2, km2, ha, mi2"
}

// ConvertArea converts an area from square meters to the target units.
// The engine stores areas in m² (square meters).
func ConvertArea(areaM2 float64, targetUnits string) float64 {
	switch targetUnits {
	case KM2:
		return areaM2 / 1e6
	case Hectare:
		return areaM2 / 1e4
	case MI2:
		return areaM2 / 2.59e6 // m² to square miles
	case M2:
		return areaM2 // no conversion needed
	default:
		return areaM2 // default to m² if unknown unit
	}
}
