package footprint

import "time"

// GapParams holds the distance and elapsed-time thresholds used to classify
// the gap between two consecutive fixes.
type GapParams struct {
	// TeleportMinElapsed is the minimum elapsed time for a gap to count as
	// plausible unobserved transit rather than GPS noise.
	TeleportMinElapsed time.Duration
	// TeleportMinDistanceMeters is the minimum planar distance for a
	// teleport gap.
	TeleportMinDistanceMeters float64
	// MaxConnectDistanceMeters is the longest corridor the accumulator will
	// draw between consecutive fixes. Gaps beyond it start a new isolated
	// blob instead, so noisy fixes cannot smear long spurious corridors.
	MaxConnectDistanceMeters float64
}

// DefaultGapParams returns the tuned production thresholds.
func DefaultGapParams() GapParams {
	return GapParams{
		TeleportMinElapsed:        30 * time.Second,
		TeleportMinDistanceMeters: 100,
		MaxConnectDistanceMeters:  10000,
	}
}

// IsTeleportGap reports whether the gap looks like unobserved transit:
// enough time passed for the user to have moved far without fixes.
func (p GapParams) IsTeleportGap(distanceMeters float64, elapsed time.Duration) bool {
	return elapsed >= p.TeleportMinElapsed && distanceMeters >= p.TeleportMinDistanceMeters
}

// ShouldConnect reports whether the two fixes should be joined by a buffered
// corridor. Teleport gaps and gaps beyond the connect distance are left
// unconnected.
func (p GapParams) ShouldConnect(distanceMeters float64, elapsed time.Duration) bool {
	return distanceMeters <= p.MaxConnectDistanceMeters && !p.IsTeleportGap(distanceMeters, elapsed)
}
