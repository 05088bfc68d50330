package monitor

import (
	"encoding/json"
	"net/http"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GrowthStats summarizes how the explored area has been growing: the
// per-sample area deltas, aggregated.
type GrowthStats struct {
	SampleCount     int     `json:"sample_count"`
	CurrentAreaM2   float64 `json:"current_area_m2"`
	MeanGrowthM2    float64 `json:"mean_growth_m2"`
	MedianGrowthM2  float64 `json:"median_growth_m2"`
	StdDevGrowthM2  float64 `json:"stddev_growth_m2"`
	MaxGrowthM2     float64 `json:"max_growth_m2"`
	P90GrowthM2     float64 `json:"p90_growth_m2"`
	FirstUnixMillis int64   `json:"first_unix_millis"`
	LastUnixMillis  int64   `json:"last_unix_millis"`
}

// handleGrowthStats serves aggregate growth figures as JSON.
func (ws *WebServer) handleGrowthStats(w http.ResponseWriter, r *http.Request) {
	history := ws.manager.AreaHistory()

	out := GrowthStats{
		SampleCount:   len(history),
		CurrentAreaM2: ws.manager.ExploredAreaSquareMeters(),
	}
	if len(history) > 0 {
		out.FirstUnixMillis = history[0].UnixMillis
		out.LastUnixMillis = history[len(history)-1].UnixMillis
	}

	if len(history) >= 2 {
		deltas := make([]float64, 0, len(history)-1)
		for i := 1; i < len(history); i++ {
			deltas = append(deltas, history[i].AreaSquareMeters-history[i-1].AreaSquareMeters)
		}

		out.MeanGrowthM2 = stat.Mean(deltas, nil)
		out.StdDevGrowthM2 = stat.StdDev(deltas, nil)

		sorted := append([]float64(nil), deltas...)
		sort.Float64s(sorted)
		out.MedianGrowthM2 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		out.P90GrowthM2 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
		out.MaxGrowthM2 = sorted[len(sorted)-1]
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		ws.logger.Printf("[Monitor] failed to encode growth stats: %v", err)
	}
}
