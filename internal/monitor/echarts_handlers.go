package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// maxChartPoints bounds the chart payload; longer histories are strided
// down, the same reduction the engine applies to replay.
const maxChartPoints = 2000

// handleAreaChart renders an HTML line chart (go-echarts) of explored area
// over time. Debugging-only endpoint to watch the region grow without a
// frontend.
func (ws *WebServer) handleAreaChart(w http.ResponseWriter, r *http.Request) {
	history := ws.manager.AreaHistory()

	stride := 1
	if len(history) > maxChartPoints {
		stride = len(history) / maxChartPoints
	}

	labels := make([]string, 0, len(history)/stride+1)
	data := make([]opts.LineData, 0, len(history)/stride+1)
	for i := 0; i < len(history); i += stride {
		sample := history[i]
		labels = append(labels, time.UnixMilli(sample.UnixMillis).UTC().Format(time.RFC3339))
		data = append(data, opts.LineData{Value: sample.AreaSquareMeters})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Explored Area", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Explored Area Over Time", Subtitle: fmt.Sprintf("samples=%d stride=%d", len(data), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Area (m²)", NameLocation: "middle", NameGap: 60}),
	)
	line.SetXAxis(labels).
		AddSeries("area", data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		http.Error(w, fmt.Sprintf("failed to render chart: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
