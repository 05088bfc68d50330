package monitor

import (
	"fmt"
	"net/http"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/fogbound/fogmap/internal/footprint"
	"github.com/fogbound/fogmap/internal/geo"
)

// handleFootprintPNG renders the explored region's component outlines to a
// PNG in geographic coordinates. One closed line per exterior ring.
func (ws *WebServer) handleFootprintPNG(w http.ResponseWriter, r *http.Request) {
	components, err := footprint.RegionComponents(ws.manager.Region())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read region: %v", err), http.StatusInternalServerError)
		return
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Explored Footprint (%d components)", len(components))
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	for i, poly := range components {
		if len(poly) == 0 {
			continue
		}
		ring := poly[0]
		pts := make(plotter.XYs, 0, len(ring))
		for _, pt := range ring {
			lon, lat := geo.ToGeographic(pt[0], pt[1])
			pts = append(pts, plotter.XY{X: lon, Y: lat})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to plot component %d: %v", i, err), http.StatusInternalServerError)
			return
		}
		line.Width = vg.Points(1)
		p.Add(line)
	}

	writer, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to render image: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := writer.WriteTo(w); err != nil {
		ws.logger.Printf("[Monitor] failed to write footprint image: %v", err)
	}
}
