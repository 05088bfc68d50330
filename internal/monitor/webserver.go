// Package monitor provides debugging visualizations of the explored region:
// an area-over-time chart, a rendered footprint image, and growth statistics.
// These endpoints carry no auth and are meant for operators, not clients.
package monitor

import (
	"log"
	"net/http"

	"github.com/fogbound/fogmap/internal/footprint"
)

// WebServer handles the HTTP interface for monitoring footprint growth.
type WebServer struct {
	manager *footprint.Manager
	logger  *log.Logger
}

// WebServerConfig contains configuration options for the monitor server.
type WebServerConfig struct {
	Manager *footprint.Manager
	Logger  *log.Logger
}

// NewWebServer creates a monitor server around the footprint engine.
func NewWebServer(config WebServerConfig) *WebServer {
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &WebServer{manager: config.Manager, logger: logger}
}

// AttachRoutes mounts the monitor endpoints on mux under /monitor/.
func (ws *WebServer) AttachRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/monitor/area-chart", ws.handleAreaChart)
	mux.HandleFunc("/monitor/footprint.png", ws.handleFootprintPNG)
	mux.HandleFunc("/monitor/growth", ws.handleGrowthStats)
}
