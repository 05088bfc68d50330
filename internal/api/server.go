// Package api exposes the explored-region engine over HTTP: fix ingest,
// fog exports, statistics, and maintenance endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/fogbound/fogmap/internal/fixlog"
	"github.com/fogbound/fogmap/internal/footprint"
	"github.com/fogbound/fogmap/internal/geo"
	"github.com/fogbound/fogmap/internal/httputil"
	"github.com/fogbound/fogmap/internal/units"
	"github.com/fogbound/fogmap/internal/version"
)

type Server struct {
	manager *footprint.Manager
	fixes   *fixlog.DB
	flusher *footprint.SnapshotFlusher
	logger  *log.Logger

	sessionID           string
	defaultBufferRadius float64
}

// Config carries the collaborators the API server needs. FixDB and Flusher
// may be nil; the endpoints that need them report 503.
type Config struct {
	Manager             *footprint.Manager
	FixDB               *fixlog.DB
	Flusher             *footprint.SnapshotFlusher
	SessionID           string
	DefaultBufferRadius float64
	Logger              *log.Logger
}

func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	radius := cfg.DefaultBufferRadius
	if radius <= 0 {
		radius = 15
	}
	return &Server{
		manager:             cfg.Manager,
		fixes:               cfg.FixDB,
		flusher:             cfg.Flusher,
		logger:              logger,
		sessionID:           cfg.SessionID,
		defaultBufferRadius: radius,
	}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/fixes", s.postFix)
	mux.HandleFunc("/fog.geojson", s.fogGeoJSON)
	mux.HandleFunc("/fog.kml", s.fogKML)
	mux.HandleFunc("/stats", s.stats)
	mux.HandleFunc("/tunnels", s.tunnels)
	mux.HandleFunc("/rebuild", s.rebuild)
	mux.HandleFunc("/save", s.save)
	mux.HandleFunc("/", s.homeHandler)
	return mux
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Welcome to the Fogmap Server!"))
}

// postFix ingests one GPS fix: log it first, then fold it into the region.
// A fix the engine rejects is a client error; a union failure is ours.
func (s *Server) postFix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var fix footprint.Fix
	if err := json.NewDecoder(r.Body).Decode(&fix); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid fix payload: %v", err))
		return
	}
	if fix.BufferRadiusMeters == 0 {
		fix.BufferRadiusMeters = s.defaultBufferRadius
	}

	if s.fixes != nil {
		if err := s.fixes.RecordFix(s.sessionID, fix); err != nil {
			s.logger.Printf("[API] failed to log fix: %v", err)
		}
	}

	if err := s.manager.AddFix(fix); err != nil {
		if errors.Is(err, geo.ErrOutOfRange) || errors.Is(err, footprint.ErrInvalidFix) {
			httputil.BadRequest(w, fmt.Sprintf("rejected fix: %v", err))
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("failed to apply fix: %v", err))
		return
	}

	httputil.WriteJSONOK(w, map[string]any{
		"status":               "ok",
		"explored_area_m2":     s.manager.ExploredAreaSquareMeters(),
		"tunnel_segment_count": len(s.manager.TunnelSegments()),
	})
}

func (s *Server) fogGeoJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := footprint.FogGeoJSON(s.manager.Region())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to export fog polygon: %v", err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(raw)
}

func (s *Server) fogKML(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	if err := footprint.WriteFogKML(w, s.manager.Region(), s.manager.TunnelSegments()); err != nil {
		http.Error(w, fmt.Sprintf("Failed to export KML: %v", err), http.StatusInternalServerError)
		return
	}
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	unit := r.URL.Query().Get("units")
	if unit == "" {
		unit = units.M2
	}
	if !units.IsValid(unit) {
		httputil.BadRequest(w, fmt.Sprintf("unknown units %q, want one of: %s", unit, units.GetValidUnitsString()))
		return
	}

	stats := map[string]any{
		"explored_area":         units.ConvertArea(s.manager.ExploredAreaSquareMeters(), unit),
		"units":                 unit,
		"percent_earth_surface": s.manager.PercentOfEarthSurface(),
		"percent_land":          s.manager.PercentOfLand(),
		"tunnel_segment_count":  len(s.manager.TunnelSegments()),
		"version":               version.Version,
	}
	if s.fixes != nil {
		if count, err := s.fixes.CountFixes(); err == nil {
			stats["logged_fix_count"] = count
		}
	}
	httputil.WriteJSONOK(w, stats)
}

// tunnelJSON is one teleport gap with geographic endpoints.
type tunnelJSON struct {
	FromLongitude  float64 `json:"from_longitude"`
	FromLatitude   float64 `json:"from_latitude"`
	ToLongitude    float64 `json:"to_longitude"`
	ToLatitude     float64 `json:"to_latitude"`
	FromUnixMillis int64   `json:"from_unix_millis"`
	ToUnixMillis   int64   `json:"to_unix_millis"`
}

func (s *Server) tunnels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	segments := s.manager.TunnelSegments()
	out := make([]tunnelJSON, 0, len(segments))
	for _, seg := range segments {
		fromLon, fromLat := geo.ToGeographic(seg.From.X, seg.From.Y)
		toLon, toLat := geo.ToGeographic(seg.To.X, seg.To.Y)
		out = append(out, tunnelJSON{
			FromLongitude:  fromLon,
			FromLatitude:   fromLat,
			ToLongitude:    toLon,
			ToLatitude:     toLat,
			FromUnixMillis: seg.FromUnixMillis,
			ToUnixMillis:   seg.ToUnixMillis,
		})
	}
	httputil.WriteJSONOK(w, out)
}

// rebuild replays the whole fix log through a fresh region. Slow, and the
// engine blocks ingest while it runs.
func (s *Server) rebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.fixes == nil {
		httputil.ServiceUnavailable(w, "no fix log configured")
		return
	}

	fixes, err := s.fixes.FixesAsc()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to read fix log: %v", err))
		return
	}
	if err := s.manager.RebuildFromFixes(fixes); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("rebuild failed: %v", err))
		return
	}

	httputil.WriteJSONOK(w, map[string]any{
		"status":           "ok",
		"replayed_fixes":   len(fixes),
		"explored_area_m2": s.manager.ExploredAreaSquareMeters(),
	})
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.flusher == nil {
		httputil.ServiceUnavailable(w, "no snapshot flusher configured")
		return
	}

	s.flusher.FlushNow()
	httputil.WriteJSONOK(w, map[string]any{"status": "ok"})
}
