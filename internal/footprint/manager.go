package footprint

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/twpayne/go-geos"

	"github.com/fogbound/fogmap/internal/geo"
)

// ErrInvalidFix marks a fix rejected before it touched the region, as
// opposed to a geometry failure during the union.
var ErrInvalidFix = errors.New("invalid fix")

// quadSegments controls the arc approximation of buffered shapes, matching
// the geometry backend's default fidelity.
const quadSegments = 8

const (
	// rebuildBatchSize is the progress/logging granularity during replay.
	// It does not affect ordering.
	rebuildBatchSize = 200
	// rebuildMaxFixes is the replay ceiling; larger inputs are downsampled
	// by a fixed stride first.
	rebuildMaxFixes = 20000
)

// areaHistoryCap bounds the growth-chart sample buffer. On reaching the cap
// the buffer is compacted by keeping every second sample, so history stays
// deterministic without growing unbounded.
const areaHistoryCap = 8192

// AreaSample pairs a fix timestamp with the explored area after that fix was
// accumulated.
type AreaSample struct {
	UnixMillis       int64   `json:"ts_unix_millis"`
	AreaSquareMeters float64 `json:"area_m2"`
}

// Manager owns the explored-area region and the track cursor. A single mutex
// serializes all mutation so concurrent producers cannot interleave their
// read-modify-write of the region, and the region and cursor always move
// together. The region geometry itself is immutable once built: every union
// produces a new geometry and the old pointer stays valid, so readers only
// need the lock long enough to grab the current pointer.
type Manager struct {
	gctx   *geos.Context
	gap    GapParams
	logger *log.Logger

	mu      sync.Mutex
	region  *geos.Geom // nil while empty; replaced wholesale, never mutated
	cur     cursor
	tunnels []TunnelSegment
	history []AreaSample
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Context is the geometry backend context. A fresh one is created when
	// nil.
	Context *geos.Context
	// Gap overrides the gap-classification thresholds. Zero value means
	// DefaultGapParams.
	Gap GapParams
	// Logger is optional; if nil, uses log.Default().
	Logger *log.Logger
}

// NewManager creates a Manager with an empty region and no cursor.
func NewManager(cfg ManagerConfig) *Manager {
	gctx := cfg.Context
	if gctx == nil {
		gctx = geos.NewContext()
	}
	gap := cfg.Gap
	if gap == (GapParams{}) {
		gap = DefaultGapParams()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{gctx: gctx, gap: gap, logger: logger}
}

// AddFix projects the fix, classifies the gap against the previous fix, and
// unions the resulting buffered shape (corridor when connected, disc
// otherwise) into the region. The fix is rejected with no state change when
// the coordinates are out of projection range, the buffer radius is not
// positive, or the union fails on a degenerate shape. All such errors are
// recoverable; the caller logs and keeps ingesting.
func (m *Manager) AddFix(fix Fix) error {
	p, err := geo.ToPlanar(fix.Longitude, fix.Latitude)
	if err != nil {
		return fmt.Errorf("project fix: %w", err)
	}
	if fix.BufferRadiusMeters <= 0 {
		return fmt.Errorf("%w: buffer radius must be positive, got %v", ErrInvalidFix, fix.BufferRadiusMeters)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addFixLocked(fix, p)
}

// addFixLocked performs the union and cursor update. Callers hold m.mu and
// have already validated the fix.
func (m *Manager) addFixLocked(fix Fix, p geo.Point) error {
	var connect, teleport bool
	if m.cur.valid {
		dist := geo.Distance(m.cur.point, p)
		elapsed := time.Duration(fix.TSUnixMillis-m.cur.unixMillis) * time.Millisecond
		if elapsed < 0 {
			// Timestamps are informative but not strictly increasing; a
			// regression can never satisfy the teleport duration threshold.
			elapsed = 0
		}
		teleport = m.gap.IsTeleportGap(dist, elapsed)
		connect = m.gap.ShouldConnect(dist, elapsed)
	}

	var src orb.Geometry
	if connect && m.cur.point != p {
		src = orb.LineString{{m.cur.point.X, m.cur.point.Y}, {p.X, p.Y}}
	} else {
		// Disc. A zero-length corridor degenerates to one as well.
		src = orb.Point{p.X, p.Y}
	}
	base, err := m.gctx.NewGeomFromWKT(wkt.MarshalString(src))
	if err != nil {
		return fmt.Errorf("build incremental shape: %w", err)
	}

	merged, err := unionBuffered(m.region, base, fix.BufferRadiusMeters)
	if err != nil {
		return err
	}

	m.region = merged
	if teleport && !connect {
		m.tunnels = append(m.tunnels, TunnelSegment{
			From:           m.cur.point,
			To:             p,
			FromUnixMillis: m.cur.unixMillis,
			ToUnixMillis:   fix.TSUnixMillis,
		})
	}
	m.cur = cursor{point: p, unixMillis: fix.TSUnixMillis, valid: true}
	m.recordAreaLocked(fix.TSUnixMillis)
	return nil
}

// unionBuffered inflates base by radius and unions it into region. The
// geometry backend reports failures by panicking; that is recovered here so
// a degenerate shape rejects the fix instead of corrupting the region. The
// input region is untouched either way.
func unionBuffered(region, base *geos.Geom, radius float64) (merged *geos.Geom, err error) {
	defer func() {
		if r := recover(); r != nil {
			merged = nil
			err = fmt.Errorf("union buffered shape: %v", r)
		}
	}()

	shape := base.Buffer(radius, quadSegments)
	if shape.IsEmpty() {
		return nil, fmt.Errorf("buffered shape is empty")
	}
	if region == nil {
		return shape, nil
	}
	return region.Union(shape), nil
}

// Reset atomically clears the region, cursor, tunnel history, and area
// history.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

func (m *Manager) resetLocked() {
	m.region = nil
	m.cur = cursor{}
	m.tunnels = nil
	m.history = nil
}

// RebuildFromFixes clears all accumulated state and replays fixes in the
// given chronological order. Inputs above rebuildMaxFixes are downsampled
// first by a fixed stride (every step-th fix by index, step = n/20000) so
// the reduction is reproducible. The lock is held for the entire replay;
// concurrent AddFix calls wait until the rebuild finishes. Individual fixes
// that fail to project or union are skipped and counted, not fatal.
func (m *Manager) RebuildFromFixes(fixes []Fix) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetLocked()

	if n := len(fixes); n > rebuildMaxFixes {
		fixes = downsampleFixes(fixes, rebuildMaxFixes)
		m.logger.Printf("[Footprint] rebuild downsampled %d fixes to %d", n, len(fixes))
	}

	var rejected int
	for start := 0; start < len(fixes); start += rebuildBatchSize {
		end := min(start+rebuildBatchSize, len(fixes))
		for _, fix := range fixes[start:end] {
			p, err := geo.ToPlanar(fix.Longitude, fix.Latitude)
			if err != nil || fix.BufferRadiusMeters <= 0 {
				rejected++
				continue
			}
			if err := m.addFixLocked(fix, p); err != nil {
				rejected++
			}
		}
		if len(fixes) > rebuildBatchSize {
			m.logger.Printf("[Footprint] rebuild progress: %d/%d fixes", end, len(fixes))
		}
	}
	if rejected > 0 {
		m.logger.Printf("[Footprint] rebuild skipped %d fixes", rejected)
	}
	return nil
}

// downsampleFixes keeps every step-th fix by index, step = len/max. The
// reduction is deterministic so a rebuild of the same history always sees
// the same fixes.
func downsampleFixes(fixes []Fix, max int) []Fix {
	n := len(fixes)
	if n <= max {
		return fixes
	}
	step := n / max
	sampled := make([]Fix, 0, n/step+1)
	for i := 0; i < n; i += step {
		sampled = append(sampled, fixes[i])
	}
	return sampled
}

// Region returns the current accumulated region, or nil when empty. The
// geometry is never mutated in place, so the returned pointer stays valid
// and consistent after the lock is released.
func (m *Manager) Region() *geos.Geom {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.region
}

// Context returns the geometry backend context owning the region.
func (m *Manager) Context() *geos.Context {
	return m.gctx
}

// TunnelSegments returns a copy of the classified teleport gaps.
func (m *Manager) TunnelSegments() []TunnelSegment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TunnelSegment, len(m.tunnels))
	copy(out, m.tunnels)
	return out
}

// AreaHistory returns a copy of the recorded (timestamp, area) samples.
func (m *Manager) AreaHistory() []AreaSample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AreaSample, len(m.history))
	copy(out, m.history)
	return out
}

// recordAreaLocked appends a growth sample, compacting by stride once the
// buffer reaches its cap.
func (m *Manager) recordAreaLocked(unixMillis int64) {
	area := 0.0
	if m.region != nil {
		area = m.region.Area()
	}
	m.history = append(m.history, AreaSample{UnixMillis: unixMillis, AreaSquareMeters: area})
	if len(m.history) >= areaHistoryCap {
		kept := m.history[:0]
		for i := 0; i < len(m.history); i += 2 {
			kept = append(kept, m.history[i])
		}
		m.history = kept
	}
}
