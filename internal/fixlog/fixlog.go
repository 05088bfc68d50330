// Package fixlog stores every accepted GPS fix in SQLite so the explored
// region can be rebuilt from scratch after a corrupt snapshot or a tuning
// change.
package fixlog

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/fogbound/fogmap/internal/footprint"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the fix log at path and runs pending migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	fldb := &DB{db}
	if err := fldb.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("fix log migrations: %w", err)
	}
	return fldb, nil
}

// NewSessionID returns a fresh identifier for one recording session. Every
// fix recorded by a single process run shares a session id.
func NewSessionID() string {
	return uuid.NewString()
}

// RecordFix appends one fix to the log.
func (db *DB) RecordFix(sessionID string, fix footprint.Fix) error {
	_, err := db.Exec(`
		INSERT INTO fixes (session_id, longitude, latitude, ts_unix_millis, buffer_radius_m)
		VALUES (?, ?, ?, ?, ?)`,
		sessionID, fix.Longitude, fix.Latitude, fix.TSUnixMillis, fix.BufferRadiusMeters,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fix: %w", err)
	}
	return nil
}

// FixesAsc returns every logged fix ordered by timestamp, oldest first. This
// is the replay order a rebuild needs.
func (db *DB) FixesAsc() ([]footprint.Fix, error) {
	rows, err := db.Query(`
		SELECT longitude, latitude, ts_unix_millis, buffer_radius_m
		FROM fixes
		ORDER BY ts_unix_millis ASC, fix_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixes: %w", err)
	}
	defer rows.Close()

	var fixes []footprint.Fix
	for rows.Next() {
		var fix footprint.Fix
		if err := rows.Scan(&fix.Longitude, &fix.Latitude, &fix.TSUnixMillis, &fix.BufferRadiusMeters); err != nil {
			return nil, fmt.Errorf("failed to scan fix: %w", err)
		}
		fixes = append(fixes, fix)
	}
	return fixes, rows.Err()
}

// CountFixes returns the total number of logged fixes.
func (db *DB) CountFixes() (int64, error) {
	var count int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM fixes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count fixes: %w", err)
	}
	return count, nil
}

// SessionCounts returns the number of fixes per session, newest session
// first, for the admin surface.
func (db *DB) SessionCounts() (map[string]int64, error) {
	rows, err := db.Query(`
		SELECT session_id, COUNT(*)
		FROM fixes
		GROUP BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var id string
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan session count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// PruneSession deletes every fix recorded under sessionID and reports how
// many rows went away.
func (db *DB) PruneSession(sessionID string) (int64, error) {
	res, err := db.Exec(`DELETE FROM fixes WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to prune session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Printf("[FixLog] pruned session %s: %d fixes removed", sessionID, n)
	return n, nil
}
