// Package config loads optional tuning overrides for the footprint engine
// from a JSON file. All fields are pointers so a partial file only overrides
// what it names.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fogbound/fogmap/internal/footprint"
)

// TuningConfig represents the tuning parameters the engine accepts at
// startup. Fields omitted from the JSON file keep their built-in defaults,
// so partial configs are safe.
type TuningConfig struct {
	// Gap classification params
	TeleportMinElapsed       *string  `json:"teleport_min_elapsed,omitempty"` // duration string like "30s"
	TeleportMinDistanceM     *float64 `json:"teleport_min_distance_m,omitempty"`
	MaxConnectDistanceM      *float64 `json:"max_connect_distance_m,omitempty"`

	// Ingest params
	DefaultBufferRadiusM *float64 `json:"default_buffer_radius_m,omitempty"`

	// Persistence params
	AutosaveInterval *string `json:"autosave_interval,omitempty"` // duration string like "30s"
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *TuningConfig) Validate() error {
	if c.TeleportMinElapsed != nil {
		if d, err := time.ParseDuration(*c.TeleportMinElapsed); err != nil {
			return fmt.Errorf("teleport_min_elapsed: %w", err)
		} else if d < 0 {
			return fmt.Errorf("teleport_min_elapsed must not be negative, got %v", d)
		}
	}
	if c.TeleportMinDistanceM != nil && *c.TeleportMinDistanceM < 0 {
		return fmt.Errorf("teleport_min_distance_m must not be negative, got %v", *c.TeleportMinDistanceM)
	}
	if c.MaxConnectDistanceM != nil && *c.MaxConnectDistanceM <= 0 {
		return fmt.Errorf("max_connect_distance_m must be positive, got %v", *c.MaxConnectDistanceM)
	}
	if c.DefaultBufferRadiusM != nil && *c.DefaultBufferRadiusM <= 0 {
		return fmt.Errorf("default_buffer_radius_m must be positive, got %v", *c.DefaultBufferRadiusM)
	}
	if c.AutosaveInterval != nil {
		if d, err := time.ParseDuration(*c.AutosaveInterval); err != nil {
			return fmt.Errorf("autosave_interval: %w", err)
		} else if d < 0 {
			return fmt.Errorf("autosave_interval must not be negative, got %v", d)
		}
	}
	return nil
}

// GapParams returns the engine's gap thresholds with any overrides applied.
func (c *TuningConfig) GapParams() footprint.GapParams {
	params := footprint.DefaultGapParams()
	if c.TeleportMinElapsed != nil {
		// Validate() already parsed this successfully.
		params.TeleportMinElapsed, _ = time.ParseDuration(*c.TeleportMinElapsed)
	}
	if c.TeleportMinDistanceM != nil {
		params.TeleportMinDistanceMeters = *c.TeleportMinDistanceM
	}
	if c.MaxConnectDistanceM != nil {
		params.MaxConnectDistanceMeters = *c.MaxConnectDistanceM
	}
	return params
}

// BufferRadius returns the configured default buffer radius, falling back to
// fallback when unset.
func (c *TuningConfig) BufferRadius(fallback float64) float64 {
	if c.DefaultBufferRadiusM != nil {
		return *c.DefaultBufferRadiusM
	}
	return fallback
}

// Autosave returns the configured autosave interval, falling back to
// fallback when unset.
func (c *TuningConfig) Autosave(fallback time.Duration) time.Duration {
	if c.AutosaveInterval != nil {
		d, _ := time.ParseDuration(*c.AutosaveInterval)
		return d
	}
	return fallback
}
