// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers .env, an optional YAML file and DKP_ environment variables on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/dkp/internal/adapters/repository"
	"github.com/okian/dkp/internal/domain/roster"
	"github.com/okian/dkp/internal/domain/scoring"
	"github.com/okian/dkp/internal/domain/snapshot"
)

// Storage backends accepted by the storage key.
const (
	StorageSQLite = repository.KindSQLite
	StorageMemory = repository.KindMemory
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogPretty switches the logger to console output.
	LogPretty bool `koanf:"log_pretty"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Storage selects the profile store: sqlite or memory.
	Storage string `koanf:"storage"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// MaxUploadBytes caps request bodies carrying CSV exports.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// FighterMinPower is the starting power floor for the fighters view.
	FighterMinPower int64 `koanf:"fighter_min_power"`

	// Default scoring weights used when a request omits settings.
	T4Mult        float64 `koanf:"t4_mult"`
	T5Mult        float64 `koanf:"t5_mult"`
	DeadsMult     float64 `koanf:"deads_mult"`
	TargetPercent float64 `koanf:"target_percent"`

	// Columns overrides export header names.
	Columns snapshot.Columns `koanf:"columns"`

	// CORSOrigins is a comma-separated allow list; empty allows any origin.
	CORSOrigins string `koanf:"cors_origins"`
}

// New creates a Config with defaults.
func New() *Config {
	def := scoring.DefaultConfig()
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		Storage:         StorageSQLite,
		DBPath:          "data/dkp.db",
		MaxUploadBytes:  32 << 20,
		FighterMinPower: roster.DefaultFighterMinPower,
		T4Mult:          def.T4Mult,
		T5Mult:          def.T5Mult,
		DeadsMult:       def.DeadsMult,
		TargetPercent:   def.TargetPercent,
		Columns:         snapshot.DefaultColumns(),
	}
}

// Scoring returns the default scoring weights.
func (c *Config) Scoring() scoring.Config {
	return scoring.Config{
		T4Mult:        c.T4Mult,
		T5Mult:        c.T5Mult,
		DeadsMult:     c.DeadsMult,
		TargetPercent: c.TargetPercent,
	}
}

// Origins splits CORSOrigins into a list, defaulting to every origin.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Storage {
	case StorageSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("%w: db_path is required for sqlite storage", ErrInvalidConfig)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, c.Storage)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	}
	weights := map[string]float64{
		"t4_mult":        c.T4Mult,
		"t5_mult":        c.T5Mult,
		"deads_mult":     c.DeadsMult,
		"target_percent": c.TargetPercent,
	}
	for key, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidConfig, key)
		}
	}
	return nil
}
