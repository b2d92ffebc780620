// Package config defines service configuration structures and loading.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer file and environment overrides in Load.
// - External errors are wrapped via this package's sentinel kinds.
package config

// Store kinds accepted by the `store` key.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the record store backend: sqlite or memory.
	Store string `koanf:"store"`

	// UserDBPath locates the SQLite user database (created on first
	// use). Ignored for the memory store.
	UserDBPath string `koanf:"user_db_path"`

	// ChartDBPath locates the read-only SQLite song database holding
	// the charts table.
	ChartDBPath string `koanf:"chart_db_path"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		Addr:        ":9080",
		Store:       StoreSQLite,
		UserDBPath:  "user.db",
		ChartDBPath: "arcsong.db",
	}
}
