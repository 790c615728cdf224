package config

import (
	"fmt"

	"github.com/kilianp07/promanage/core/jobstore"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// StoreConfig selects where jobs are kept and how their ids are generated.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `json:"backend"`
	// Path is the SQLite database file.
	Path string `json:"path"`
	// IDScheme is "sequential" (PRJ001, PRJ002, ...) or "uuid".
	IDScheme string `json:"id_scheme"`
	IDPrefix string `json:"id_prefix"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Backend == BackendSQLite && c.Path == "" {
		c.Path = "promanage.db"
	}
	if c.IDScheme == "" {
		c.IDScheme = jobstore.SchemeSequential
	}
	if c.IDPrefix == "" {
		c.IDPrefix = jobstore.DefaultPrefix
	}
}

// Validate checks mandatory fields.
func (c StoreConfig) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Path == "" {
			return fmt.Errorf("path is required for sqlite backend")
		}
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.IDScheme != jobstore.SchemeSequential && c.IDScheme != jobstore.SchemeUUID {
		return fmt.Errorf("unknown id scheme %s", c.IDScheme)
	}
	return nil
}
