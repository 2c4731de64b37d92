// Package sqlite registers the SQLite dialector with the store layer.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clima-cdmx/archivador/internal/store"
)

// init registers the SQLite dialector factory. Importing this package (blank
// import in the command entry point) is all that is needed to enable the
// "sqlite" database type.
func init() {
	store.RegisterDialector("sqlite", func(cfg store.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		return sqlite.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString generates the DSN for SQLite connections.
// The GORM SQLite dialector expects the file path directly.
func ConnectionString(c store.DatabaseConfig) string {
	return c.Database
}
