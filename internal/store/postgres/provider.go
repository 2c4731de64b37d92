// Package postgres registers the PostgreSQL dialector with the store layer.
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/clima-cdmx/archivador/internal/store"
)

// init registers the PostgreSQL dialector factory. Importing this package
// (blank import in the command entry point) enables the "postgres" type.
func init() {
	store.RegisterDialector("postgres", func(cfg store.DatabaseConfig) (gorm.Dialector, error) {
		return postgres.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString generates the DSN for PostgreSQL connections in the format
// expected by gorm.io/driver/postgres.
func ConnectionString(c store.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.Sslmode)
}
