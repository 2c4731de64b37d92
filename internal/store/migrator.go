package store

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/clima-cdmx/archivador/pkg/util/logger"
)

// MigrationsTable is the bookkeeping table golang-migrate uses.
const MigrationsTable = "schema_migrations"

// Migrator applies embedded SQL migrations against a Connection.
type Migrator struct {
	conn *Connection
}

// NewMigrator creates a Migrator for the given connection.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn}
}

func (m *Migrator) databaseDriver(sqlDB *sql.DB) (database.Driver, error) {
	switch m.conn.Type() {
	case "postgres":
		return migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{
			MigrationsTable: MigrationsTable,
		})
	case "mysql":
		return migratemysql.WithInstance(sqlDB, &migratemysql.Config{
			MigrationsTable: MigrationsTable,
		})
	case "sqlite":
		return migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{
			MigrationsTable: MigrationsTable,
		})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", m.conn.Type())
	}
}

func (m *Migrator) migrateInstance(migrationFS fs.FS, path string) (*migrate.Migrate, error) {
	sqlDB, err := m.conn.SQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sourceDriver, err := iofs.New(migrationFS, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs source driver for path %s: %w", path, err)
	}

	dbDriver, err := m.databaseDriver(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	instance, err := migrate.NewWithInstance("iofs", sourceDriver, m.conn.Type(), dbDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return instance, nil
}

// Up applies all pending migrations from the given filesystem path.
// An already up-to-date schema is not an error.
func (m *Migrator) Up(migrationFS fs.FS, path string) error {
	logger.Infof("Applying migrations (path: %s, db: %s)", path, m.conn.Type())

	instance, err := m.migrateInstance(migrationFS, path)
	if err != nil {
		return err
	}
	defer instance.Close()

	if err := instance.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed (db: %s, path: %s): %w", m.conn.Type(), path, err)
	}

	logger.Infof("Migrations applied successfully.")
	return nil
}
