package store_test

import (
	"testing"

	"github.com/clima-cdmx/archivador/internal/store"
	"github.com/clima-cdmx/archivador/internal/store/mysql"
	"github.com/clima-cdmx/archivador/internal/store/postgres"
	"github.com/clima-cdmx/archivador/internal/store/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectorRegistryHasImportedDialects(t *testing.T) {
	for _, dbType := range []string{"sqlite", "postgres", "mysql"} {
		factory, err := store.GetDialectorFactory(dbType)
		require.NoError(t, err, dbType)
		assert.NotNil(t, factory, dbType)
	}

	_, err := store.GetDialectorFactory("oracle")
	assert.Error(t, err)
}

func TestSQLiteDialectorRejectsEmptyPath(t *testing.T) {
	factory, err := store.GetDialectorFactory("sqlite")
	require.NoError(t, err)

	_, err = factory(store.DatabaseConfig{Type: "sqlite"})
	assert.Error(t, err)

	_, err = factory(store.DatabaseConfig{Type: "sqlite", Database: "clima.db"})
	assert.NoError(t, err)
}

func TestConnectionStrings(t *testing.T) {
	cfg := store.DatabaseConfig{
		Type:     "postgres",
		Host:     "db.example.com",
		Port:     5432,
		Database: "clima",
		User:     "archivador",
		Password: "secret",
		Sslmode:  "disable",
	}

	assert.Equal(t,
		"host=db.example.com port=5432 user=archivador password=secret dbname=clima sslmode=disable",
		postgres.ConnectionString(cfg))

	cfg.Port = 3306
	assert.Equal(t,
		"archivador:secret@tcp(db.example.com:3306)/clima?charset=utf8mb4&parseTime=True&loc=Local",
		mysql.ConnectionString(cfg))

	assert.Equal(t, "clima", sqlite.ConnectionString(store.DatabaseConfig{Database: "clima"}))
}
