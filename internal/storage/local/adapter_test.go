package local_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	appconfig "github.com/clima-cdmx/archivador/internal/config"
	"github.com/clima-cdmx/archivador/internal/storage"
	"github.com/clima-cdmx/archivador/internal/storage/local"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalAdapterUploadDownloadRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	conn, err := local.NewLocalAdapter(storage.Config{Type: "local", BaseDir: baseDir}, "test")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, conn.Upload(ctx, "dt=2024-01-01/datos.parquet", strings.NewReader("payload"), "application/octet-stream"))

	rc, err := conn.Download(ctx, "dt=2024-01-01/datos.parquet")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	// No temp files left behind after the rename.
	entries, err := os.ReadDir(filepath.Join(baseDir, "dt=2024-01-01"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "datos.parquet", entries[0].Name())
}

func TestLocalAdapterUploadReplacesExisting(t *testing.T) {
	baseDir := t.TempDir()
	conn, err := local.NewLocalAdapter(storage.Config{Type: "local", BaseDir: baseDir}, "test")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, conn.Upload(ctx, "datos.csv", strings.NewReader("old"), "text/csv"))
	require.NoError(t, conn.Upload(ctx, "datos.csv", strings.NewReader("new"), "text/csv"))

	data, err := os.ReadFile(filepath.Join(baseDir, "datos.csv"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestLocalAdapterRejectsPathEscape(t *testing.T) {
	baseDir := t.TempDir()
	conn, err := local.NewLocalAdapter(storage.Config{Type: "local", BaseDir: baseDir}, "test")
	require.NoError(t, err)

	err = conn.Upload(context.Background(), "../fuera.txt", strings.NewReader("x"), "text/plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside of base_dir")
}

func TestLocalAdapterRequiresBaseDir(t *testing.T) {
	_, err := local.NewLocalAdapter(storage.Config{Type: "local"}, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_dir must be specified")
}

func TestLocalProviderGetConnection(t *testing.T) {
	baseDir := t.TempDir()
	cfg := appconfig.NewConfig()
	cfg.Archivador.Storage = map[string]interface{}{
		"local": map[string]interface{}{
			"type":     "local",
			"base_dir": baseDir,
		},
	}

	provider := local.NewLocalProvider(cfg)
	conn, err := provider.GetConnection("local")
	require.NoError(t, err)
	assert.Equal(t, "local", conn.Type())
	assert.Equal(t, "local", conn.Name())

	// Same connection instance on repeat lookups.
	again, err := provider.GetConnection("local")
	require.NoError(t, err)
	assert.Same(t, conn, again)

	_, err = provider.GetConnection("missing")
	assert.Error(t, err)

	require.NoError(t, provider.CloseAll())
}
