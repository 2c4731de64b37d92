package config_test

import (
	"testing"

	"github.com/clima-cdmx/archivador/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
archivador:
  system:
    timezone: America/Mexico_City
    logging:
      level: DEBUG
  request:
    start_date: "2024-01-01"
    end_date: "2024-01-03"
    timeout_seconds: 30
  export:
    csv:
      path: salida.csv
  database:
    clima:
      type: sqlite
      database: clima.db
`

func TestLoadConfigMergesYAMLOverDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(testYAML))
	require.NoError(t, err)

	// YAML values win over defaults.
	assert.Equal(t, "DEBUG", cfg.Archivador.System.Logging.Level)
	assert.Equal(t, "2024-01-03", cfg.Archivador.Request.EndDate)
	assert.Equal(t, 30, cfg.Archivador.Request.TimeoutSeconds)
	assert.Equal(t, "salida.csv", cfg.Archivador.Export.CSV.Path)

	// Defaults survive where YAML is silent.
	assert.Equal(t, "https://archive-api.open-meteo.com/v1/archive", cfg.Archivador.Request.APIEndpoint)
	assert.InDelta(t, 19.5047, cfg.Archivador.Request.Latitude, 1e-9)
	assert.InDelta(t, -99.1469, cfg.Archivador.Request.Longitude, 1e-9)
	assert.Equal(t, 1000, cfg.Archivador.Pipeline.ChunkSize)

	// Named adapter configs are carried through for the store provider.
	require.Contains(t, cfg.Archivador.AdapterConfigs, "clima")
}

func TestLoadConfigDefaultsWithoutYAML(t *testing.T) {
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(""))
	require.NoError(t, err)

	assert.Equal(t, "historico_clima_2024-2025_CDMX2.csv", cfg.Archivador.Export.CSV.Path)
	assert.True(t, cfg.Archivador.Export.CSV.Enabled)
	assert.Equal(t, "2024-01-01", cfg.Archivador.Request.StartDate)
	assert.Equal(t, "", cfg.Archivador.Request.EndDate)
	assert.Equal(t, "America/Mexico_City", cfg.Archivador.System.Timezone)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ARCHIVADOR_REQUEST_START_DATE", "2025-06-01")
	t.Setenv("ARCHIVADOR_REQUEST_LATITUDE", "20.5")
	t.Setenv("ARCHIVADOR_EXPORT_CSV_PATH", "desde_env.csv")
	t.Setenv("ARCHIVADOR_PIPELINE_CHUNK_SIZE", "250")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig(testYAML))
	require.NoError(t, err)

	assert.Equal(t, "2025-06-01", cfg.Archivador.Request.StartDate)
	assert.InDelta(t, 20.5, cfg.Archivador.Request.Latitude, 1e-9)
	assert.Equal(t, "desde_env.csv", cfg.Archivador.Export.CSV.Path)
	assert.Equal(t, 250, cfg.Archivador.Pipeline.ChunkSize)
}

func TestLoadConfigInvalidEnvValue(t *testing.T) {
	t.Setenv("ARCHIVADOR_REQUEST_TIMEOUT_SECONDS", "not-a-number")

	_, err := config.LoadConfig("", config.EmbeddedConfig(testYAML))
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	_, err := config.LoadConfig("", config.EmbeddedConfig("archivador: [unclosed"))
	assert.Error(t, err)
}
