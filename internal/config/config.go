// Package config defines the archivador configuration structure and its
// loading rules. Configuration is assembled from defaults, an embedded YAML
// resource, a .env file and ARCHIVADOR_* environment variables, in that order
// of increasing precedence.
package config

// Config is the root of the application configuration.
type Config struct {
	Archivador ArchivadorConfig `yaml:"archivador"`
}

// ArchivadorConfig groups all configuration sections of the application.
type ArchivadorConfig struct {
	System   SystemConfig   `yaml:"system"`
	Request  RequestConfig  `yaml:"request"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Export   ExportConfig   `yaml:"export"`
	Metrics  MetricsConfig  `yaml:"metrics"`

	// AdapterConfigs holds named database connection settings keyed by
	// connection name, decoded lazily by the store provider.
	AdapterConfigs map[string]interface{} `yaml:"database"`
	// Storage holds named storage adapter settings keyed by adapter name.
	Storage map[string]interface{} `yaml:"storage"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the IANA timezone used for timestamp interpretation and
	// for resolving relative dates such as "yesterday".
	Timezone string        `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RequestConfig describes the archive API request.
type RequestConfig struct {
	APIEndpoint string  `yaml:"api_endpoint"`
	Latitude    float64 `yaml:"latitude"`
	Longitude   float64 `yaml:"longitude"`
	// StartDate is the inclusive start of the requested range (YYYY-MM-DD).
	StartDate string `yaml:"start_date"`
	// EndDate is the inclusive end of the requested range (YYYY-MM-DD).
	// When empty it resolves to yesterday in the configured timezone at
	// request build time.
	EndDate string `yaml:"end_date"`
	// Timezone is passed to the API so returned timestamps are local.
	Timezone       string `yaml:"timezone"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PipelineConfig holds pipeline execution settings.
type PipelineConfig struct {
	// ChunkSize is the number of items processed per chunk.
	ChunkSize int `yaml:"chunk_size"`
}

// ExportConfig groups the output sinks.
type ExportConfig struct {
	CSV      CSVExportConfig      `yaml:"csv"`
	Database DatabaseExportConfig `yaml:"database"`
	Parquet  ParquetExportConfig  `yaml:"parquet"`
}

// CSVExportConfig configures the CSV output file.
type CSVExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DatabaseExportConfig configures the optional database sink.
type DatabaseExportConfig struct {
	Enabled bool `yaml:"enabled"`
	// ConnectionRef names the entry under the database section to use.
	ConnectionRef string `yaml:"connection_ref"`
	BulkSize      int    `yaml:"bulk_size"`
}

// ParquetExportConfig configures the optional Parquet sink.
type ParquetExportConfig struct {
	Enabled bool `yaml:"enabled"`
	// StorageRef names the entry under the storage section to use.
	StorageRef    string `yaml:"storage_ref"`
	OutputBaseDir string `yaml:"output_base_dir"`
	Compression   string `yaml:"compression"`
}

// MetricsConfig configures metric recording.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// PushGatewayURL, when set, pushes the run's metrics to a Prometheus
	// Pushgateway at the end of execution.
	PushGatewayURL string `yaml:"push_gateway_url"`
	JobName        string `yaml:"job_name"`
}

// NewConfig returns a Config populated with default values.
// Defaults target the Mexico City historical archive pull that the
// application was built for.
func NewConfig() *Config {
	return &Config{
		Archivador: ArchivadorConfig{
			System: SystemConfig{
				Timezone: "America/Mexico_City",
				Logging: LoggingConfig{
					Level: "INFO",
				},
			},
			Request: RequestConfig{
				APIEndpoint:    "https://archive-api.open-meteo.com/v1/archive",
				Latitude:       19.5047,
				Longitude:      -99.1469,
				StartDate:      "2024-01-01",
				Timezone:       "America/Mexico_City",
				TimeoutSeconds: 60,
			},
			Pipeline: PipelineConfig{
				ChunkSize: 1000,
			},
			Export: ExportConfig{
				CSV: CSVExportConfig{
					Enabled: true,
					Path:    "historico_clima_2024-2025_CDMX2.csv",
				},
				Database: DatabaseExportConfig{
					BulkSize: 500,
				},
				Parquet: ParquetExportConfig{
					StorageRef:    "local",
					OutputBaseDir: "output",
					Compression:   "snappy",
				},
			},
			Metrics: MetricsConfig{
				JobName: "archivador",
			},
		},
	}
}
