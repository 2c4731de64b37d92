package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/clima-cdmx/archivador/pkg/util/exception"
	"github.com/clima-cdmx/archivador/pkg/util/logger"

	"go.uber.org/fx"
)

const moduleName = "config"

// EmbeddedConfig contains the raw bytes of the embedded configuration file.
type EmbeddedConfig []byte

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string `name:"envFilePath" optional:"true"` // Path to the .env file, if any.
}

// loadConfig loads configuration from the embedded YAML and environment
// variables. It is intended to be called only once during startup.
//
// Parameters:
//   envFilePath: The path to the .env file.
//   embeddedConfig: The embedded configuration bytes.
// Returns:
//   A pointer to the loaded Config and an error if loading fails.
func loadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	// 1. Defaults come from NewConfig().

	// 2. Parse the embedded YAML into a temporary Config so values land in
	// their proper types before merging.
	var yamlConfig Config
	if err := yaml.Unmarshal(embeddedConfig, &yamlConfig); err != nil {
		return nil, exception.NewUnexpectedError(moduleName, "failed to unmarshal embedded config", err)
	}

	// 3. Merge the YAML configuration over the defaults.
	mergeConfig(cfg, &yamlConfig)

	// 4. Override with ARCHIVADOR_* environment variables.
	if err := loadStructFromEnv(reflect.ValueOf(&cfg.Archivador).Elem(), "ARCHIVADOR_"); err != nil {
		return nil, exception.NewUnexpectedError(moduleName, "failed to load config from environment variables", err)
	}

	return cfg, nil
}

// NewConfigProvider is an Fx provider that loads and provides *Config.
// It also applies the configured log level as a side effect.
//
// Parameters:
//   params: ConfigParams containing the embedded config and optional env file path.
// Returns:
//   A pointer to the initialized Config and an error if loading fails.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Archivador.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Archivador.System.Logging.Level)

	return cfg, nil
}

// LoadConfig loads configuration from the embedded YAML and environment
// variables. Exposed for tests and non-Fx callers.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig)
}

// mergeConfig performs a deep merge from sourceConfig into destConfig.
// Values in sourceConfig overwrite corresponding values in destConfig
// when they are not zero/empty values for their type.
func mergeConfig(destConfig, sourceConfig *Config) {
	mergeArchivadorConfig(&destConfig.Archivador, &sourceConfig.Archivador)
}

func mergeArchivadorConfig(dest, source *ArchivadorConfig) {
	mergeSystemConfig(&dest.System, &source.System)
	mergeRequestConfig(&dest.Request, &source.Request)

	if source.Pipeline.ChunkSize != 0 {
		dest.Pipeline.ChunkSize = source.Pipeline.ChunkSize
	}

	mergeExportConfig(&dest.Export, &source.Export)
	mergeMetricsConfig(&dest.Metrics, &source.Metrics)

	// Merge named adapter configs (the critical part for database settings).
	if source.AdapterConfigs != nil {
		if dest.AdapterConfigs == nil {
			dest.AdapterConfigs = make(map[string]interface{})
		}
		for key, value := range source.AdapterConfigs {
			dest.AdapterConfigs[key] = value
		}
	}
	if source.Storage != nil {
		if dest.Storage == nil {
			dest.Storage = make(map[string]interface{})
		}
		for key, value := range source.Storage {
			dest.Storage[key] = value
		}
	}
}

func mergeSystemConfig(dest, source *SystemConfig) {
	if source.Timezone != "" {
		dest.Timezone = source.Timezone
	}
	if source.Logging.Level != "" {
		dest.Logging.Level = source.Logging.Level
	}
}

func mergeRequestConfig(dest, source *RequestConfig) {
	if source.APIEndpoint != "" {
		dest.APIEndpoint = source.APIEndpoint
	}
	if source.Latitude != 0 {
		dest.Latitude = source.Latitude
	}
	if source.Longitude != 0 {
		dest.Longitude = source.Longitude
	}
	if source.StartDate != "" {
		dest.StartDate = source.StartDate
	}
	if source.EndDate != "" {
		dest.EndDate = source.EndDate
	}
	if source.Timezone != "" {
		dest.Timezone = source.Timezone
	}
	if source.TimeoutSeconds != 0 {
		dest.TimeoutSeconds = source.TimeoutSeconds
	}
}

func mergeExportConfig(dest, source *ExportConfig) {
	if source.CSV.Path != "" {
		dest.CSV.Path = source.CSV.Path
	}
	// Enabled flags are taken from YAML as-is only when true; a false in
	// YAML is indistinguishable from absent, so disabling is done via env.
	if source.CSV.Enabled {
		dest.CSV.Enabled = true
	}
	if source.Database.Enabled {
		dest.Database.Enabled = true
	}
	if source.Database.ConnectionRef != "" {
		dest.Database.ConnectionRef = source.Database.ConnectionRef
	}
	if source.Database.BulkSize != 0 {
		dest.Database.BulkSize = source.Database.BulkSize
	}
	if source.Parquet.Enabled {
		dest.Parquet.Enabled = true
	}
	if source.Parquet.StorageRef != "" {
		dest.Parquet.StorageRef = source.Parquet.StorageRef
	}
	if source.Parquet.OutputBaseDir != "" {
		dest.Parquet.OutputBaseDir = source.Parquet.OutputBaseDir
	}
	if source.Parquet.Compression != "" {
		dest.Parquet.Compression = source.Parquet.Compression
	}
}

func mergeMetricsConfig(dest, source *MetricsConfig) {
	if source.Enabled {
		dest.Enabled = true
	}
	if source.PushGatewayURL != "" {
		dest.PushGatewayURL = source.PushGatewayURL
	}
	if source.JobName != "" {
		dest.JobName = source.JobName
	}
}

// loadStructFromEnv recursively loads configuration values into a struct from
// environment variables. Variable names are derived from the "yaml" tags, e.g.
// ARCHIVADOR_REQUEST_START_DATE maps to Archivador.Request.StartDate.
//
// Parameters:
//   val: The reflect.Value of the struct to populate.
//   prefix: The prefix for environment variable names (e.g. "ARCHIVADOR_").
// Returns: An error if any field cannot be set.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}

		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField sets the value of a reflect.Value field based on its kind.
// It handles string, int, float, and bool types.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}
