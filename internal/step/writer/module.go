package writer

import (
	"fmt"

	"go.uber.org/fx"

	"github.com/clima-cdmx/archivador/internal/config"
	"github.com/clima-cdmx/archivador/internal/domain/entity"
	"github.com/clima-cdmx/archivador/internal/pipeline"
	"github.com/clima-cdmx/archivador/internal/storage"
	"github.com/clima-cdmx/archivador/internal/store"
)

// WritersParams defines the dependencies for NewWriters.
type WritersParams struct {
	fx.In

	Cfg             *config.Config
	StoreProvider   *store.Provider
	StorageProvider storage.Provider
	RunID           pipeline.RunID
}

// NewWriters assembles the enabled output sinks from the export
// configuration. The CSV sink is the primary output; database and Parquet
// sinks are attached when enabled.
func NewWriters(p WritersParams) ([]pipeline.ItemWriter[entity.Observation], error) {
	export := p.Cfg.Archivador.Export
	var writers []pipeline.ItemWriter[entity.Observation]

	if export.CSV.Enabled {
		writers = append(writers, NewObservationCSVWriter(export.CSV.Path))
	}

	if export.Database.Enabled {
		if export.Database.ConnectionRef == "" {
			return nil, fmt.Errorf("export.database.connection_ref must be set when the database sink is enabled")
		}
		conn, err := p.StoreProvider.GetConnection(export.Database.ConnectionRef)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database connection for export: %w", err)
		}
		writers = append(writers, NewObservationDatabaseWriter(conn, export.Database.BulkSize, string(p.RunID)))
	}

	if export.Parquet.Enabled {
		conn, err := p.StorageProvider.GetConnection(export.Parquet.StorageRef)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve storage connection for Parquet export: %w", err)
		}
		writers = append(writers, NewObservationParquetWriter(conn, export.Parquet.OutputBaseDir, export.Parquet.Compression, string(p.RunID)))
	}

	if len(writers) == 0 {
		return nil, fmt.Errorf("no output sinks enabled; enable at least export.csv")
	}
	return writers, nil
}

// Module provides the assembled output sinks to the Fx container.
var Module = fx.Options(
	fx.Provide(NewWriters),
)
