// Package app wires the archive pipeline together and runs it as an Fx
// application.
package app

import (
	"context"
	"embed"

	"go.uber.org/fx"

	"github.com/clima-cdmx/archivador/internal/config"
	"github.com/clima-cdmx/archivador/internal/domain/entity"
	"github.com/clima-cdmx/archivador/internal/metrics"
	"github.com/clima-cdmx/archivador/internal/pipeline"
	"github.com/clima-cdmx/archivador/internal/step/processor"
	"github.com/clima-cdmx/archivador/internal/step/reader"
	"github.com/clima-cdmx/archivador/internal/step/writer"
	"github.com/clima-cdmx/archivador/internal/storage/local"
	"github.com/clima-cdmx/archivador/internal/store"
	"github.com/clima-cdmx/archivador/pkg/util/logger"
)

// migrationsPath is where the embedded migration files live, relative to the
// command package that embeds them.
const migrationsPath = "resources/migrations"

// RunApplication sets up and runs the archive application using uber-fx.
// It blocks until the run finishes; the process exit code reflects the run
// outcome (0 on success, 1 on failure).
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig, migrationsFS embed.FS) {
	app := fx.New(
		fx.Supply(
			embeddedConfig,
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(migrationsFS, fx.ResultTags(`name:"migrationsFS"`)),
			fx.Annotate(
				appCtx,
				fx.As(new(context.Context)),
				fx.ResultTags(`name:"appCtx"`),
			),
		),

		logger.Module,
		config.Module,
		metrics.Module,
		store.Module,
		local.Module,

		reader.Module,
		processor.Module,
		writer.Module,
		Module,

		fx.Invoke(startRun),
	)

	// fx.App.Run exits the process with the exit code passed to
	// Shutdowner.Shutdown once the run has finished.
	app.Run()
}

// RunParams defines the dependencies for startRun.
type RunParams struct {
	fx.In

	Lc            fx.Lifecycle
	Shutdowner    fx.Shutdowner
	Runner        *pipeline.Runner[entity.RawObservation, entity.Observation]
	Cfg           *config.Config
	StoreProvider *store.Provider
	MigrationsFS  embed.FS        `name:"migrationsFS"`
	AppCtx        context.Context `name:"appCtx"`
}

// startRun registers the lifecycle hook that executes the archive run and
// requests shutdown with the matching exit code when it finishes.
func startRun(p RunParams) {
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				exitCode := 0
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered during run: %v", r)
						exitCode = 1
					}
					if err := p.Shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()

				if err := migrateIfNeeded(p.Cfg, p.StoreProvider, p.MigrationsFS); err != nil {
					logger.Errorf("Migration failed: %v", err)
					exitCode = 1
					return
				}

				summary, err := p.Runner.Run(p.AppCtx)
				if err != nil {
					logger.Errorf("Run failed: %v", err)
					exitCode = 1
					return
				}
				logger.Infof("Run %s completed: %d rows in %s.", summary.RunID, summary.ItemsWritten, summary.Duration.Round(0))
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := p.StoreProvider.CloseAll(); err != nil {
				logger.Warnf("Failed to close database connections: %v", err)
			}
			logger.Infof("Application is shutting down.")
			return nil
		},
	})
}

// migrateIfNeeded applies the embedded schema migrations when the database
// sink is enabled.
func migrateIfNeeded(cfg *config.Config, provider *store.Provider, migrationsFS embed.FS) error {
	dbExport := cfg.Archivador.Export.Database
	if !dbExport.Enabled {
		return nil
	}
	conn, err := provider.GetConnection(dbExport.ConnectionRef)
	if err != nil {
		return err
	}
	return store.NewMigrator(conn).Up(migrationsFS, migrationsPath)
}
