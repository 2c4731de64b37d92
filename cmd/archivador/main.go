// Command archivador downloads the hourly historical weather archive for the
// configured point and exports it to the enabled sinks.
package main

import (
	"context"
	"embed"
	"os"
	"os/signal"
	"syscall"

	"github.com/clima-cdmx/archivador/internal/app"
	"github.com/clima-cdmx/archivador/internal/config"
	"github.com/clima-cdmx/archivador/pkg/util/logger"

	// SQL drivers used by golang-migrate.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	// Dialector registrations for the database sink.
	_ "github.com/clima-cdmx/archivador/internal/store/mysql"
	_ "github.com/clima-cdmx/archivador/internal/store/postgres"
	_ "github.com/clima-cdmx/archivador/internal/store/sqlite"
)

//go:embed resources/application.yaml
var embeddedConfig []byte

//go:embed all:resources/migrations
var migrationsFS embed.FS

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("Received signal %v. Cancelling run.", sig)
		cancel()
	}()

	envFilePath := os.Getenv("ARCHIVADOR_ENV_FILE")
	app.RunApplication(ctx, envFilePath, config.EmbeddedConfig(embeddedConfig), migrationsFS)
}
