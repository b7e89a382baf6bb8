// Package internal contains core application functionality
package internal

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/karloscodes/cartridge"

	"webstats/internal/config"
	"webstats/internal/database"
	"webstats/internal/ingest"
	"webstats/internal/reports"
)

// Application bundles the configured components the CLI commands operate on.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.DBManager
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	// Create logger
	logger := cartridge.NewLogger(cfg, nil)

	// Initialize database manager (webstats-specific with migration methods)
	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
	}, nil
}

// NewIngester wires an Ingester from the application's configuration: server
// locations, ignore list, and filename parser are all loaded here, once.
func (a *Application) NewIngester() (*ingest.Ingester, error) {
	locations, err := config.LoadServerLocations(a.Config.LocationsFile)
	if err != nil {
		return nil, err
	}

	ignore, err := reports.LoadIgnoreList(a.Config.IgnoreURLsFile)
	if err != nil {
		return nil, err
	}

	parser := reports.NewFilenameParser(a.Config.ReportMarker, a.Config.ReportExtension)
	decode := reports.DecodeOptions{
		StripPrefix: a.Config.URLStripPrefix,
		Ignore:      ignore,
	}

	return ingest.New(a.DBManager, a.Logger, locations, parser, decode), nil
}

// Shutdown closes the database connection.
func (a *Application) Shutdown(ctx context.Context) error {
	db := a.DBManager.GetConnection()
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying database: %w", err)
	}
	return sqlDB.Close()
}
