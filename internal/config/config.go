// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Database types
const (
	SQLiteDatabase = "sqlite"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// File paths
	DatabasePath string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseType         string `mapstructure:"dbtype"`
	DatabaseMaxOpenConns int    `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int    `mapstructure:"dbmaxidleconns"`

	// Report ingestion settings
	LocationsFile   string `mapstructure:"locationsfile"`   // YAML map of report directories to server ids
	IgnoreURLsFile  string `mapstructure:"ignoreurlsfile"`  // one URL prefix per line
	ReportMarker    string `mapstructure:"reportmarker"`    // substring identifying report files, e.g. "awstats"
	ReportExtension string `mapstructure:"reportextension"` // report file extension, e.g. ".txt"
	URLStripPrefix  string `mapstructure:"urlstripprefix"`  // path prefix removed during URL normalization
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		// Set defaults
		v.SetDefault("appname", "webstats")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("storagepath", "storage")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbtype", SQLiteDatabase)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("locationsfile", "servers.yml")
		v.SetDefault("ignoreurlsfile", "ignore_urls.txt")
		v.SetDefault("reportmarker", "awstats")
		v.SetDefault("reportextension", ".txt")
		v.SetDefault("urlstripprefix", "wiki/")

		// Bind environment variables
		v.BindEnv("appname", "WEBSTATS_APP_NAME")
		v.BindEnv("environment", "WEBSTATS_ENV")
		v.BindEnv("loglevel", "WEBSTATS_LOG_LEVEL")
		v.BindEnv("storagepath", "WEBSTATS_STORAGE_PATH")
		v.BindEnv("logsdir", "WEBSTATS_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "WEBSTATS_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "WEBSTATS_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "WEBSTATS_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbtype", "WEBSTATS_DB_TYPE")
		v.BindEnv("dbmaxopenconns", "WEBSTATS_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "WEBSTATS_DB_MAX_IDLE_CONNS")
		v.BindEnv("locationsfile", "WEBSTATS_LOCATIONS_FILE")
		v.BindEnv("ignoreurlsfile", "WEBSTATS_IGNORE_URLS_FILE")
		v.BindEnv("reportmarker", "WEBSTATS_REPORT_MARKER")
		v.BindEnv("reportextension", "WEBSTATS_REPORT_EXTENSION")
		v.BindEnv("urlstripprefix", "WEBSTATS_URL_STRIP_PREFIX")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		// Validate
		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		// Set derived values
		cfg.DatabaseName = cfg.GetDatabasePath()
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validDBTypes := map[string]bool{
		SQLiteDatabase: true,
	}
	if !validDBTypes[c.DatabaseType] {
		return fmt.Errorf("invalid database type: %s", c.DatabaseType)
	}

	if c.ReportMarker == "" {
		return fmt.Errorf("report marker cannot be empty")
	}
	if c.ReportExtension == "" {
		return fmt.Errorf("report extension cannot be empty")
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns the HTTP server port (implements cartridge.Config interface).
// webstats runs no HTTP server; cartridge.NewLogger never calls this.
func (c *Config) GetPort() string {
	return ""
}

// GetPublicDirectory returns the path to public/static assets (implements cartridge.Config interface).
// webstats runs no HTTP server; cartridge.NewLogger never calls this.
func (c *Config) GetPublicDirectory() string {
	return ""
}

// GetAssetsPrefix returns the URL prefix for static assets (implements cartridge.Config interface).
// webstats runs no HTTP server; cartridge.NewLogger never calls this.
func (c *Config) GetAssetsPrefix() string {
	return ""
}

// GetAppName returns the application name (implements cartridge.FactoryConfig interface).
func (c *Config) GetAppName() string {
	return c.AppName
}

// DatabaseDSN returns the database connection string (implements cartridge.FactoryConfig interface).
func (c *Config) DatabaseDSN() string {
	return c.GetDatabasePath()
}

// GetMaxOpenConns returns the MaxOpenConns value for the connection pool.
// If explicitly set via env var, uses that value. Otherwise 1: the ingester
// processes files strictly sequentially, one write transaction at a time.
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}
	return 1
}

// GetMaxIdleConns returns the MaxIdleConns value for the connection pool.
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}
	return 1
}

// GetLogLevel returns the log level as a string (implements cartridge.LogConfigProvider).
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory (implements cartridge.LogConfigProvider).
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetLogMaxSizeMB returns the max log file size in MB (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxSizeMB() int {
	return c.LogsMaxSizeInMb
}

// GetLogMaxBackups returns the max number of log backups (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxBackups() int {
	return c.LogsMaxBackups
}

// GetLogMaxAgeDays returns the max age in days for log files (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxAgeDays() int {
	return c.LogsMaxAgeInDays
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
