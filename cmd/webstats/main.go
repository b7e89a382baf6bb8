// main.go - Report ingestion control tool for webstats
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"webstats/internal"
	"webstats/internal/ingest"
	"webstats/internal/seeder"
	"webstats/internal/websites"
)

const (
	defaultShutdownTimeout = 30 * time.Second
)

// Command defines the interface for all command implementations
type Command interface {
	// Name returns the command name
	Name() string
	// Description returns the command description
	Description() string
	// Execute runs the command with the given app and args
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

// The set of available commands
var commands = []Command{
	&RunCommand{},
	&MigrateCommand{},
	&SeedCommand{},
	&StatusCommand{},
	&HelpCommand{},
}

func main() {
	flag.Parse()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating cleanup...", sig)
		cancel()
	}()

	cmdName, args := parseArgs()

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	app, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: Cleanup error: %v", err)
		}
	}()

	if err := cmd.Execute(ctx, app, args); err != nil {
		log.Fatalf("Command failed: %v", err)
	}

	log.Printf("Command %s completed successfully", cmd.Name())
}

// RunCommand executes one ingestion pass over the configured report locations
type RunCommand struct{}

// Name returns the command name
func (c *RunCommand) Name() string {
	return "run"
}

// Description returns the command description
func (c *RunCommand) Description() string {
	return "Ingests report files into the statistics database (default command)"
}

// Execute implements the run command
func (c *RunCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	server := fs.String("server", "", "restrict to report locations matching this server name")
	file := fs.String("file", "", "restrict to one specific report filename")
	website := fs.String("website", "", "restrict to one website name")
	force := fs.Bool("force", false, "delete previously aggregated data in scope and reprocess")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ingester, err := app.NewIngester()
	if err != nil {
		return err
	}

	result, err := ingester.Run(ctx, ingest.Options{
		Server:  *server,
		File:    *file,
		Website: *website,
		Force:   *force,
	})
	if err != nil {
		return err
	}

	log.Printf("Run finished: %d processed, %d skipped, %d failed",
		result.Processed, result.Skipped, result.Failed)
	return nil
}

// MigrateCommand runs database migrations
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string        { return "migrate" }
func (c *MigrateCommand) Description() string { return "Runs database migrations" }

func (c *MigrateCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	log.Println("Running database migrations...")

	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations completed successfully")
	return nil
}

// SeedCommand registers websites and writes sample report files
type SeedCommand struct{}

func (c *SeedCommand) Name() string        { return "seed" }
func (c *SeedCommand) Description() string { return "Seeds websites and sample report files for development" }

func (c *SeedCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	names := fs.String("websites", "example.com", "comma-separated website names to register")
	dir := fs.String("dir", "", "directory to write sample report files into (skipped if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	se := seeder.NewSeeder(app.DBManager, slog.Default())
	return se.Run(ctx, strings.Split(*names, ","), *dir)
}

// StatusCommand implements a command to check the system status
type StatusCommand struct{}

// Name returns the command name
func (c *StatusCommand) Name() string {
	return "status"
}

// Description returns the command description
func (c *StatusCommand) Description() string {
	return "Shows the current system status"
}

// Execute implements the status command
func (c *StatusCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	db := app.DBManager.GetConnection()

	sites, err := websites.GetAllWebsites(db)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	var urlCount, statCount, fileCount int64
	db.Table("website_url").Count(&urlCount)
	db.Table("website_url_stats").Count(&statCount)
	db.Table("file_tracking").Count(&fileCount)

	log.Println("System Status:")
	log.Println("- Database: Connected")
	log.Printf("- Websites: %d", len(sites))
	log.Printf("- Tracked URLs: %d", urlCount)
	log.Printf("- Monthly stat buckets: %d", statCount)
	log.Printf("- Ingested files: %d", fileCount)

	return nil
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

// Name returns the command name
func (c *HelpCommand) Name() string {
	return "help"
}

// Description returns the command description
func (c *HelpCommand) Description() string {
	return "Shows usage information"
}

// Execute implements the help command
func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fmt.Println("Usage: webstats [command] [args...]")
	fmt.Println("Available commands:")

	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}

	return nil
}

// Helper functions

// parseArgs parses the command name and arguments. With no arguments, or when
// the first argument is a flag, the run command is assumed.
func parseArgs() (string, []string) {
	args := os.Args[1:]
	if len(args) == 0 {
		return "run", []string{}
	}
	if strings.HasPrefix(args[0], "-") {
		return "run", args
	}
	return args[0], args[1:]
}

// findCommand finds a command by name
func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

// showUsageAndExit shows usage information and exits
func showUsageAndExit() {
	fmt.Println("Usage: webstats [command] [args...]")
	fmt.Println("Available commands:")

	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}

	os.Exit(1)
}
