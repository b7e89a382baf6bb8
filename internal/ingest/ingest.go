// Package ingest sequences report ingestion: idempotency check, parse, merge,
// and fingerprint tracking, one file at a time.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"webstats/internal/config"
	"webstats/internal/reports"
	"webstats/internal/stats"
	"webstats/internal/websites"
)

// Options are the per-run filters. Force bypasses the idempotency gate and
// triggers scoped deletion before reprocessing.
type Options struct {
	Server  string // substring filter on report directories
	File    string // restrict to one filename
	Website string // restrict to one website name
	Force   bool
}

// Result summarizes one ingestion run.
type Result struct {
	Processed int
	Skipped   int
	Failed    int
}

// Ingester drives the per-file ingestion pipeline. All fields are fixed at
// construction; a single Ingester can serve repeated runs.
type Ingester struct {
	DBManager cartridge.DBManager
	Logger    *slog.Logger
	Locations []config.ServerLocation
	Parser    *reports.FilenameParser
	Decode    reports.DecodeOptions
}

// New creates an Ingester with explicit configuration; nothing here reads
// process-global state.
func New(dbManager cartridge.DBManager, logger *slog.Logger, locations []config.ServerLocation, parser *reports.FilenameParser, decode reports.DecodeOptions) *Ingester {
	return &Ingester{
		DBManager: dbManager,
		Logger:    logger,
		Locations: locations,
		Parser:    parser,
		Decode:    decode,
	}
}

// Run executes one ingestion pass over the configured locations. Errors in a
// single file are logged and counted but never abort the rest of the run;
// only run-level failures (unknown website filter, no matching location,
// malformed forced filename) return an error.
func (in *Ingester) Run(ctx context.Context, opts Options) (*Result, error) {
	locations, err := config.FilterLocations(in.Locations, opts.Server)
	if err != nil {
		return nil, err
	}

	db := in.DBManager.GetConnection()

	if opts.Website != "" {
		if _, err := websites.GetWebsiteOrNotFound(db, opts.Website); err != nil {
			return nil, err
		}
	}

	if opts.Force {
		if err := in.applyForcedResets(db, opts, locations); err != nil {
			return nil, err
		}
	}

	result := &Result{}
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if opts.File != "" {
			in.runSingleFile(loc, opts, result)
			continue
		}
		in.runDirectory(ctx, loc, opts, result)
	}

	in.Logger.Info("Ingestion run complete",
		slog.Int("processed", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))
	return result, nil
}

// applyForcedResets deletes previously aggregated data in each requested
// scope before reprocessing. Scopes are independent and combinable; the
// global wipe runs only when force is given with no other filter.
func (in *Ingester) applyForcedResets(db *gorm.DB, opts Options, locations []config.ServerLocation) error {
	if opts.Website != "" {
		websiteID, err := websites.GetWebsiteOrNotFound(db, opts.Website)
		if err != nil {
			return err
		}
		err = sqlite.PerformWrite(in.Logger, db, func(tx *gorm.DB) error {
			return stats.ResetWebsite(tx, websiteID)
		})
		if err != nil {
			return fmt.Errorf("forced reset for website %s failed: %w", opts.Website, err)
		}
		in.Logger.Info("Forced reset: deleted stats for website", slog.String("website", opts.Website))
	}

	if opts.Server != "" {
		seen := make(map[uint]bool)
		for _, loc := range locations {
			if seen[loc.ServerID] {
				continue
			}
			seen[loc.ServerID] = true
			serverID := loc.ServerID
			err := sqlite.PerformWrite(in.Logger, db, func(tx *gorm.DB) error {
				return stats.ResetServer(tx, serverID)
			})
			if err != nil {
				return fmt.Errorf("forced reset for server %d failed: %w", serverID, err)
			}
			in.Logger.Info("Forced reset: deleted stats for server", slog.Uint64("server_id", uint64(serverID)))
		}
	}

	if opts.File != "" {
		name, err := in.Parser.Parse(opts.File)
		if err != nil {
			return err
		}
		websiteID, err := websites.GetWebsiteOrNotFound(db, name.Website)
		if err != nil {
			return err
		}
		err = sqlite.PerformWrite(in.Logger, db, func(tx *gorm.DB) error {
			return stats.ResetMonth(tx, websiteID, name.Year, name.Month)
		})
		if err != nil {
			return fmt.Errorf("forced reset for file %s failed: %w", opts.File, err)
		}
		in.Logger.Info("Forced reset: deleted stats for month",
			slog.String("website", name.Website),
			slog.Int("year", name.Year),
			slog.Int("month", name.Month))
	}

	if opts.Website == "" && opts.Server == "" && opts.File == "" {
		err := sqlite.PerformWrite(in.Logger, db, func(tx *gorm.DB) error {
			return stats.ResetAll(tx)
		})
		if err != nil {
			return fmt.Errorf("global forced reset failed: %w", err)
		}
		in.Logger.Info("Forced reset: deleted all stats and urls")
	}

	return nil
}

func (in *Ingester) runSingleFile(loc config.ServerLocation, opts Options, result *Result) {
	path := filepath.Join(loc.Directory, opts.File)
	if _, err := os.Stat(path); err != nil {
		in.Logger.Info("File not found in directory",
			slog.String("file", opts.File),
			slog.String("directory", loc.Directory))
		return
	}
	in.ingestFile(path, loc.ServerID, opts.Force, result)
}

func (in *Ingester) runDirectory(ctx context.Context, loc config.ServerLocation, opts Options, result *Result) {
	entries, err := os.ReadDir(loc.Directory)
	if err != nil {
		// An unreadable directory aborts that location only.
		in.Logger.Error("Failed to read report directory",
			slog.String("directory", loc.Directory),
			slog.Any("error", err))
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() || !in.Parser.IsReportFile(entry.Name()) {
			continue
		}
		if opts.Website != "" {
			name, err := in.Parser.Parse(entry.Name())
			if err != nil || name.Website != opts.Website {
				continue
			}
		}
		in.ingestFile(filepath.Join(loc.Directory, entry.Name()), loc.ServerID, opts.Force, result)
	}
}

// ingestFile runs the per-file pipeline: check state, parse, merge, track.
// All merges plus the fingerprint update commit in one write transaction, so
// a mid-file failure leaves no partial aggregation.
func (in *Ingester) ingestFile(path string, serverID uint, force bool, result *Result) {
	filename := filepath.Base(path)
	db := in.DBManager.GetConnection()

	fi, err := os.Stat(path)
	if err != nil {
		in.Logger.Error("Failed to stat report file", slog.String("file", filename), slog.Any("error", err))
		result.Failed++
		return
	}
	modTime := fi.ModTime().Truncate(time.Second)

	skip, err := stats.ShouldSkip(db, filename, serverID, modTime, force)
	if err != nil {
		in.Logger.Error("Failed to check file state", slog.String("file", filename), slog.Any("error", err))
		result.Failed++
		return
	}
	if skip {
		in.Logger.Info("File already processed", slog.String("file", filename))
		result.Skipped++
		return
	}

	name, err := in.Parser.Parse(filename)
	if err != nil {
		in.Logger.Error("Unrecognized report filename", slog.String("file", filename), slog.Any("error", err))
		result.Failed++
		return
	}

	decoded, err := in.parseReport(path)
	if err != nil {
		in.Logger.Error("Failed to parse report", slog.String("file", filename), slog.Any("error", err))
		result.Failed++
		return
	}

	err = sqlite.PerformWrite(in.Logger, db, func(tx *gorm.DB) error {
		websiteID, err := websites.GetWebsiteOrNotFound(tx, name.Website)
		if err != nil {
			return err
		}
		for _, rec := range decoded.Records {
			urlID, err := stats.ResolveURLID(tx, websiteID, rec.URL)
			if err != nil {
				return err
			}
			if err := stats.MergeStats(tx, urlID, serverID, name.Year, name.Month, rec); err != nil {
				return err
			}
		}
		return stats.RecordSuccess(tx, filename, serverID, modTime)
	})
	if err != nil {
		var notFound *websites.WebsiteNotFoundError
		if errors.As(err, &notFound) {
			in.Logger.Error("Website not registered, skipping file",
				slog.String("file", filename),
				slog.String("website", name.Website))
		} else {
			in.Logger.Error("Failed to merge report", slog.String("file", filename), slog.Any("error", err))
		}
		result.Failed++
		return
	}

	in.Logger.Info("Processed report file",
		slog.String("file", filename),
		slog.String("website", name.Website),
		slog.Int("records", len(decoded.Records)),
		slog.Int("skipped_lines", decoded.Skipped),
		slog.Int("ignored_urls", decoded.Ignored))
	result.Processed++
}

// parseReport reads the offset index and decodes the sider section.
func (in *Ingester) parseReport(path string) (*reports.DecodeResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	offsets, err := reports.ReadOffsetIndex(f)
	if err != nil {
		return nil, err
	}
	offset, ok := offsets[reports.SiderSection]
	if !ok {
		return nil, &reports.SectionNotFoundError{Section: reports.SiderSection}
	}

	return reports.DecodeSiderSection(f, offset, in.Decode)
}
