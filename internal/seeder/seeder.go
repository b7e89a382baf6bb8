// Package seeder populates the database and filesystem with development data:
// registered websites and sample report files the ingester can consume.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"webstats/internal/websites"
)

// Seeder handles the data seeding process.
type Seeder struct {
	DBManager cartridge.DBManager
	Logger    *slog.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager: dbManager,
		Logger:    logger,
	}
}

// Run registers the given websites and, when dir is non-empty, writes one
// sample report file per website for the current month.
func (s *Seeder) Run(ctx context.Context, names []string, dir string) error {
	start := time.Now()
	db := s.DBManager.GetConnection()

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.seedWebsite(db, name); err != nil {
			return err
		}

		if dir != "" {
			if err := s.writeSampleReport(dir, name); err != nil {
				return err
			}
		}
	}

	s.Logger.Info("Seeding complete",
		slog.Int("websites", len(names)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Seeder) seedWebsite(db *gorm.DB, name string) error {
	if _, err := websites.GetWebsiteByName(db, name); err == nil {
		s.Logger.Info("Website already registered", slog.String("website", name))
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check website %s: %w", name, err)
	}

	err := sqlite.PerformWrite(s.Logger, db, func(tx *gorm.DB) error {
		return websites.CreateWebsite(tx, &websites.Website{Name: name})
	})
	if err != nil {
		return fmt.Errorf("failed to create website %s: %w", name, err)
	}

	s.Logger.Info("Registered website", slog.String("website", name))
	return nil
}

// writeSampleReport emits a minimal AWStats-style report with an offset index
// and a sider section of random per-URL counters.
func (s *Seeder) writeSampleReport(dir, website string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}

	now := time.Now().UTC()
	filename := fmt.Sprintf("awstats%02d%d.%s.txt", int(now.Month()), now.Year(), website)

	paths := []string{"index.html", "about", "wiki/Main%20Page", "blog/hello-world", "contact"}
	var lines []string
	for _, p := range paths {
		lines = append(lines, fmt.Sprintf("/%s %d %d %d %d",
			p, 10+rand.IntN(500), 1000+rand.IntN(100000), rand.IntN(50), rand.IntN(50)))
	}

	content := BuildReport(lines)
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write sample report %s: %w", path, err)
	}

	s.Logger.Info("Wrote sample report", slog.String("file", filename))
	return nil
}

// BuildReport assembles a report file around the given sider record lines,
// computing the byte offset of the sider section for the header index. The
// offset is part of the header text, so its width feeds back into the offset;
// rendering repeats until the value is stable.
func BuildReport(siderLines []string) string {
	sider := "BEGIN_SIDER " + fmt.Sprint(len(siderLines)) + "\n" +
		strings.Join(siderLines, "\n") + "\nEND_SIDER\n"

	offset := 0
	for {
		header := fmt.Sprintf("AWSTATS DATA FILE 7.8\nBEGIN_MAP 1\nPOS_SIDER %d\nEND_MAP\n", offset)
		if len(header) == offset {
			return header + sider
		}
		offset = len(header)
	}
}
