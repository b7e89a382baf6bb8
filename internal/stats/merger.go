package stats

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"webstats/internal/reports"
)

// ResolveURLID looks up or creates the website_url row for a URL within a
// website's namespace. Repeated calls with the same URL return the same id.
func ResolveURLID(tx *gorm.DB, websiteID uint, url string) (uint, error) {
	var websiteURL WebsiteURL
	err := tx.Where("website_id = ? AND url = ?", websiteID, url).First(&websiteURL).Error
	if err == nil {
		return websiteURL.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("failed to look up website url: %w", err)
	}

	websiteURL = WebsiteURL{
		WebsiteID: websiteID,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.Create(&websiteURL).Error; err != nil {
		return 0, fmt.Errorf("failed to create website url: %w", err)
	}
	return websiteURL.ID, nil
}

// MergeStats additively upserts one record into the monthly bucket for
// (url, server, year, month). Must run inside the same transaction as the
// ResolveURLID call that produced urlID.
func MergeStats(tx *gorm.DB, urlID, serverID uint, year, month int, rec reports.Record) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO website_url_stats (website_url_id, server_id, year, month, hits, entry_count, exit_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (website_url_id, server_id, year, month) DO UPDATE SET
			hits = website_url_stats.hits + ?,
			entry_count = website_url_stats.entry_count + ?,
			exit_count = website_url_stats.exit_count + ?,
			updated_at = ?
	`
	return tx.Exec(query,
		urlID, serverID, year, month,
		rec.Pages, rec.Entry, rec.Exit, now, now,
		rec.Pages, rec.Entry, rec.Exit, now).Error
}
