package stats

import (
	"fmt"

	"gorm.io/gorm"
)

// Forced-reset scopes. Every stats deletion is followed by a sweep removing
// website_url rows left without any referencing stats, so a URL row exists
// iff at least one aggregate still references it.

// ResetWebsite deletes all stats and orphaned URLs under one website.
func ResetWebsite(tx *gorm.DB, websiteID uint) error {
	err := tx.Exec(`
		DELETE FROM website_url_stats
		WHERE website_url_id IN (SELECT id FROM website_url WHERE website_id = ?)
	`, websiteID).Error
	if err != nil {
		return fmt.Errorf("failed to delete stats for website %d: %w", websiteID, err)
	}
	return sweepWebsiteURLs(tx, websiteID)
}

// ResetServer deletes all stats recorded for one server, then sweeps orphaned
// URLs across all websites.
func ResetServer(tx *gorm.DB, serverID uint) error {
	if err := tx.Exec(`DELETE FROM website_url_stats WHERE server_id = ?`, serverID).Error; err != nil {
		return fmt.Errorf("failed to delete stats for server %d: %w", serverID, err)
	}
	return sweepAllURLs(tx)
}

// ResetMonth deletes one website's stats for a specific year and month, the
// scope of a forced single-file run.
func ResetMonth(tx *gorm.DB, websiteID uint, year, month int) error {
	err := tx.Exec(`
		DELETE FROM website_url_stats
		WHERE year = ? AND month = ?
		  AND website_url_id IN (SELECT id FROM website_url WHERE website_id = ?)
	`, year, month, websiteID).Error
	if err != nil {
		return fmt.Errorf("failed to delete stats for website %d %d-%02d: %w", websiteID, year, month, err)
	}
	return sweepWebsiteURLs(tx, websiteID)
}

// ResetAll deletes every stat and every URL row.
func ResetAll(tx *gorm.DB) error {
	if err := tx.Exec(`DELETE FROM website_url_stats`).Error; err != nil {
		return fmt.Errorf("failed to delete all stats: %w", err)
	}
	if err := tx.Exec(`DELETE FROM website_url`).Error; err != nil {
		return fmt.Errorf("failed to delete all urls: %w", err)
	}
	return nil
}

func sweepWebsiteURLs(tx *gorm.DB, websiteID uint) error {
	err := tx.Exec(`
		DELETE FROM website_url
		WHERE website_id = ?
		  AND id NOT IN (SELECT website_url_id FROM website_url_stats)
	`, websiteID).Error
	if err != nil {
		return fmt.Errorf("failed to sweep orphaned urls for website %d: %w", websiteID, err)
	}
	return nil
}

func sweepAllURLs(tx *gorm.DB) error {
	err := tx.Exec(`
		DELETE FROM website_url
		WHERE id NOT IN (SELECT website_url_id FROM website_url_stats)
	`).Error
	if err != nil {
		return fmt.Errorf("failed to sweep orphaned urls: %w", err)
	}
	return nil
}
