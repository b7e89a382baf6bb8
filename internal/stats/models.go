// Package stats owns the aggregated URL statistics: lazy URL registration,
// additive monthly merges, the per-file idempotency gate, and forced resets.
package stats

import "time"

// WebsiteURL is a URL path scoped to one website, created on first encounter
// during ingestion and removed only by the orphan sweep.
type WebsiteURL struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	WebsiteID uint   `gorm:"uniqueIndex:idx_website_url;not null"`
	URL       string `gorm:"uniqueIndex:idx_website_url;not null"`
	CreatedAt time.Time
}

// TableName keeps the original schema name.
func (WebsiteURL) TableName() string { return "website_url" }

// URLStat is the monthly aggregate bucket for one URL on one server. Counters
// only ever grow by additive merge; wholesale replacement happens exclusively
// through forced deletion.
type URLStat struct {
	ID           uint `gorm:"primaryKey;autoIncrement"`
	WebsiteURLID uint `gorm:"uniqueIndex:idx_url_stat_bucket;not null"`
	ServerID     uint `gorm:"uniqueIndex:idx_url_stat_bucket;not null"`
	Year         int  `gorm:"uniqueIndex:idx_url_stat_bucket;not null"`
	Month        int  `gorm:"uniqueIndex:idx_url_stat_bucket;not null"`
	Hits         int  `gorm:"not null;default:0"`
	EntryCount   int  `gorm:"not null;default:0"`
	ExitCount    int  `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName keeps the original schema name.
func (URLStat) TableName() string { return "website_url_stats" }

// FileRecord is the idempotency fingerprint for one report file on one
// server: the file's modification time as last seen, at second granularity.
type FileRecord struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Filename     string `gorm:"uniqueIndex:idx_file_server;not null"`
	ServerID     uint   `gorm:"uniqueIndex:idx_file_server;not null"`
	LastModified int64  `gorm:"not null"` // unix seconds
	ProcessedAt  time.Time
}

// TableName keeps the original schema name.
func (FileRecord) TableName() string { return "file_tracking" }
