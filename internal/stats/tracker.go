package stats

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ShouldSkip reports whether a file was already ingested at this exact
// modification time. Sub-second precision is discarded on both sides to avoid
// platform timestamp jitter. A forced run never skips.
func ShouldSkip(db *gorm.DB, filename string, serverID uint, modTime time.Time, force bool) (bool, error) {
	if force {
		return false, nil
	}

	var record FileRecord
	err := db.Where("filename = ? AND server_id = ?", filename, serverID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up file tracking record: %w", err)
	}

	return record.LastModified == modTime.Unix(), nil
}

// RecordSuccess upserts the fingerprint for a successfully ingested file,
// stamping the processing time.
func RecordSuccess(tx *gorm.DB, filename string, serverID uint, modTime time.Time) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO file_tracking (filename, server_id, last_modified, processed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (filename, server_id) DO UPDATE SET
			last_modified = ?,
			processed_at = ?
	`
	return tx.Exec(query,
		filename, serverID, modTime.Unix(), now,
		modTime.Unix(), now).Error
}
