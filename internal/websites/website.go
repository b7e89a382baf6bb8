package websites

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// WebsiteNotFoundError represents an error when a website is not found
type WebsiteNotFoundError struct {
	Name string
}

func (e *WebsiteNotFoundError) Error() string {
	return fmt.Sprintf("website not found: %s", e.Name)
}

// NewWebsiteNotFoundError creates a new WebsiteNotFoundError
func NewWebsiteNotFoundError(name string) *WebsiteNotFoundError {
	return &WebsiteNotFoundError{Name: name}
}

// Website represents a tracked website. Rows are pre-populated; the ingestion
// pipeline only ever looks them up.
type Website struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"unique;not null" json:"name"` // e.g. "example.com"
	CreatedAt time.Time `json:"created_at"`
}

// GetWebsiteOrNotFound retrieves a website id by exact name match.
// It accepts a transaction to be used as part of a larger transaction process.
func GetWebsiteOrNotFound(tx *gorm.DB, name string) (uint, error) {
	var website Website
	if err := tx.Where("name = ?", name).First(&website).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, NewWebsiteNotFoundError(name)
		}
		return 0, fmt.Errorf("unexpected error querying website: %w", err)
	}
	return website.ID, nil
}

// GetWebsiteByName retrieves a website by its name
func GetWebsiteByName(db *gorm.DB, name string) (*Website, error) {
	var website Website
	if err := db.Where("name = ?", name).First(&website).Error; err != nil {
		return nil, err
	}
	return &website, nil
}

// GetAllWebsites retrieves all websites
func GetAllWebsites(db *gorm.DB) ([]Website, error) {
	var websites []Website
	if err := db.Find(&websites).Error; err != nil {
		return nil, fmt.Errorf("failed to get websites: %w", err)
	}
	return websites, nil
}

// CreateWebsite creates a new website. Used by the seeder and by operators,
// never by the ingestion pipeline.
func CreateWebsite(db *gorm.DB, website *Website) error {
	website.CreatedAt = time.Now().UTC()
	return db.Create(website).Error
}
