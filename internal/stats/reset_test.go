package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"webstats/internal/reports"
	"webstats/internal/stats"
	"webstats/internal/testsupport"
)

// seedStats registers one URL per entry and merges a single record into the
// given bucket.
func seedStats(t *testing.T, db *gorm.DB, websiteID uint, url string, serverID uint, year, month int) uint {
	t.Helper()

	urlID, err := stats.ResolveURLID(db, websiteID, url)
	require.NoError(t, err)
	require.NoError(t, stats.MergeStats(db, urlID, serverID, year, month,
		reports.Record{URL: url, Pages: 10, Entry: 1, Exit: 1}))
	return urlID
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}

func TestResetWebsite(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	target := testsupport.CreateTestWebsite(db, "target.com")
	other := testsupport.CreateTestWebsite(db, "other.org")

	seedStats(t, db, target.ID, "a", 1, 2024, 3)
	seedStats(t, db, target.ID, "b", 2, 2024, 4)
	seedStats(t, db, other.ID, "a", 1, 2024, 3)

	require.NoError(t, stats.ResetWebsite(db, target.ID))

	// Target website fully cleared, including orphaned URLs
	assert.Zero(t, countRows(t, db, &stats.WebsiteURL{}, "website_id = ?", target.ID))

	// Other website untouched
	assert.Equal(t, int64(1), countRows(t, db, &stats.WebsiteURL{}, "website_id = ?", other.ID))
	assert.Equal(t, int64(1), countRows(t, db, &stats.URLStat{}, "1 = 1"))
}

func TestResetServer(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestWebsite(db, "example.com")

	// "solo" exists only on server 1; "both" also has stats on server 2
	soloID := seedStats(t, db, site.ID, "solo", 1, 2024, 3)
	bothID := seedStats(t, db, site.ID, "both", 1, 2024, 3)
	require.NoError(t, stats.MergeStats(db, bothID, 2, 2024, 3, reports.Record{Pages: 5}))

	require.NoError(t, stats.ResetServer(db, 1))

	assert.Zero(t, countRows(t, db, &stats.URLStat{}, "server_id = ?", 1))
	assert.Equal(t, int64(1), countRows(t, db, &stats.URLStat{}, "server_id = ?", 2))

	// Orphan sweep removed the URL with no remaining stats, kept the other
	assert.Zero(t, countRows(t, db, &stats.WebsiteURL{}, "id = ?", soloID))
	assert.Equal(t, int64(1), countRows(t, db, &stats.WebsiteURL{}, "id = ?", bothID))
}

func TestResetMonth(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestWebsite(db, "example.com")
	other := testsupport.CreateTestWebsite(db, "other.org")

	seedStats(t, db, site.ID, "march-only", 1, 2024, 3)
	keptID := seedStats(t, db, site.ID, "april", 1, 2024, 4)
	seedStats(t, db, other.ID, "march-only", 1, 2024, 3)

	require.NoError(t, stats.ResetMonth(db, site.ID, 2024, 3))

	// Only the website's March bucket is gone; April survives
	assert.Zero(t, countRows(t, db, &stats.URLStat{}, "month = ? AND website_url_id IN (?)", 3,
		db.Model(&stats.WebsiteURL{}).Select("id").Where("website_id = ?", site.ID)))
	assert.Equal(t, int64(1), countRows(t, db, &stats.URLStat{}, "website_url_id = ?", keptID))
	assert.Equal(t, int64(1), countRows(t, db, &stats.WebsiteURL{}, "website_id = ? AND id = ?", site.ID, keptID))

	// The other website's March stats survive
	assert.Equal(t, int64(1), countRows(t, db, &stats.WebsiteURL{}, "website_id = ?", other.ID))
}

func TestResetAll(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestWebsite(db, "example.com")

	seedStats(t, db, site.ID, "a", 1, 2024, 3)
	seedStats(t, db, site.ID, "b", 2, 2024, 4)

	require.NoError(t, stats.ResetAll(db))

	assert.Zero(t, countRows(t, db, &stats.URLStat{}, "1 = 1"))
	assert.Zero(t, countRows(t, db, &stats.WebsiteURL{}, "1 = 1"))
}

func TestOrphanSweepInvariant(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestWebsite(db, "example.com")

	seedStats(t, db, site.ID, "a", 1, 2024, 3)
	seedStats(t, db, site.ID, "b", 1, 2024, 3)

	require.NoError(t, stats.ResetServer(db, 1))

	// No URL row remains without a referencing stats row
	var orphans int64
	require.NoError(t, db.Raw(`
		SELECT COUNT(*) FROM website_url
		WHERE id NOT IN (SELECT website_url_id FROM website_url_stats)
	`).Scan(&orphans).Error)
	assert.Zero(t, orphans)
}
