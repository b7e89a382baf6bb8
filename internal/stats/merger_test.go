package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webstats/internal/reports"
	"webstats/internal/stats"
	"webstats/internal/testsupport"
)

func TestResolveURLID(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	website := testsupport.CreateTestWebsite(db, "example.com")
	other := testsupport.CreateTestWebsite(db, "other.org")

	t.Run("Creates on first encounter, stable afterwards", func(t *testing.T) {
		first, err := stats.ResolveURLID(db, website.ID, "Some Page")
		require.NoError(t, err)
		require.NotZero(t, first)

		second, err := stats.ResolveURLID(db, website.ID, "Some Page")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Same URL under another website gets its own id", func(t *testing.T) {
		mine, err := stats.ResolveURLID(db, website.ID, "shared-path")
		require.NoError(t, err)
		theirs, err := stats.ResolveURLID(db, other.ID, "shared-path")
		require.NoError(t, err)

		assert.NotEqual(t, mine, theirs)
	})
}

func TestMergeStats(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	website := testsupport.CreateTestWebsite(db, "example.com")

	urlID, err := stats.ResolveURLID(db, website.ID, "index.html")
	require.NoError(t, err)

	rec := reports.Record{URL: "index.html", Pages: 100, Bandwidth: 5000, Entry: 10, Exit: 20}

	t.Run("First merge inserts the bucket", func(t *testing.T) {
		require.NoError(t, stats.MergeStats(db, urlID, 1, 2024, 3, rec))

		var stat stats.URLStat
		require.NoError(t, db.Where("website_url_id = ? AND server_id = ?", urlID, 1).First(&stat).Error)
		assert.Equal(t, 100, stat.Hits)
		assert.Equal(t, 10, stat.EntryCount)
		assert.Equal(t, 20, stat.ExitCount)
	})

	t.Run("Second merge adds counters", func(t *testing.T) {
		require.NoError(t, stats.MergeStats(db, urlID, 1, 2024, 3,
			reports.Record{URL: "index.html", Pages: 50, Bandwidth: 1000, Entry: 5, Exit: 2}))

		var stat stats.URLStat
		require.NoError(t, db.Where("website_url_id = ? AND server_id = ?", urlID, 1).First(&stat).Error)
		assert.Equal(t, 150, stat.Hits)
		assert.Equal(t, 15, stat.EntryCount)
		assert.Equal(t, 22, stat.ExitCount)
	})

	t.Run("Different server or month gets a separate bucket", func(t *testing.T) {
		require.NoError(t, stats.MergeStats(db, urlID, 2, 2024, 3, rec))
		require.NoError(t, stats.MergeStats(db, urlID, 1, 2024, 4, rec))

		var count int64
		db.Model(&stats.URLStat{}).Where("website_url_id = ?", urlID).Count(&count)
		assert.Equal(t, int64(3), count)
	})

	t.Run("Bandwidth is not persisted", func(t *testing.T) {
		cols, err := db.Migrator().ColumnTypes(&stats.URLStat{})
		require.NoError(t, err)
		for _, col := range cols {
			assert.NotEqual(t, "bandwidth", col.Name())
		}
	})
}
