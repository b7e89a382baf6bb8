package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webstats/internal/stats"
	"webstats/internal/testsupport"
)

func TestShouldSkip(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	modTime := time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)
	require.NoError(t, stats.RecordSuccess(db, "awstats032024.example.com.txt", 1, modTime))

	t.Run("Unknown file is not skipped", func(t *testing.T) {
		skip, err := stats.ShouldSkip(db, "awstats042024.example.com.txt", 1, modTime, false)
		require.NoError(t, err)
		assert.False(t, skip)
	})

	t.Run("Matching fingerprint skips", func(t *testing.T) {
		skip, err := stats.ShouldSkip(db, "awstats032024.example.com.txt", 1, modTime, false)
		require.NoError(t, err)
		assert.True(t, skip)
	})

	t.Run("Sub-second jitter is ignored", func(t *testing.T) {
		skip, err := stats.ShouldSkip(db, "awstats032024.example.com.txt", 1, modTime.Add(800*time.Millisecond), false)
		require.NoError(t, err)
		assert.True(t, skip)
	})

	t.Run("Changed modification time reprocesses", func(t *testing.T) {
		skip, err := stats.ShouldSkip(db, "awstats032024.example.com.txt", 1, modTime.Add(2*time.Second), false)
		require.NoError(t, err)
		assert.False(t, skip)
	})

	t.Run("Same filename on another server is independent", func(t *testing.T) {
		skip, err := stats.ShouldSkip(db, "awstats032024.example.com.txt", 2, modTime, false)
		require.NoError(t, err)
		assert.False(t, skip)
	})

	t.Run("Force never skips", func(t *testing.T) {
		skip, err := stats.ShouldSkip(db, "awstats032024.example.com.txt", 1, modTime, true)
		require.NoError(t, err)
		assert.False(t, skip)
	})
}

func TestRecordSuccess(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	first := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, stats.RecordSuccess(db, "awstats032024.example.com.txt", 1, first))

	// Re-ingesting the same file replaces the fingerprint instead of adding a row
	second := first.Add(48 * time.Hour)
	require.NoError(t, stats.RecordSuccess(db, "awstats032024.example.com.txt", 1, second))

	var records []stats.FileRecord
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, second.Unix(), records[0].LastModified)
}
