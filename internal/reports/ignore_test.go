package reports_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webstats/internal/reports"
)

func TestLoadIgnoreList(t *testing.T) {
	t.Run("Loads one prefix per line, skipping blanks", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ignore_urls.txt")
		require.NoError(t, os.WriteFile(path, []byte("ignored/\n\nSpecial:\n  \nadmin/\n"), 0o644))

		list, err := reports.LoadIgnoreList(path)
		require.NoError(t, err)

		assert.Equal(t, reports.IgnoreList{"ignored/", "Special:", "admin/"}, list)
	})

	t.Run("Missing file yields an empty list", func(t *testing.T) {
		list, err := reports.LoadIgnoreList(filepath.Join(t.TempDir(), "does-not-exist.txt"))
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestIgnoreListMatch(t *testing.T) {
	list := reports.IgnoreList{"ignored/", "Special:"}

	assert.True(t, list.Match(""))
	assert.True(t, list.Match("/"))
	assert.True(t, list.Match("ignored/page"))
	assert.True(t, list.Match("Special:RecentChanges"))
	assert.False(t, list.Match("kept/page"))

	// An empty list still drops empty and root URLs
	var empty reports.IgnoreList
	assert.True(t, empty.Match(""))
	assert.True(t, empty.Match("/"))
	assert.False(t, empty.Match("anything"))
}
