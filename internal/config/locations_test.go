package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webstats/internal/config"
)

func writeLocationsFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "servers.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServerLocations(t *testing.T) {
	t.Run("Loads directory to server id entries", func(t *testing.T) {
		path := writeLocationsFile(t, `
- directory: /var/lib/awstats
  server_id: 1
- directory: /home/private/server_stats/frankfurt
  server_id: 2
- directory: /home/private/server_stats/singapore
  server_id: 3
`)

		locations, err := config.LoadServerLocations(path)
		require.NoError(t, err)
		require.Len(t, locations, 3)
		assert.Equal(t, config.ServerLocation{Directory: "/var/lib/awstats", ServerID: 1}, locations[0])
	})

	t.Run("Rejects entries missing directory or server id", func(t *testing.T) {
		path := writeLocationsFile(t, "- directory: /var/lib/awstats\n")

		_, err := config.LoadServerLocations(path)
		assert.Error(t, err)
	})

	t.Run("Missing file is an error", func(t *testing.T) {
		_, err := config.LoadServerLocations(filepath.Join(t.TempDir(), "absent.yml"))
		assert.Error(t, err)
	})
}

func TestFilterLocations(t *testing.T) {
	locations := []config.ServerLocation{
		{Directory: "/var/lib/awstats", ServerID: 1},
		{Directory: "/home/private/server_stats/frankfurt", ServerID: 2},
		{Directory: "/home/private/server_stats/singapore", ServerID: 3},
	}

	t.Run("Empty filter returns everything", func(t *testing.T) {
		matched, err := config.FilterLocations(locations, "")
		require.NoError(t, err)
		assert.Len(t, matched, 3)
	})

	t.Run("Substring filter selects matching directories", func(t *testing.T) {
		matched, err := config.FilterLocations(locations, "frankfurt")
		require.NoError(t, err)
		require.Len(t, matched, 1)
		assert.Equal(t, uint(2), matched[0].ServerID)
	})

	t.Run("No match yields a typed error", func(t *testing.T) {
		_, err := config.FilterLocations(locations, "atlantis")
		require.Error(t, err)

		var locErr *config.ServerLocationNotFoundError
		assert.ErrorAs(t, err, &locErr)
	})
}
