package reports

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// IgnoreList holds URL prefixes that are dropped during decoding. It is
// loaded once at startup and read-only afterwards.
type IgnoreList []string

// LoadIgnoreList reads one URL prefix per line from the given file, skipping
// blank lines. A missing file yields an empty list, not an error.
func LoadIgnoreList(path string) (IgnoreList, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ignore list %s: %w", path, err)
	}
	defer f.Close()

	var patterns IgnoreList
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ignore list %s: %w", path, err)
	}

	return patterns, nil
}

// Match reports whether a normalized URL should be dropped: empty, the bare
// root, or starting with any configured prefix.
func (l IgnoreList) Match(url string) bool {
	if url == "" || url == "/" {
		return true
	}
	for _, prefix := range l {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}
