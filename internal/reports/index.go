// Package reports parses AWStats summary report files: the offset index in
// the file header, the per-URL sider section, and the report filename itself.
package reports

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Section markers inside a report file.
const (
	mapStartMarker   = "BEGIN_MAP"
	mapEndMarker     = "END_MAP"
	siderStartMarker = "BEGIN_SIDER"
	siderEndMarker   = "END_SIDER"

	// SiderSection is the index entry pointing at the per-URL visit records.
	SiderSection = "POS_SIDER"

	sectionPrefix = "POS_"
)

// SectionNotFoundError is returned when a required section is absent from a
// report's offset index.
type SectionNotFoundError struct {
	Section string
}

func (e *SectionNotFoundError) Error() string {
	return fmt.Sprintf("section %s not found in report index", e.Section)
}

// ReadOffsetIndex scans the header region of a report and returns the mapping
// from section name to byte offset. The region runs until END_MAP; the
// BEGIN_MAP line and any line that is not a two-token POS_ entry are skipped.
// This is a tolerant scan: malformed index lines are never an error.
func ReadOffsetIndex(r io.Reader) (map[string]int64, error) {
	offsets := make(map[string]int64)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, mapStartMarker) {
			continue
		}
		if strings.HasPrefix(line, mapEndMarker) {
			break
		}

		parts := strings.Fields(line)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], sectionPrefix) {
			continue
		}
		offset, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		offsets[parts[0]] = offset
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan report index: %w", err)
	}

	return offsets, nil
}
