package reports

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// Record is one normalized per-URL entry from the sider section. Bandwidth is
// decoded for completeness but not aggregated.
type Record struct {
	URL       string
	Pages     int
	Bandwidth int
	Entry     int
	Exit      int
}

// DecodeOptions configures URL normalization and filtering.
type DecodeOptions struct {
	// StripPrefix is removed from the front of a URL after the leading
	// separator, e.g. "wiki/".
	StripPrefix string
	// Ignore drops URLs matching any of its prefixes.
	Ignore IgnoreList
}

// DecodeResult holds the accepted records plus counts of the lines that were
// dropped, so callers can assert on tolerated input instead of scraping logs.
type DecodeResult struct {
	Records []Record
	// Skipped counts lines inside the section that did not have the
	// expected five-field shape.
	Skipped int
	// Ignored counts well-formed records dropped by URL filtering.
	Ignored int
}

// DecodeSiderSection seeks to the given offset and decodes per-URL records
// until END_SIDER. Comment lines, the BEGIN_SIDER marker, and lines without
// exactly five fields are tolerated and counted as skipped; a non-numeric
// counter field in an otherwise well-formed line is a fatal error for the
// file.
func DecodeSiderSection(rs io.ReadSeeker, offset int64, opts DecodeOptions) (*DecodeResult, error) {
	if _, err := rs.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to sider section at offset %d: %w", offset, err)
	}

	result := &DecodeResult{}

	scanner := bufio.NewScanner(rs)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, siderEndMarker) {
			break
		}
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, siderStartMarker) {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 5 {
			// The report mixes record layouts; only the
			// URL/pages/bandwidth/entry/exit shape is understood.
			result.Skipped++
			continue
		}

		rawURL := normalizeURL(parts[0], opts.StripPrefix)
		if opts.Ignore.Match(rawURL) {
			result.Ignored++
			continue
		}

		counters := make([]int, 4)
		for i, field := range parts[1:] {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("invalid counter field %q in sider record for %s: %w", field, parts[0], err)
			}
			counters[i] = n
		}

		result.Records = append(result.Records, Record{
			URL:       rawURL,
			Pages:     counters[0],
			Bandwidth: counters[1],
			Entry:     counters[2],
			Exit:      counters[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sider section: %w", err)
	}

	return result, nil
}

// normalizeURL applies the normalization pipeline: strip one leading slash,
// strip the configured prefix, percent-decode. An undecodable escape leaves
// the string as-is rather than failing the record.
func normalizeURL(raw, stripPrefix string) string {
	u := strings.TrimPrefix(raw, "/")
	if stripPrefix != "" {
		u = strings.TrimPrefix(u, stripPrefix)
	}
	if decoded, err := url.PathUnescape(u); err == nil {
		u = decoded
	}
	return u
}
