package reports

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.elara.ws/pcre"
)

// ReportName is the structured form of a report filename:
// <marker><MM><YYYY>.<website>.<ext>, e.g. "awstats032024.example.com.txt".
type ReportName struct {
	Website string
	Year    int
	Month   int
}

// FilenameError is returned when a filename does not match the report naming
// scheme.
type FilenameError struct {
	Filename string
	Reason   string
}

func (e *FilenameError) Error() string {
	return fmt.Sprintf("invalid report filename %q: %s", e.Filename, e.Reason)
}

// FilenameParser extracts website, year, and month from report filenames. One
// parser serves both the normal ingest path and forced single-file deletion,
// so the two can never derive different months for the same name.
type FilenameParser struct {
	marker    string
	extension string
	re        *pcre.Regexp
}

// NewFilenameParser builds a parser for filenames carrying the given report
// marker and extension.
func NewFilenameParser(marker, extension string) *FilenameParser {
	pattern := fmt.Sprintf(`^%s(\d{2})(\d{4})\.(.+)%s$`,
		regexp.QuoteMeta(marker), regexp.QuoteMeta(extension))
	return &FilenameParser{
		marker:    marker,
		extension: extension,
		re:        pcre.MustCompile(pattern),
	}
}

// IsReportFile reports whether a directory entry looks like a report file and
// is worth attempting to parse.
func (p *FilenameParser) IsReportFile(name string) bool {
	return strings.Contains(name, p.marker) && strings.HasSuffix(name, p.extension)
}

// Parse extracts the website name and month stamp from a report filename.
func (p *FilenameParser) Parse(name string) (*ReportName, error) {
	matches := p.re.FindStringSubmatch(name)
	// pcre returns an empty (non-nil) slice on no match, unlike stdlib regexp.
	if len(matches) == 0 {
		return nil, &FilenameError{Filename: name, Reason: "does not match <marker><MM><YYYY>.<website>.<ext>"}
	}

	month, err := strconv.Atoi(matches[1])
	if err != nil || month < 1 || month > 12 {
		return nil, &FilenameError{Filename: name, Reason: fmt.Sprintf("month %q out of range", matches[1])}
	}
	year, err := strconv.Atoi(matches[2])
	if err != nil {
		return nil, &FilenameError{Filename: name, Reason: fmt.Sprintf("invalid year %q", matches[2])}
	}

	return &ReportName{
		Website: matches[3],
		Year:    year,
		Month:   month,
	}, nil
}
