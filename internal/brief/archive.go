package brief

import (
	"path"
	"sort"
	"strings"
	"time"
)

// dateLayout is the ISO layout manifest entries use.
const dateLayout = "2006-01-02"

// ValidDate reports whether d is a calendar date in the YYYY-MM-DD layout.
func ValidDate(d string) bool {
	t, err := time.Parse(dateLayout, d)
	return err == nil && t.Format(dateLayout) == d
}

// ArchivePath derives the archived brief path for date under dir.
func ArchivePath(dir, date string) string {
	return strings.TrimSuffix(dir, "/") + "/brief_" + date + ".json"
}

// ArchiveDate reports the date encoded in an archive path produced by
// ArchivePath, and whether p is a well-formed archive path under dir.
func ArchiveDate(dir, p string) (string, bool) {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(p, prefix)
	if path.Base(name) != name {
		return "", false
	}
	if !strings.HasPrefix(name, "brief_") || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	date := strings.TrimSuffix(strings.TrimPrefix(name, "brief_"), ".json")
	if !ValidDate(date) {
		return "", false
	}
	return date, true
}

// SortDescending returns a copy of dates ordered newest first. ISO dates
// order correctly under plain string comparison.
func SortDescending(dates []string) []string {
	out := make([]string, len(dates))
	copy(out, dates)
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// PastDates returns the archive dates shown in the history selector: the
// manifest sorted newest first without its newest entry, which is the brief
// already shown as latest.
func PastDates(dates []string) []string {
	sorted := SortDescending(dates)
	if len(sorted) == 0 {
		return nil
	}
	return sorted[1:]
}
