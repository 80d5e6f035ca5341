package helpers

import (
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCountUS renders an integer with US thousand separators
func FormatCountUS(count int64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d", count)
}

// timestampLayouts covers the formats SQLite hands back for TIMESTAMP columns
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// ParseDBTime parses a SQLite timestamp string
func ParseDBTime(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RelativeTime renders a SQLite timestamp as "3 days ago", falling back
// to the raw value when it does not parse
func RelativeTime(value string) string {
	t, ok := ParseDBTime(value)
	if !ok {
		return value
	}
	return humanize.Time(t)
}

// FormatDate renders a SQLite timestamp as a short date
func FormatDate(value string) string {
	t, ok := ParseDBTime(value)
	if !ok {
		return value
	}
	return t.Format("Jan 2, 2006")
}
