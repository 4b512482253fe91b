package reporting

import (
	"strings"
	"time"
)

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02T15:04:05",
	"2006/01/02T15:04",
	"2006/01/02",
}

// ParseTimestamp turns a loosely formatted spreadsheet timestamp into an
// instant. Dates may use a space instead of the "T" separator. Timestamps
// without a zone are read in loc. Empty or unparsable input returns false,
// and callers must leave such records out of any date-bounded aggregation.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	str := strings.TrimSpace(value)
	if str == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	str = strings.Replace(str, " ", "T", 1)

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, str, loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// MonthKey formats the calendar month of t in loc, e.g. "2024-05".
func MonthKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01")
}
