package models

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses an ISO-8601 date or timestamp. On failure it returns
// the zero time and false; callers sort the zero time as older than any
// valid date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Time returns the parsed publication date, or the zero time when the
// date is malformed.
func (p PostSummary) Time() time.Time {
	t, _ := ParseDate(p.Date)
	return t
}
