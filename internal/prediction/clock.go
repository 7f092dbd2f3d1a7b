package prediction

import (
	"strings"
	"time"
)

const (
	scheduleLayout    = "15:04"
	displayLayout     = "03:04 PM"
	currentTimeLayout = "03:04 PM, 02-01-2006"
)

// ParseClock parses a 24-hour HH:MM schedule cell. Blank, "nan" and any other
// malformed value report ok=false.
func ParseClock(s string) (time.Time, bool) {
	t, err := time.Parse(scheduleLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatClock renders a clock time as "03:04 PM".
func FormatClock(t time.Time) string {
	return t.Format(displayLayout)
}

// FormatCurrentTime renders the reference time as "03:04 PM, 02-01-2006".
func FormatCurrentTime(t time.Time) string {
	return t.Format(currentTimeLayout)
}

// minutesBetween is the clock difference in minutes. No day rollover is
// applied: a trip crossing midnight yields a negative value.
func minutesBetween(from, to time.Time) float64 {
	return to.Sub(from).Minutes()
}

// referenceTime resolves the caller's "current time". An HH:MM override is
// applied to today's date in loc; anything malformed falls back to now.
func referenceTime(now time.Time, override string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	if override == "" {
		return now
	}
	t, ok := ParseClock(override)
	if !ok {
		return now
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}
