package delivery

import (
	"fmt"
	"time"
)

// FormatTimestamp renders a timestamp the way the conversation list
// does: time of day for today, "Yesterday", the weekday within a week,
// the date for anything older.
func FormatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	lt, ln := t.Local(), now.Local()
	day := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, lt.Location())
	today := time.Date(ln.Year(), ln.Month(), ln.Day(), 0, 0, 0, 0, ln.Location())
	switch diff := int(today.Sub(day).Hours() / 24); {
	case diff <= 0:
		return lt.Format("15:04")
	case diff == 1:
		return "Yesterday"
	case diff < 7:
		return lt.Format("Monday")
	default:
		return lt.Format("Jan 2, 2006")
	}
}

// RelativeTime renders "just now", "5 minutes ago", and so on, for the
// last-seen line in the chat header.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	seconds := int(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	months := days / 30
	years := months / 12

	switch {
	case seconds < 5:
		return "just now"
	case seconds < 60:
		return plural(seconds, "second")
	case minutes < 60:
		return plural(minutes, "minute")
	case hours < 24:
		return plural(hours, "hour")
	case days < 30:
		return plural(days, "day")
	case months < 12:
		return plural(months, "month")
	default:
		return plural(years, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
