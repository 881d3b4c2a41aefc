package delivery

import (
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 30, 0, 0, time.Local)
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"today shows time", time.Date(2026, 3, 14, 9, 5, 0, 0, time.Local), "09:05"},
		{"yesterday", time.Date(2026, 3, 13, 23, 0, 0, 0, time.Local), "Yesterday"},
		{"within a week shows weekday", time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local), "Tuesday"},
		{"older shows date", time.Date(2026, 1, 2, 8, 0, 0, 0, time.Local), "Jan 2, 2026"},
		{"zero is empty", time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.at, now); got != tt.want {
				t.Errorf("FormatTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"just now", now.Add(-2 * time.Second), "just now"},
		{"seconds", now.Add(-30 * time.Second), "30 seconds ago"},
		{"one minute", now.Add(-time.Minute), "1 minute ago"},
		{"minutes", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"hours", now.Add(-3 * time.Hour), "3 hours ago"},
		{"days", now.Add(-49 * time.Hour), "2 days ago"},
		{"months", now.Add(-24 * time.Hour * 40), "1 month ago"},
		{"years", now.Add(-24 * time.Hour * 400), "1 year ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeTime(tt.at, now); got != tt.want {
				t.Errorf("RelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}
