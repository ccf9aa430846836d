package tui

import (
	"strings"
	"time"
	"unicode/utf8"
)

const dayFormat = "2006-01-02"

// formatDay renders a timetable day heading like "dilluns 02/03".
func formatDay(day string) string {
	t, err := time.Parse(dayFormat, day)
	if err != nil {
		return day
	}
	return catalanWeekday(t.Weekday()) + " " + t.Format("02/01")
}

func catalanWeekday(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "dilluns"
	case time.Tuesday:
		return "dimarts"
	case time.Wednesday:
		return "dimecres"
	case time.Thursday:
		return "dijous"
	case time.Friday:
		return "divendres"
	case time.Saturday:
		return "dissabte"
	default:
		return "diumenge"
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if
// needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// truncateToHeight cuts a multi-line string to at most h lines.
func truncateToHeight(s string, h int) string {
	if h <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= h {
		return s
	}
	return strings.Join(lines[:h], "\n")
}

// timeRange renders "09:00 – 10:00" from start/end hour strings.
func timeRange(start, end string) string {
	if start == "" && end == "" {
		return ""
	}
	return start + " – " + end
}
