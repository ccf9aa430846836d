package tui

import (
	"errors"
	"testing"
	"time"
)

var errTest = errors.New("boom")

func TestFormatDay(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2026-03-02", "dilluns 02/03"},
		{"2026-03-07", "dissabte 07/03"},
		{"2026-03-08", "diumenge 08/03"},
		{"not-a-date", "not-a-date"},
	}
	for _, tc := range tests {
		if got := formatDay(tc.day); got != tc.want {
			t.Errorf("formatDay(%q) = %q, want %q", tc.day, got, tc.want)
		}
	}
}

func TestCatalanWeekdayCoversWeek(t *testing.T) {
	seen := map[string]bool{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := catalanWeekday(d)
		if name == "" {
			t.Errorf("empty weekday name for %v", d)
		}
		if seen[name] {
			t.Errorf("duplicate weekday name %q", name)
		}
		seen[name] = true
	}
}

func TestTruncStr(t *testing.T) {
	if got := truncStr("curt", 10); got != "curt" {
		t.Errorf("truncStr short = %q", got)
	}
	if got := truncStr("una cadena força llarga", 10); got != "una caden…" {
		t.Errorf("truncStr long = %q", got)
	}
}

func TestTruncateToHeight(t *testing.T) {
	s := "a\nb\nc\nd"
	if got := truncateToHeight(s, 2); got != "a\nb" {
		t.Errorf("truncateToHeight = %q", got)
	}
	if got := truncateToHeight(s, 10); got != s {
		t.Errorf("truncateToHeight full = %q", got)
	}
	if got := truncateToHeight(s, 0); got != "" {
		t.Errorf("truncateToHeight zero = %q", got)
	}
}

func TestTimeRange(t *testing.T) {
	if got := timeRange("09:00", "10:00"); got != "09:00 – 10:00" {
		t.Errorf("timeRange = %q", got)
	}
	if got := timeRange("", ""); got != "" {
		t.Errorf("timeRange empty = %q", got)
	}
}
