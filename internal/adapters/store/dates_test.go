package store

import (
	"testing"
	"time"
)

func TestWeekWindow(t *testing.T) {
	tests := []struct {
		name      string
		today     string
		weeksBack int
		wantStart string
		wantEnd   string
	}{
		{"midweek current", "2026-08-26", 0, "2026-08-24", "2026-08-30"},
		{"monday is its own start", "2026-08-24", 0, "2026-08-24", "2026-08-30"},
		{"sunday belongs to the week behind it", "2026-08-30", 0, "2026-08-24", "2026-08-30"},
		{"one week back", "2026-08-26", 1, "2026-08-17", "2026-08-23"},
		{"two weeks back", "2026-08-26", 2, "2026-08-10", "2026-08-16"},
		{"crosses month boundary", "2026-09-02", 1, "2026-08-24", "2026-08-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			today, err := time.Parse(dateLayout, tt.today)
			if err != nil {
				t.Fatalf("parse today: %v", err)
			}
			start, end := weekWindow(today, tt.weeksBack)
			if got := start.Format(dateLayout); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format(dateLayout); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestWeekWindowsDoNotOverlap(t *testing.T) {
	today, _ := time.Parse(dateLayout, "2026-08-26")
	prevStart := ""
	for back := 0; back < 4; back++ {
		start, end := weekWindow(today, back)
		if end.Sub(start) != 6*24*time.Hour {
			t.Errorf("weeksBack=%d: window spans %v, want 6 days", back, end.Sub(start))
		}
		if prevStart != "" {
			if got := end.AddDate(0, 0, 1).Format(dateLayout); got != prevStart {
				t.Errorf("weeksBack=%d: window end+1 = %s, want %s (adjacent windows)", back, got, prevStart)
			}
		}
		prevStart = start.Format(dateLayout)
	}
}
