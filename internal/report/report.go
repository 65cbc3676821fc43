// Package report renders correction statistics for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mikey/english-buddy/internal/core"
)

// barWidth is the widest bar the category chart draws
const barWidth = 20

type categoryRow struct {
	label string
	count int
}

func categoryRows(spelling, grammar, style, vocabulary int) []categoryRow {
	return []categoryRow{
		{"Spelling", spelling},
		{"Grammar", grammar},
		{"Style", style},
		{"Vocabulary", vocabulary},
	}
}

// Daily writes the date's totals and each recorded correction
func Daily(w io.Writer, stats *core.DailyStats, corrections []core.Correction) {
	fmt.Fprintf(w, "Daily Summary - %s\n", stats.Date)
	fmt.Fprintln(w, strings.Repeat("=", 35))

	if stats.TotalCorrections == 0 {
		fmt.Fprintln(w, "No corrections today. Keep practicing!")
		return
	}

	fmt.Fprintf(w, "Total corrections: %d\n", stats.TotalCorrections)
	for _, row := range categoryRows(stats.SpellingCount, stats.GrammarCount, stats.StyleCount, stats.VocabularyCount) {
		if row.count > 0 {
			fmt.Fprintf(w, "  %-12s%d\n", row.label+":", row.count)
		}
	}

	for _, c := range corrections {
		text := c.UserText
		if text == "" {
			text = c.OriginalText
		}
		fmt.Fprintf(w, "\n[%s] %s\n", c.Timestamp.Format("15:04"), truncate(text, 50))
		for _, f := range c.Findings {
			fmt.Fprintf(w, "  %q → %q (%s [%s])\n", f.Original, f.Correction, f.Explanation, f.Category)
		}
		if c.BetterExpression != nil && *c.BetterExpression != "" {
			fmt.Fprintf(w, "  Better: %s\n", *c.BetterExpression)
		}
		if c.Summary != "" {
			fmt.Fprintf(w, "  %s\n", c.Summary)
		}
	}
}

// Weekly writes the week's totals with a per-category bar chart
func Weekly(w io.Writer, stats *core.WeeklyStats) {
	fmt.Fprintf(w, "Weekly Summary %s to %s\n", stats.WeekStart, stats.WeekEnd)
	fmt.Fprintln(w, strings.Repeat("=", 40))

	if stats.TotalCorrections == 0 {
		fmt.Fprintln(w, "No corrections this week.")
		return
	}

	fmt.Fprintf(w, "This week: %d corrections over %d active day(s)\n\n",
		stats.TotalCorrections, stats.DaysActive)
	barChart(w, categoryRows(stats.SpellingCount, stats.GrammarCount, stats.StyleCount, stats.VocabularyCount))
}

// AllTime writes the whole-store totals and the most repeated mistakes
func AllTime(w io.Writer, stats *core.AllTimeStats, top []core.TopError) {
	fmt.Fprintln(w, "English Learning Statistics")
	fmt.Fprintln(w, strings.Repeat("=", 40))

	if stats.TotalCorrections == 0 {
		fmt.Fprintln(w, "No data yet. Start writing in English to track your progress.")
		return
	}

	fmt.Fprintf(w, "All-time: %d corrections over %d day(s)\n\n",
		stats.TotalCorrections, stats.DaysActive)
	barChart(w, categoryRows(stats.SpellingCount, stats.GrammarCount, stats.StyleCount, stats.VocabularyCount))

	if len(top) > 0 {
		fmt.Fprintln(w, "\nMost common mistakes:")
		for _, e := range top {
			fmt.Fprintf(w, "  %d× %q → %q [%s]\n", e.Count, e.Original, e.Correction, e.Category)
		}
	}
}

// barChart draws one bar per category, scaled so the largest count spans
// barWidth characters
func barChart(w io.Writer, rows []categoryRow) {
	max, total := 0, 0
	for _, r := range rows {
		total += r.count
		if r.count > max {
			max = r.count
		}
	}
	if max == 0 {
		return
	}

	for _, r := range rows {
		bar := strings.Repeat("█", r.count*barWidth/max)
		pct := float64(r.count) / float64(total) * 100
		fmt.Fprintf(w, "  %-12s%s %d (%.0f%%)\n", r.label, bar, r.count, pct)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
