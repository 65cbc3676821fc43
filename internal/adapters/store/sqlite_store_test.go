package store

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/english-buddy/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func fixedTime(day string, hour, minute int) time.Time {
	d, err := time.Parse(dateLayout, day)
	if err != nil {
		panic(err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func TestRecordCorrectionBumpsDailyCounters(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return fixedTime("2026-08-26", 10, 0) }
	ctx := context.Background()

	id, err := s.RecordCorrection(ctx, &core.Correction{
		OriginalText: "I has a eror in my code",
		UserText:     "I has a eror in my code",
		Summary:      "主谓一致",
		Findings: []core.Finding{
			{Original: "eror", Correction: "error", Explanation: "typo", Category: core.CategorySpelling},
			{Original: "I has", Correction: "I have", Explanation: "agreement", Category: core.CategoryGrammar},
			{Original: "a error", Correction: "an error", Explanation: "article", Category: core.CategoryGrammar},
		},
	})
	if err != nil {
		t.Fatalf("RecordCorrection: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero correction id")
	}

	stats, err := s.DailyStats(ctx, "2026-08-26")
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if stats.TotalCorrections != 1 {
		t.Errorf("TotalCorrections = %d, want 1", stats.TotalCorrections)
	}
	if stats.SpellingCount != 1 || stats.GrammarCount != 2 {
		t.Errorf("counts = spelling %d grammar %d, want 1 and 2", stats.SpellingCount, stats.GrammarCount)
	}
	if stats.StyleCount != 0 || stats.VocabularyCount != 0 {
		t.Errorf("untouched counters moved: style %d vocabulary %d", stats.StyleCount, stats.VocabularyCount)
	}
}

func TestRecordCorrectionAccumulatesAcrossCalls(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return fixedTime("2026-08-26", 10, 0) }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.RecordCorrection(ctx, &core.Correction{
			OriginalText: "some text",
			UserText:     "some text",
			Findings:     []core.Finding{{Original: "a", Correction: "b", Category: core.CategoryStyle}},
		})
		if err != nil {
			t.Fatalf("RecordCorrection: %v", err)
		}
	}

	stats, err := s.DailyStats(ctx, "2026-08-26")
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if stats.TotalCorrections != 2 {
		t.Errorf("TotalCorrections = %d, want 2", stats.TotalCorrections)
	}
	if stats.StyleCount != 2 {
		t.Errorf("StyleCount = %d, want 2", stats.StyleCount)
	}
}

func TestRecordCorrectionNormalizesUnknownCategory(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return fixedTime("2026-08-26", 10, 0) }
	ctx := context.Background()

	_, err := s.RecordCorrection(ctx, &core.Correction{
		OriginalText: "text",
		UserText:     "text",
		Findings:     []core.Finding{{Original: "x", Correction: "y", Category: core.Category("punctuation")}},
	})
	if err != nil {
		t.Fatalf("RecordCorrection: %v", err)
	}

	stats, err := s.DailyStats(ctx, "2026-08-26")
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if stats.GrammarCount != 1 {
		t.Errorf("GrammarCount = %d, want 1 (unknown category folds into grammar)", stats.GrammarCount)
	}

	corrections, err := s.DailyCorrections(ctx, "2026-08-26")
	if err != nil {
		t.Fatalf("DailyCorrections: %v", err)
	}
	if len(corrections) != 1 || len(corrections[0].Findings) != 1 {
		t.Fatalf("unexpected corrections shape: %+v", corrections)
	}
	if corrections[0].Findings[0].Category != core.CategoryGrammar {
		t.Errorf("stored category = %q, want grammar", corrections[0].Findings[0].Category)
	}
}

func TestDailyStatsEmptyDateIsAllZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.DailyStats(ctx, "1999-01-01")
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if stats.TotalCorrections != 0 || stats.SpellingCount != 0 || stats.GrammarCount != 0 ||
		stats.StyleCount != 0 || stats.VocabularyCount != 0 {
		t.Errorf("expected all-zero stats, got %+v", stats)
	}
	if stats.Date != "1999-01-01" {
		t.Errorf("Date = %q, want the requested date", stats.Date)
	}
}

func TestDailyCorrectionsNewestFirstWithFindings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.now = func() time.Time { return fixedTime("2026-08-26", 9, 0) }
	if _, err := s.RecordCorrection(ctx, &core.Correction{
		OriginalText: "first text",
		UserText:     "first text",
		Findings:     []core.Finding{{Original: "teh", Correction: "the", Category: core.CategorySpelling}},
	}); err != nil {
		t.Fatalf("RecordCorrection: %v", err)
	}

	s.now = func() time.Time { return fixedTime("2026-08-26", 15, 30) }
	if _, err := s.RecordCorrection(ctx, &core.Correction{
		OriginalText:     "second text",
		UserText:         "second text",
		BetterExpression: strPtr("a more natural phrasing"),
	}); err != nil {
		t.Fatalf("RecordCorrection: %v", err)
	}

	// A different day must not leak in
	s.now = func() time.Time { return fixedTime("2026-08-27", 8, 0) }
	if _, err := s.RecordCorrection(ctx, &core.Correction{
		OriginalText: "next day",
		UserText:     "next day",
		Findings:     []core.Finding{{Original: "a", Correction: "b", Category: core.CategoryGrammar}},
	}); err != nil {
		t.Fatalf("RecordCorrection: %v", err)
	}

	corrections, err := s.DailyCorrections(ctx, "2026-08-26")
	if err != nil {
		t.Fatalf("DailyCorrections: %v", err)
	}
	if len(corrections) != 2 {
		t.Fatalf("got %d corrections, want 2", len(corrections))
	}
	if corrections[0].OriginalText != "second text" {
		t.Errorf("first result = %q, want the newest correction", corrections[0].OriginalText)
	}
	if corrections[0].BetterExpression == nil || *corrections[0].BetterExpression != "a more natural phrasing" {
		t.Errorf("better expression did not round-trip: %+v", corrections[0].BetterExpression)
	}
	if corrections[1].BetterExpression != nil {
		t.Errorf("nil better expression did not round-trip: %+v", corrections[1].BetterExpression)
	}
	if len(corrections[1].Findings) != 1 || corrections[1].Findings[0].Correction != "the" {
		t.Errorf("findings did not round-trip: %+v", corrections[1].Findings)
	}
}

func TestWeeklyStatsMondayAnchoredWindows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// 2026-08-26 is a Wednesday; its week runs 08-24 through 08-30
	record := func(day string) {
		s.now = func() time.Time { return fixedTime(day, 12, 0) }
		if _, err := s.RecordCorrection(ctx, &core.Correction{
			OriginalText: "text",
			UserText:     "text",
			Findings:     []core.Finding{{Original: "a", Correction: "b", Category: core.CategoryGrammar}},
		}); err != nil {
			t.Fatalf("RecordCorrection(%s): %v", day, err)
		}
	}
	record("2026-08-24") // Monday, current week
	record("2026-08-26") // Wednesday, current week
	record("2026-08-23") // Sunday, previous week
	record("2026-08-17") // Monday, previous week

	s.now = func() time.Time { return fixedTime("2026-08-26", 18, 0) }

	current, err := s.WeeklyStats(ctx, 0)
	if err != nil {
		t.Fatalf("WeeklyStats(0): %v", err)
	}
	if current.WeekStart != "2026-08-24" || current.WeekEnd != "2026-08-30" {
		t.Errorf("current window = %s..%s, want 2026-08-24..2026-08-30", current.WeekStart, current.WeekEnd)
	}
	if current.TotalCorrections != 2 || current.DaysActive != 2 {
		t.Errorf("current week totals = %d over %d days, want 2 over 2", current.TotalCorrections, current.DaysActive)
	}

	previous, err := s.WeeklyStats(ctx, 1)
	if err != nil {
		t.Fatalf("WeeklyStats(1): %v", err)
	}
	if previous.WeekStart != "2026-08-17" || previous.WeekEnd != "2026-08-23" {
		t.Errorf("previous window = %s..%s, want 2026-08-17..2026-08-23", previous.WeekStart, previous.WeekEnd)
	}
	if previous.TotalCorrections != 2 || previous.GrammarCount != 2 {
		t.Errorf("previous week totals = %+v, want 2 corrections and 2 grammar", previous)
	}

	// Empty window stays zero
	empty, err := s.WeeklyStats(ctx, 5)
	if err != nil {
		t.Fatalf("WeeklyStats(5): %v", err)
	}
	if empty.TotalCorrections != 0 || empty.DaysActive != 0 {
		t.Errorf("empty week should be zero, got %+v", empty)
	}
}

func TestTopErrorsRanksByFrequency(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.now = func() time.Time { return fixedTime("2026-08-26", 10, 0) }

	record := func(findings ...core.Finding) {
		if _, err := s.RecordCorrection(ctx, &core.Correction{
			OriginalText: "text",
			UserText:     "text",
			Findings:     findings,
		}); err != nil {
			t.Fatalf("RecordCorrection: %v", err)
		}
	}
	repeated := core.Finding{Original: "I has", Correction: "I have", Category: core.CategoryGrammar}
	record(repeated)
	record(repeated)
	record(repeated)
	record(core.Finding{Original: "teh", Correction: "the", Category: core.CategorySpelling})

	top, err := s.TopErrors(ctx, 10, 30)
	if err != nil {
		t.Fatalf("TopErrors: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("got %d top errors, want 2", len(top))
	}
	if top[0].Original != "I has" || top[0].Count != 3 {
		t.Errorf("top[0] = %+v, want the tripled mistake", top[0])
	}
	if top[1].Original != "teh" || top[1].Count != 1 {
		t.Errorf("top[1] = %+v, want the single typo", top[1])
	}

	limited, err := s.TopErrors(ctx, 1, 30)
	if err != nil {
		t.Fatalf("TopErrors limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit not applied: got %d entries", len(limited))
	}
}

func TestTopErrorsHonorsWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.now = func() time.Time { return fixedTime("2026-07-01", 10, 0) }
	if _, err := s.RecordCorrection(ctx, &core.Correction{
		OriginalText: "old",
		UserText:     "old",
		Findings:     []core.Finding{{Original: "olde", Correction: "old", Category: core.CategorySpelling}},
	}); err != nil {
		t.Fatalf("RecordCorrection: %v", err)
	}

	s.now = func() time.Time { return fixedTime("2026-08-26", 10, 0) }
	top, err := s.TopErrors(ctx, 10, 7)
	if err != nil {
		t.Fatalf("TopErrors: %v", err)
	}
	if len(top) != 0 {
		t.Errorf("expected no errors inside the 7-day window, got %+v", top)
	}
}

func TestAllTimeStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.AllTimeStats(ctx)
	if err != nil {
		t.Fatalf("AllTimeStats: %v", err)
	}
	if empty.DaysActive != 0 || empty.TotalCorrections != 0 {
		t.Errorf("empty store should report zeros, got %+v", empty)
	}

	for _, day := range []string{"2026-08-20", "2026-08-20", "2026-08-26"} {
		s.now = func() time.Time { return fixedTime(day, 10, 0) }
		if _, err := s.RecordCorrection(ctx, &core.Correction{
			OriginalText: "text",
			UserText:     "text",
			Findings:     []core.Finding{{Original: "a", Correction: "b", Category: core.CategoryVocabulary}},
		}); err != nil {
			t.Fatalf("RecordCorrection: %v", err)
		}
	}

	stats, err := s.AllTimeStats(ctx)
	if err != nil {
		t.Fatalf("AllTimeStats: %v", err)
	}
	if stats.DaysActive != 2 {
		t.Errorf("DaysActive = %d, want 2", stats.DaysActive)
	}
	if stats.TotalCorrections != 3 || stats.VocabularyCount != 3 {
		t.Errorf("totals = %+v, want 3 corrections and 3 vocabulary", stats)
	}
}

func TestDefaultDateIsToday(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.now = func() time.Time { return fixedTime("2026-08-26", 10, 0) }

	if _, err := s.RecordCorrection(ctx, &core.Correction{
		OriginalText: "text",
		UserText:     "text",
		Findings:     []core.Finding{{Original: "a", Correction: "b", Category: core.CategoryGrammar}},
	}); err != nil {
		t.Fatalf("RecordCorrection: %v", err)
	}

	stats, err := s.DailyStats(ctx, "")
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if stats.Date != "2026-08-26" || stats.TotalCorrections != 1 {
		t.Errorf("empty date should resolve to today, got %+v", stats)
	}

	corrections, err := s.DailyCorrections(ctx, "")
	if err != nil {
		t.Fatalf("DailyCorrections: %v", err)
	}
	if len(corrections) != 1 {
		t.Errorf("got %d corrections for today, want 1", len(corrections))
	}
}
