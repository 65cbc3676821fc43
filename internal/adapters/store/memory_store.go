package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/english-buddy/internal/core"
)

// MemoryStore is an in-memory implementation of the CorrectionStore
// interface, useful for tests and ephemeral runs
type MemoryStore struct {
	mu          sync.RWMutex
	nextID      int64
	corrections []core.Correction
	daily       map[string]core.DailyStats
	logger      *zap.Logger
	now         func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		daily:  make(map[string]core.DailyStats),
		logger: logger,
		now:    time.Now,
	}
}

// RecordCorrection stores a correction and bumps the daily counters
func (s *MemoryStore) RecordCorrection(ctx context.Context, c *core.Correction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	recordedAt := s.now()

	stored := core.Correction{
		ID:               s.nextID,
		Timestamp:        recordedAt,
		OriginalText:     c.OriginalText,
		UserText:         c.UserText,
		BetterExpression: c.BetterExpression,
		Summary:          c.Summary,
	}
	for _, f := range c.Findings {
		f.Category = core.NormalizeCategory(string(f.Category))
		stored.Findings = append(stored.Findings, f)
	}
	s.corrections = append(s.corrections, stored)

	date := recordedAt.Format(dateLayout)
	stats := s.daily[date]
	stats.Date = date
	stats.TotalCorrections++
	for _, f := range stored.Findings {
		switch f.Category {
		case core.CategorySpelling:
			stats.SpellingCount++
		case core.CategoryGrammar:
			stats.GrammarCount++
		case core.CategoryStyle:
			stats.StyleCount++
		case core.CategoryVocabulary:
			stats.VocabularyCount++
		}
	}
	s.daily[date] = stats

	c.ID = stored.ID
	c.Timestamp = recordedAt
	return stored.ID, nil
}

// DailyStats returns the counters for a date ("" means today)
func (s *MemoryStore) DailyStats(ctx context.Context, date string) (*core.DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if date == "" {
		date = s.now().Format(dateLayout)
	}

	stats, ok := s.daily[date]
	if !ok {
		return &core.DailyStats{Date: date}, nil
	}
	return &stats, nil
}

// DailyCorrections returns the corrections recorded on a date, newest first
func (s *MemoryStore) DailyCorrections(ctx context.Context, date string) ([]core.Correction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if date == "" {
		date = s.now().Format(dateLayout)
	}

	var matched []core.Correction
	for _, c := range s.corrections {
		if c.Timestamp.Format(dateLayout) == date {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].ID > matched[j].ID
	})

	return matched, nil
}

// WeeklyStats aggregates daily counters over a Monday-anchored week
func (s *MemoryStore) WeeklyStats(ctx context.Context, weeksBack int) (*core.WeeklyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, end := weekWindow(s.now(), weeksBack)
	stats := &core.WeeklyStats{
		WeekStart: start.Format(dateLayout),
		WeekEnd:   end.Format(dateLayout),
	}

	for date, day := range s.daily {
		if date < stats.WeekStart || date > stats.WeekEnd {
			continue
		}
		stats.DaysActive++
		stats.TotalCorrections += day.TotalCorrections
		stats.SpellingCount += day.SpellingCount
		stats.GrammarCount += day.GrammarCount
		stats.StyleCount += day.StyleCount
		stats.VocabularyCount += day.VocabularyCount
	}

	return stats, nil
}

// TopErrors returns the most repeated mistakes over the trailing days
func (s *MemoryStore) TopErrors(ctx context.Context, limit, days int) ([]core.TopError, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := s.now().AddDate(0, 0, -days).Format(dateLayout)

	type pair struct{ original, correction string }
	grouped := make(map[pair]*core.TopError)
	for _, c := range s.corrections {
		if c.Timestamp.Format(dateLayout) < since {
			continue
		}
		for _, f := range c.Findings {
			key := pair{f.Original, f.Correction}
			te, ok := grouped[key]
			if !ok {
				te = &core.TopError{Original: f.Original, Correction: f.Correction, Category: f.Category}
				grouped[key] = te
			}
			te.Count++
			if string(f.Category) > string(te.Category) {
				te.Category = f.Category
			}
		}
	}

	top := make([]core.TopError, 0, len(grouped))
	for _, te := range grouped {
		top = append(top, *te)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Original < top[j].Original
	})
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}

	return top, nil
}

// AllTimeStats aggregates daily counters over the whole store
func (s *MemoryStore) AllTimeStats(ctx context.Context) (*core.AllTimeStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &core.AllTimeStats{}
	for _, day := range s.daily {
		stats.DaysActive++
		stats.TotalCorrections += day.TotalCorrections
		stats.SpellingCount += day.SpellingCount
		stats.GrammarCount += day.GrammarCount
		stats.StyleCount += day.StyleCount
		stats.VocabularyCount += day.VocabularyCount
	}

	return stats, nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
