package core

import (
	"context"
)

// Analyzer defines the interface for LLM-backed grammar analysis
type Analyzer interface {
	// AnalyzeText checks a prompt for English errors
	AnalyzeText(ctx context.Context, text string) (*GrammarAnalysis, error)
}

// CorrectionStore defines the interface for persisting corrections and stats
type CorrectionStore interface {
	// RecordCorrection stores a correction with its findings and bumps the
	// daily counters, all in one transaction. Returns the new correction id.
	RecordCorrection(ctx context.Context, c *Correction) (int64, error)

	// DailyStats returns the counters for a date ("" means today).
	// Dates with no activity yield all-zero stats.
	DailyStats(ctx context.Context, date string) (*DailyStats, error)

	// DailyCorrections returns the corrections recorded on a date
	// ("" means today), most recent first, findings included.
	DailyCorrections(ctx context.Context, date string) ([]Correction, error)

	// WeeklyStats aggregates counters over a Monday-anchored week,
	// weeksBack weeks before the current one (0 = this week).
	WeeklyStats(ctx context.Context, weeksBack int) (*WeeklyStats, error)

	// TopErrors returns the most repeated mistakes over the trailing days
	TopErrors(ctx context.Context, limit, days int) ([]TopError, error)

	// AllTimeStats aggregates counters over the whole store
	AllTimeStats(ctx context.Context) (*AllTimeStats, error)

	// Close releases the underlying storage
	Close() error
}

// Journal defines the interface for the append-only learning log
type Journal interface {
	// Append writes one analysis block to the current day's log
	Append(originalText string, analysis *GrammarAnalysis) error
}

// RetryQueue defines the interface for the durable analyzer-failure queue
type RetryQueue interface {
	// Enqueue adds a prompt to the queue
	Enqueue(text string) error

	// Load returns all queued entries. A missing or unreadable queue
	// reads as empty, never as an error.
	Load() ([]RetryEntry, error)

	// Replace rewrites the queue to hold exactly these entries
	Replace(entries []RetryEntry) error
}

// Notifier defines the interface for fire-and-forget user notifications
type Notifier interface {
	// Notify shows a message to the user
	Notify(title, message string) error
}
