package core

import (
	"strings"
	"time"
)

// Category classifies an English error
type Category string

const (
	CategorySpelling   Category = "spelling"
	CategoryGrammar    Category = "grammar"
	CategoryStyle      Category = "style"
	CategoryVocabulary Category = "vocabulary"
)

// Categories lists every recognized category in display order
var Categories = []Category{CategorySpelling, CategoryGrammar, CategoryStyle, CategoryVocabulary}

// NormalizeCategory maps an analyzer-reported category onto the known set.
// Anything unrecognized counts as grammar.
func NormalizeCategory(raw string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategorySpelling:
		return CategorySpelling
	case CategoryGrammar:
		return CategoryGrammar
	case CategoryStyle:
		return CategoryStyle
	case CategoryVocabulary:
		return CategoryVocabulary
	default:
		return CategoryGrammar
	}
}

// Finding represents a single English error found in a prompt
type Finding struct {
	Original    string
	Correction  string
	Explanation string
	Category    Category
}

// GrammarAnalysis represents the result of analyzing a prompt
type GrammarAnalysis struct {
	HasErrors        bool
	UserText         string
	Findings         []Finding
	BetterExpression *string
	Summary          string
	Skipped          bool
	AnalyzedAt       time.Time
	ModelUsed        string
}

// Recordable reports whether the analysis carries anything worth persisting
func (a *GrammarAnalysis) Recordable() bool {
	return a.HasErrors || a.BetterExpression != nil
}

// Correction is a recorded analysis of one prompt
type Correction struct {
	ID               int64
	Timestamp        time.Time
	OriginalText     string
	UserText         string
	BetterExpression *string
	Summary          string
	Findings         []Finding
}

// DailyStats holds the per-category counters for one local date
type DailyStats struct {
	Date             string
	TotalCorrections int
	SpellingCount    int
	GrammarCount     int
	StyleCount       int
	VocabularyCount  int
}

// WeeklyStats aggregates daily counters over one Monday-anchored week
type WeeklyStats struct {
	WeekStart        string
	WeekEnd          string
	DaysActive       int
	TotalCorrections int
	SpellingCount    int
	GrammarCount     int
	StyleCount       int
	VocabularyCount  int
}

// AllTimeStats aggregates daily counters over the whole store
type AllTimeStats struct {
	DaysActive       int
	TotalCorrections int
	SpellingCount    int
	GrammarCount     int
	StyleCount       int
	VocabularyCount  int
}

// TopError is a frequently repeated mistake
type TopError struct {
	Original   string
	Correction string
	Category   Category
	Count      int
}

// RetryEntry is a prompt waiting in the retry queue after an analyzer failure
type RetryEntry struct {
	Prompt    string `json:"prompt"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Outcome is the terminal state of one pipeline invocation
type Outcome string

const (
	// OutcomeRejected means the admission filter turned the prompt away
	OutcomeRejected Outcome = "rejected"
	// OutcomeSkipped means the analyzer declined the text
	OutcomeSkipped Outcome = "skipped"
	// OutcomeClean means the analyzer found nothing to report
	OutcomeClean Outcome = "clean"
	// OutcomeRecorded means findings were persisted
	OutcomeRecorded Outcome = "recorded"
	// OutcomeQueued means the analyzer failed and the prompt was queued for retry
	OutcomeQueued Outcome = "queued"
	// OutcomeFailed means persistence failed after a successful analysis
	OutcomeFailed Outcome = "failed"
)
