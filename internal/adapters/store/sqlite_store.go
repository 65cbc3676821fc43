package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/english-buddy/internal/core"
)

// SQLiteStore is a SQLite implementation of the CorrectionStore interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS corrections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		original_text TEXT NOT NULL,
		user_text TEXT NOT NULL,
		better_expression TEXT,
		summary TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		correction_id INTEGER NOT NULL REFERENCES corrections(id),
		original TEXT NOT NULL,
		correction TEXT NOT NULL,
		explanation TEXT,
		category TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_stats (
		date TEXT PRIMARY KEY,
		total_corrections INTEGER NOT NULL DEFAULT 0,
		spelling_count INTEGER NOT NULL DEFAULT 0,
		grammar_count INTEGER NOT NULL DEFAULT 0,
		style_count INTEGER NOT NULL DEFAULT 0,
		vocabulary_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_errors_correction_id ON errors(correction_id)`,
}

// NewSQLiteStore opens the correction database, creating the schema on first use
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Hook invocations can overlap; let writers wait instead of failing
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma: %w", err)
		}
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

// RecordCorrection stores a correction, its findings, and the daily counter
// bump in a single transaction
func (s *SQLiteStore) RecordCorrection(ctx context.Context, c *core.Correction) (int64, error) {
	recordedAt := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO corrections (timestamp, original_text, user_text, better_expression, summary)
		VALUES (?, ?, ?, ?, ?)
	`, recordedAt.Format(timestampLayout), c.OriginalText, c.UserText, c.BetterExpression, c.Summary)
	if err != nil {
		return 0, fmt.Errorf("failed to insert correction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read correction id: %w", err)
	}

	counts := make(map[core.Category]int)
	for _, f := range c.Findings {
		category := core.NormalizeCategory(string(f.Category))
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO errors (correction_id, original, correction, explanation, category)
			VALUES (?, ?, ?, ?, ?)
		`, id, f.Original, f.Correction, f.Explanation, string(category)); err != nil {
			return 0, fmt.Errorf("failed to insert error: %w", err)
		}
		counts[category]++
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO daily_stats (date, total_corrections, spelling_count, grammar_count, style_count, vocabulary_count)
		VALUES (?, 1, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_corrections = total_corrections + 1,
			spelling_count = spelling_count + excluded.spelling_count,
			grammar_count = grammar_count + excluded.grammar_count,
			style_count = style_count + excluded.style_count,
			vocabulary_count = vocabulary_count + excluded.vocabulary_count
	`, recordedAt.Format(dateLayout),
		counts[core.CategorySpelling], counts[core.CategoryGrammar],
		counts[core.CategoryStyle], counts[core.CategoryVocabulary]); err != nil {
		return 0, fmt.Errorf("failed to update daily stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit correction: %w", err)
	}

	c.ID = id
	c.Timestamp = recordedAt

	s.logger.Debug("Recorded correction",
		zap.Int64("correction_id", id),
		zap.Int("findings", len(c.Findings)))

	return id, nil
}

// DailyStats returns the counters for a date ("" means today)
func (s *SQLiteStore) DailyStats(ctx context.Context, date string) (*core.DailyStats, error) {
	if date == "" {
		date = s.now().Format(dateLayout)
	}

	stats := &core.DailyStats{Date: date}
	err := s.db.QueryRowContext(ctx, `
		SELECT total_corrections, spelling_count, grammar_count, style_count, vocabulary_count
		FROM daily_stats
		WHERE date = ?
	`, date).Scan(&stats.TotalCorrections, &stats.SpellingCount, &stats.GrammarCount,
		&stats.StyleCount, &stats.VocabularyCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return stats, nil
		}
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}

	return stats, nil
}

// DailyCorrections returns the corrections recorded on a date, newest first
func (s *SQLiteStore) DailyCorrections(ctx context.Context, date string) ([]core.Correction, error) {
	if date == "" {
		date = s.now().Format(dateLayout)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, original_text, user_text, better_expression, summary
		FROM corrections
		WHERE date(timestamp) = ?
		ORDER BY timestamp DESC, id DESC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer rows.Close()

	var corrections []core.Correction
	for rows.Next() {
		var c core.Correction
		var ts string
		var better, summary sql.NullString

		if err := rows.Scan(&c.ID, &ts, &c.OriginalText, &c.UserText, &better, &summary); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}

		parsed, err := time.Parse(timestampLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse correction timestamp: %w", err)
		}
		c.Timestamp = parsed
		if better.Valid {
			v := better.String
			c.BetterExpression = &v
		}
		c.Summary = summary.String

		corrections = append(corrections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corrections: %w", err)
	}

	for i := range corrections {
		findings, err := s.loadFindings(ctx, corrections[i].ID)
		if err != nil {
			return nil, err
		}
		corrections[i].Findings = findings
	}

	return corrections, nil
}

func (s *SQLiteStore) loadFindings(ctx context.Context, correctionID int64) ([]core.Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT original, correction, explanation, category
		FROM errors
		WHERE correction_id = ?
		ORDER BY id
	`, correctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query errors: %w", err)
	}
	defer rows.Close()

	var findings []core.Finding
	for rows.Next() {
		var f core.Finding
		var explanation sql.NullString
		var category string
		if err := rows.Scan(&f.Original, &f.Correction, &explanation, &category); err != nil {
			return nil, fmt.Errorf("failed to scan error: %w", err)
		}
		f.Explanation = explanation.String
		f.Category = core.Category(category)
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate errors: %w", err)
	}

	return findings, nil
}

// WeeklyStats aggregates daily counters over a Monday-anchored week
func (s *SQLiteStore) WeeklyStats(ctx context.Context, weeksBack int) (*core.WeeklyStats, error) {
	start, end := weekWindow(s.now(), weeksBack)

	stats := &core.WeeklyStats{
		WeekStart: start.Format(dateLayout),
		WeekEnd:   end.Format(dateLayout),
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(total_corrections), 0),
			COALESCE(SUM(spelling_count), 0),
			COALESCE(SUM(grammar_count), 0),
			COALESCE(SUM(style_count), 0),
			COALESCE(SUM(vocabulary_count), 0)
		FROM daily_stats
		WHERE date BETWEEN ? AND ?
	`, stats.WeekStart, stats.WeekEnd).Scan(&stats.DaysActive, &stats.TotalCorrections,
		&stats.SpellingCount, &stats.GrammarCount, &stats.StyleCount, &stats.VocabularyCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly stats: %w", err)
	}

	return stats, nil
}

// TopErrors returns the most repeated mistakes over the trailing days
func (s *SQLiteStore) TopErrors(ctx context.Context, limit, days int) ([]core.TopError, error) {
	since := s.now().AddDate(0, 0, -days).Format(dateLayout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.original, e.correction, MAX(e.category), COUNT(*) AS cnt
		FROM errors e
		JOIN corrections c ON c.id = e.correction_id
		WHERE date(c.timestamp) >= ?
		GROUP BY e.original, e.correction
		ORDER BY cnt DESC, e.original ASC
		LIMIT ?
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top errors: %w", err)
	}
	defer rows.Close()

	var top []core.TopError
	for rows.Next() {
		var te core.TopError
		var category string
		if err := rows.Scan(&te.Original, &te.Correction, &category, &te.Count); err != nil {
			return nil, fmt.Errorf("failed to scan top error: %w", err)
		}
		te.Category = core.Category(category)
		top = append(top, te)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate top errors: %w", err)
	}

	return top, nil
}

// AllTimeStats aggregates daily counters over the whole store
func (s *SQLiteStore) AllTimeStats(ctx context.Context) (*core.AllTimeStats, error) {
	stats := &core.AllTimeStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(total_corrections), 0),
			COALESCE(SUM(spelling_count), 0),
			COALESCE(SUM(grammar_count), 0),
			COALESCE(SUM(style_count), 0),
			COALESCE(SUM(vocabulary_count), 0)
		FROM daily_stats
	`).Scan(&stats.DaysActive, &stats.TotalCorrections, &stats.SpellingCount,
		&stats.GrammarCount, &stats.StyleCount, &stats.VocabularyCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query all-time stats: %w", err)
	}

	return stats, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
