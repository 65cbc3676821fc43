package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/english-buddy/internal/core"
)

const mysqlTimestampLayout = "2006-01-02 15:04:05"

// MySQLStore is a MySQL implementation of the CorrectionStore interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS corrections (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		original_text TEXT NOT NULL,
		user_text TEXT NOT NULL,
		better_expression TEXT,
		summary TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS errors (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		correction_id BIGINT NOT NULL,
		original TEXT NOT NULL,
		correction TEXT NOT NULL,
		explanation TEXT,
		category VARCHAR(20) NOT NULL,
		INDEX idx_errors_correction_id (correction_id)
	)`,
	`CREATE TABLE IF NOT EXISTS daily_stats (
		date CHAR(10) PRIMARY KEY,
		total_corrections INT NOT NULL DEFAULT 0,
		spelling_count INT NOT NULL DEFAULT 0,
		grammar_count INT NOT NULL DEFAULT 0,
		style_count INT NOT NULL DEFAULT 0,
		vocabulary_count INT NOT NULL DEFAULT 0
	)`,
}

// NewMySQLStore connects to MySQL and creates the schema on first use
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	for _, stmt := range mysqlSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

// RecordCorrection stores a correction, its findings, and the daily counter
// bump in a single transaction
func (s *MySQLStore) RecordCorrection(ctx context.Context, c *core.Correction) (int64, error) {
	recordedAt := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO corrections (timestamp, original_text, user_text, better_expression, summary)
		VALUES (?, ?, ?, ?, ?)
	`, recordedAt.Format(mysqlTimestampLayout), c.OriginalText, c.UserText, c.BetterExpression, c.Summary)
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
		ON DUPLICATE KEY UPDATE
			total_corrections = total_corrections + 1,
			spelling_count = spelling_count + VALUES(spelling_count),
			grammar_count = grammar_count + VALUES(grammar_count),
			style_count = style_count + VALUES(style_count),
			vocabulary_count = vocabulary_count + VALUES(vocabulary_count)
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
func (s *MySQLStore) DailyStats(ctx context.Context, date string) (*core.DailyStats, error) {
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
func (s *MySQLStore) DailyCorrections(ctx context.Context, date string) ([]core.Correction, error) {
	if date == "" {
		date = s.now().Format(dateLayout)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, original_text, user_text, better_expression, summary
		FROM corrections
		WHERE DATE(timestamp) = ?
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

		parsed, err := time.Parse(mysqlTimestampLayout, ts)
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

func (s *MySQLStore) loadFindings(ctx context.Context, correctionID int64) ([]core.Finding, error) {
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
func (s *MySQLStore) WeeklyStats(ctx context.Context, weeksBack int) (*core.WeeklyStats, error) {
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
func (s *MySQLStore) TopErrors(ctx context.Context, limit, days int) ([]core.TopError, error) {
	since := s.now().AddDate(0, 0, -days).Format(dateLayout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.original, e.correction, MAX(e.category), COUNT(*) AS cnt
		FROM errors e
		JOIN corrections c ON c.id = e.correction_id
		WHERE DATE(c.timestamp) >= ?
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
func (s *MySQLStore) AllTimeStats(ctx context.Context) (*core.AllTimeStats, error) {
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
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
