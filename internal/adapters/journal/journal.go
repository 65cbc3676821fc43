// Package journal appends analyzed corrections to a per-day markdown file,
// the learning log an Obsidian vault picks up.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/english-buddy/internal/core"
)

// Writer is a markdown implementation of the Journal interface
type Writer struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewWriter creates a journal writer rooted at dir
func NewWriter(dir string, logger *zap.Logger) *Writer {
	return &Writer{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}
}

// Append writes one analysis block to today's file, creating the directory
// and file on demand
func (w *Writer) Append(originalText string, analysis *core.GrammarAnalysis) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	now := w.now()
	path := filepath.Join(w.dir, now.Format("2006-01-02")+".md")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open journal file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(buildBlock(originalText, analysis, now)); err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}

	w.logger.Debug("Appended journal entry", zap.String("file", path))
	return nil
}

// NopWriter satisfies the Journal interface when journaling is disabled
type NopWriter struct{}

// Append discards the entry
func (NopWriter) Append(string, *core.GrammarAnalysis) error { return nil }

func buildBlock(originalText string, a *core.GrammarAnalysis, now time.Time) string {
	display := a.UserText
	if display == "" {
		display = originalText
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n## %s\n\n", now.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "**Original:** %s\n", display)

	if a.HasErrors && len(a.Findings) > 0 {
		b.WriteString("\n**Errors:**\n")
		for _, f := range a.Findings {
			fmt.Fprintf(&b, "- %q → %q (%s [%s])\n", f.Original, f.Correction, f.Explanation, f.Category)
		}
	}

	if a.BetterExpression != nil && *a.BetterExpression != "" {
		fmt.Fprintf(&b, "\n**Better:** %s\n", *a.BetterExpression)
	}

	if a.Summary != "" {
		fmt.Fprintf(&b, "\n> %s\n", a.Summary)
	}

	b.WriteString("\n---\n")
	return b.String()
}
