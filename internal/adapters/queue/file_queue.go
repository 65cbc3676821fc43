// Package queue persists prompts whose analysis failed so a later run can
// retry them. The queue is a single JSON array on disk.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/english-buddy/internal/core"
)

// FileQueue is a JSON-file implementation of the RetryQueue interface
type FileQueue struct {
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// NewFileQueue creates a queue backed by the file at path
func NewFileQueue(path string, logger *zap.Logger) *FileQueue {
	return &FileQueue{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Load returns all queued entries. A missing or corrupt queue file reads as
// empty so a bad queue can never block the pipeline.
func (q *FileQueue) Load() ([]core.RetryEntry, error) {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		q.logger.Warn("Failed to read retry queue, treating as empty",
			zap.String("path", q.path), zap.Error(err))
		return nil, nil
	}

	var entries []core.RetryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		q.logger.Warn("Retry queue is corrupt, treating as empty",
			zap.String("path", q.path), zap.Error(err))
		return nil, nil
	}

	return entries, nil
}

// Enqueue appends a prompt to the queue
func (q *FileQueue) Enqueue(text string) error {
	entries, _ := q.Load()
	entries = append(entries, core.RetryEntry{
		Prompt:    text,
		Timestamp: q.now().Format(time.RFC3339),
	})
	return q.save(entries)
}

// Replace rewrites the queue to hold exactly these entries
func (q *FileQueue) Replace(entries []core.RetryEntry) error {
	return q.save(entries)
}

func (q *FileQueue) save(entries []core.RetryEntry) error {
	if entries == nil {
		entries = []core.RetryEntry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode retry queue: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return fmt.Errorf("failed to create queue directory: %w", err)
	}

	// Write-then-rename keeps a crashed save from eating the queue
	tmp := q.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write retry queue: %w", err)
	}
	if err := os.Rename(tmp, q.path); err != nil {
		return fmt.Errorf("failed to replace retry queue: %w", err)
	}

	return nil
}
