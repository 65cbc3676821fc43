package factory

import (
	"github.com/mikey/english-buddy/internal/adapters/journal"
	"github.com/mikey/english-buddy/internal/config"
	"github.com/mikey/english-buddy/internal/core"
	"go.uber.org/zap"
)

// JournalFactory creates learning log writers based on configuration
type JournalFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewJournalFactory creates a new journal factory
func NewJournalFactory(cfg *config.Config, logger *zap.Logger) *JournalFactory {
	return &JournalFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateJournal creates the journal for the pipeline. When journaling is
// disabled the pipeline gets a writer that discards entries.
func (f *JournalFactory) CreateJournal() core.Journal {
	journalCfg := f.cfg.GetJournal()
	if !journalCfg.Enabled {
		return journal.NopWriter{}
	}
	return journal.NewWriter(journalCfg.Dir, f.logger)
}
