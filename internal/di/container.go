package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/english-buddy/internal/adapters/hook"
	"github.com/mikey/english-buddy/internal/adapters/queue"
	"github.com/mikey/english-buddy/internal/config"
	"github.com/mikey/english-buddy/internal/core"
	"github.com/mikey/english-buddy/internal/factory"
	"github.com/mikey/english-buddy/internal/logging"
	"github.com/mikey/english-buddy/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewJournalFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register analyzer
	if err := container.Provide(func(f *factory.LLMFactory) (core.Analyzer, error) {
		return f.CreateAnalyzer()
	}); err != nil {
		return nil, err
	}

	// Register correction store
	if err := container.Provide(func(f *factory.StoreFactory) (core.CorrectionStore, error) {
		return f.CreateCorrectionStore()
	}); err != nil {
		return nil, err
	}

	// Register journal
	if err := container.Provide(func(f *factory.JournalFactory) core.Journal {
		return f.CreateJournal()
	}); err != nil {
		return nil, err
	}

	// Register retry queue
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.RetryQueue {
		return queue.NewFileQueue(cfg.GetQueue().Path, logger)
	}); err != nil {
		return nil, err
	}

	// Register notifier
	if err := container.Provide(func(f *factory.NotifierFactory) core.Notifier {
		return f.CreateNotifier()
	}); err != nil {
		return nil, err
	}

	// Register pipeline service
	if err := container.Provide(NewPipelineService); err != nil {
		return nil, err
	}

	// Register hook runner
	if err := container.Provide(hook.NewRunner); err != nil {
		return nil, err
	}

	return container, nil
}

// NewPipelineService assembles the pipeline service from its wired parts and
// the scalar knobs the configuration carries
func NewPipelineService(
	analyzer core.Analyzer,
	store core.CorrectionStore,
	journal core.Journal,
	retryQueue core.RetryQueue,
	notifier core.Notifier,
	cfg *config.Config,
	logger *zap.Logger,
) (*core.PipelineService, error) {
	timeout, err := cfg.GetDuration("llm.timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid llm timeout: %w", err)
	}
	retryDelay, err := cfg.GetDuration("queue.retry_delay")
	if err != nil {
		return nil, fmt.Errorf("invalid queue retry delay: %w", err)
	}

	return core.NewPipelineService(
		analyzer,
		store,
		journal,
		retryQueue,
		notifier,
		logger,
		timeout,
		retryDelay,
		cfg.GetQueue().MaxAttempts,
		cfg.GetNotify().Title,
	), nil
}
