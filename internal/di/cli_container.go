package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/english-buddy/internal/adapters/queue"
	"github.com/mikey/english-buddy/internal/config"
	"github.com/mikey/english-buddy/internal/core"
	"github.com/mikey/english-buddy/internal/factory"
	"github.com/mikey/english-buddy/internal/logging"
	"github.com/mikey/english-buddy/internal/utils"
)

// CLIOptions contains the global command line switches for the reporting CLI
type CLIOptions struct {
	Verbose bool
	JSONLog bool
}

// BuildCLIContainer creates a dependency injection container for the
// reporting CLI. It reads the same configuration as the hook but logs to the
// console at a flag-driven level.
func BuildCLIContainer(opts *CLIOptions) (*dig.Container, error) {
	container := dig.New()

	// Register options
	if err := container.Provide(func() *CLIOptions { return opts }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(opts *CLIOptions) (*zap.Logger, error) {
		return logging.InitConsoleLogger(opts.Verbose, opts.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(config.New); err != nil {
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

	// Register analyzer. The container is lazy, so reporting commands that
	// never touch the analyzer never pay for provider setup.
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

	return container, nil
}
