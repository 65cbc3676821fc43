package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/english-buddy/internal/adapters/hook"
	"github.com/mikey/english-buddy/internal/core"
	"github.com/mikey/english-buddy/internal/di"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		passThrough(err)
		return
	}

	// Run the hook
	if err := container.Invoke(run); err != nil {
		passThrough(err)
		return
	}
}

// passThrough emits the pass-through response when the pipeline could not be
// assembled. The hook must never block a prompt, so wiring failures only
// reach stderr and the process still exits zero.
func passThrough(err error) {
	fmt.Fprintf(os.Stderr, "english-buddy hook: %v\n", err)
	fmt.Println("{}")
}

// run is the main hook function that gets all dependencies injected
func run(
	logger *zap.Logger,
	runner *hook.Runner,
	analyzer core.Analyzer,
	store core.CorrectionStore,
) error {
	defer logger.Sync()

	if err := runner.Run(context.Background()); err != nil {
		logger.Error("Hook run failed", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := analyzer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close analyzer", zap.Error(err))
		}
	}

	if err := store.Close(); err != nil {
		logger.Error("Failed to close store", zap.Error(err))
	}

	return nil
}
