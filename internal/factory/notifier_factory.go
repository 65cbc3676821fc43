package factory

import (
	"github.com/mikey/english-buddy/internal/adapters/notify"
	"github.com/mikey/english-buddy/internal/config"
	"github.com/mikey/english-buddy/internal/core"
	"go.uber.org/zap"
)

// NotifierFactory creates notifiers based on configuration
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNotifier creates the notifier for the pipeline. When notifications
// are disabled the pipeline gets a notifier that drops messages.
func (f *NotifierFactory) CreateNotifier() core.Notifier {
	notifyCfg := f.cfg.GetNotify()
	if !notifyCfg.Enabled {
		return notify.NewNopNotifier()
	}
	return notify.NewDesktopNotifier(f.logger)
}
