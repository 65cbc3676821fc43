// Package notify surfaces findings as desktop notifications
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

// DesktopNotifier is a beeep-backed implementation of the Notifier interface
type DesktopNotifier struct {
	logger *zap.Logger
}

// NewDesktopNotifier creates a desktop notifier
func NewDesktopNotifier(logger *zap.Logger) *DesktopNotifier {
	return &DesktopNotifier{logger: logger}
}

// Notify shows a desktop notification
func (n *DesktopNotifier) Notify(title, message string) error {
	if err := beeep.Notify(title, message, ""); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	n.logger.Debug("Sent notification", zap.String("title", title))
	return nil
}

// NopNotifier drops notifications, used when they are disabled
type NopNotifier struct{}

// NewNopNotifier creates a notifier that does nothing
func NewNopNotifier() *NopNotifier {
	return &NopNotifier{}
}

// Notify discards the message
func (*NopNotifier) Notify(title, message string) error {
	return nil
}
