package client

import "github.com/rentloop/rentloop/pkg/observability"

// Notifier receives user-facing error notifications. Each failed API call
// produces exactly one notification; calls are never retried automatically.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(message string)

// Notify calls the wrapped function
func (f NotifierFunc) Notify(message string) {
	f(message)
}

// LogNotifier routes notifications to a structured logger
type LogNotifier struct {
	logger *observability.Logger
}

// NewLogNotifier creates a logger-backed notifier
func NewLogNotifier(logger *observability.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the message at warn level
func (n *LogNotifier) Notify(message string) {
	n.logger.Warn(message)
}
