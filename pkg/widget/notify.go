package widget

import (
	"github.com/goliatone/go-hstore/internal/logging"
	"github.com/goliatone/go-hstore/pkg/interfaces"
)

// Notifier surfaces blocking messages to the user.
type Notifier interface {
	Alert(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Alert calls f.
func (f NotifierFunc) Alert(message string) {
	if f != nil {
		f(message)
	}
}

// LogNotifier reports alerts as warnings on logger.
func LogNotifier(logger interfaces.Logger) Notifier {
	logger = logging.Or(logger)
	return NotifierFunc(func(message string) {
		logger.Warn("hstore alert", "message", message)
	})
}

func alertMessage(err error) string {
	return "invalid JSON:\n" + err.Error()
}
