package tui

import (
	"io"

	"github.com/goliatone/go-hstore/pkg/interfaces"
)

// Theme captures optional message prefixes the editor applies when printing.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the editor.
type Option func(*Editor)

// WithPromptDriver overrides the prompt driver used by the editor.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithOutput routes the default driver's messages to out.
func WithOutput(out io.Writer) Option {
	return func(e *Editor) {
		e.out = out
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(e *Editor) {
		e.theme = theme
	}
}

// WithLogger attaches a logger for editing actions.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}
