package widget

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-hstore/internal/logging"
	"github.com/goliatone/go-hstore/pkg/interfaces"
	"github.com/goliatone/go-hstore/pkg/model"
	"github.com/goliatone/go-hstore/pkg/render/template"
	"github.com/goliatone/go-hstore/pkg/render/template/gotemplate"
	"github.com/goliatone/go-hstore/pkg/resolver"
)

// Option configures compilers and instances.
type Option func(*settings)

type settings struct {
	resolver *resolver.Resolver
	renderer template.TemplateRenderer
	notifier Notifier
	logger   interfaces.Logger
	classes  Classes
	indent   string
	prefix   string
}

// WithResolver sets the template resolver. Defaults to a resolver holding the
// embedded templates.
func WithResolver(r *resolver.Resolver) Option {
	return func(s *settings) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithRenderer sets the engine resolved templates are executed with.
func WithRenderer(r template.TemplateRenderer) Option {
	return func(s *settings) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithNotifier sets the sink for blocking user messages.
func WithNotifier(n Notifier) Option {
	return func(s *settings) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClasses overrides class names; empty names keep their default.
func WithClasses(classes Classes) Option {
	return func(s *settings) {
		s.classes = classes.WithDefaults()
	}
}

// WithIndent overrides the indentation of the raw value. An empty string
// writes compact JSON.
func WithIndent(indent string) Option {
	return func(s *settings) {
		s.indent = indent
	}
}

// WithPrefix sets the positional prefix substituted into fallback templates.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = strings.TrimSpace(prefix)
	}
}

func newSettings(options []Option) (settings, error) {
	s := settings{
		classes: DefaultClasses(),
		indent:  model.Indent,
	}
	s.apply(options)
	if err := s.fill(); err != nil {
		return settings{}, err
	}
	return s, nil
}

func (s *settings) apply(options []Option) {
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
}

func (s *settings) fill() error {
	s.logger = logging.Or(s.logger)
	if s.resolver == nil {
		s.resolver = resolver.New(resolver.WithDefaults())
	}
	if s.renderer == nil {
		engine, err := gotemplate.New()
		if err != nil {
			return fmt.Errorf("widget: create template engine: %w", err)
		}
		s.renderer = engine
	}
	if s.notifier == nil {
		s.notifier = LogNotifier(s.logger)
	}
	return nil
}
