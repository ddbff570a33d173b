package hstore

import (
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-hstore/pkg/config"
	"github.com/goliatone/go-hstore/pkg/interfaces"
	"github.com/goliatone/go-hstore/pkg/render/template"
	"github.com/goliatone/go-hstore/pkg/widget"
	"github.com/goliatone/go-hstore/pkg/widgets"
)

// Option configures an Engine.
type Option func(*options)

type options struct {
	cfg        *config.Config
	cfgPath    string
	provider   interfaces.LoggerProvider
	notifier   widget.Notifier
	renderer   template.TemplateRenderer
	registry   *widgets.Registry
	templates  fs.FS
	selector   theme.ThemeSelector
	themeFS    fs.FS
	manifests  []*theme.Manifest
	widgetOpts []widget.Option
}

// WithConfig uses cfg instead of the defaults. It is validated by New.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.cfg = &cfg
	}
}

// WithConfigFile loads the YAML configuration at path.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.cfgPath = path
	}
}

// WithLoggerProvider replaces the go-logger provider built from the logging
// configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithNotifier routes blocking user messages, such as invalid JSON alerts.
func WithNotifier(notifier widget.Notifier) Option {
	return func(o *options) {
		o.notifier = notifier
	}
}

// WithRenderer swaps the template renderer.
func WithRenderer(renderer template.TemplateRenderer) Option {
	return func(o *options) {
		o.renderer = renderer
	}
}

// WithRegistry swaps the registry deciding which fields are hstore fields.
func WithRegistry(registry *widgets.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithTemplateFS loads "<kind>-<field>.tpl" and "<kind>-inline.tpl" overrides
// from fsys after the configured templates dir.
func WithTemplateFS(fsys fs.FS) Option {
	return func(o *options) {
		o.templates = fsys
	}
}

// WithThemeSelector resolves template partials through selector; templates
// the selection names are read from fsys.
func WithThemeSelector(selector theme.ThemeSelector, fsys fs.FS) Option {
	return func(o *options) {
		o.selector = selector
		o.themeFS = fsys
	}
}

// WithThemeManifest registers manifest with the engine's theme registry;
// templates it names are read from fsys.
func WithThemeManifest(manifest *theme.Manifest, fsys fs.FS) Option {
	return func(o *options) {
		if manifest == nil {
			return
		}
		o.manifests = append(o.manifests, manifest)
		if fsys != nil {
			o.themeFS = fsys
		}
	}
}

// WithWidgetOptions appends options applied to every widget instance.
func WithWidgetOptions(opts ...widget.Option) Option {
	return func(o *options) {
		o.widgetOpts = append(o.widgetOpts, opts...)
	}
}
