package hstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-hstore/internal/logging"
	"github.com/goliatone/go-hstore/internal/logging/gologger"
	"github.com/goliatone/go-hstore/pkg/config"
	"github.com/goliatone/go-hstore/pkg/inline"
	"github.com/goliatone/go-hstore/pkg/interfaces"
	"github.com/goliatone/go-hstore/pkg/model"
	"github.com/goliatone/go-hstore/pkg/page"
	"github.com/goliatone/go-hstore/pkg/render/template"
	"github.com/goliatone/go-hstore/pkg/render/template/gotemplate"
	"github.com/goliatone/go-hstore/pkg/resolver"
	"github.com/goliatone/go-hstore/pkg/widget"
	"github.com/goliatone/go-hstore/pkg/widgets"
)

const invalidValueCode = "INVALID_JSON"

// Engine binds hstore widgets to documents. One engine serves many documents;
// each document keeps its own instances and handlers.
type Engine struct {
	cfg      config.Config
	provider interfaces.LoggerProvider
	logger   interfaces.Logger
	resolver *resolver.Resolver
	factory  *widget.Factory
	registry *widgets.Registry
	binder   *inline.Binder
}

// New builds an engine from the defaults, an optional config file and the
// supplied options.
func New(opts ...Option) (*Engine, error) {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	cfg, err := resolveConfig(o)
	if err != nil {
		return nil, err
	}

	provider := o.provider
	if provider == nil {
		built, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, fmt.Errorf("hstore: logging: %w", err)
		}
		provider = built
	}

	e := &Engine{
		cfg:      cfg,
		provider: provider,
		logger:   logging.ModuleLogger(provider, logging.RootModule),
		registry: o.registry,
	}
	if e.registry == nil {
		e.registry = widgets.NewRegistry()
	}

	if e.resolver, err = e.buildResolver(o); err != nil {
		return nil, err
	}

	widgetOpts := append(cfg.WidgetOptions(),
		widget.WithResolver(e.resolver),
		widget.WithLogger(logging.ModuleLogger(provider, logging.WidgetModule)),
	)
	renderer, err := e.buildRenderer(o)
	if err != nil {
		return nil, err
	}
	if renderer != nil {
		widgetOpts = append(widgetOpts, widget.WithRenderer(renderer))
	}
	if o.notifier != nil {
		widgetOpts = append(widgetOpts, widget.WithNotifier(o.notifier))
	}
	widgetOpts = append(widgetOpts, o.widgetOpts...)

	if e.factory, err = widget.NewFactory(widgetOpts...); err != nil {
		return nil, fmt.Errorf("hstore: widget factory: %w", err)
	}

	e.binder, err = inline.New(e.factory, e.registry,
		inline.WithPlaceholder(cfg.Inline.Placeholder),
		inline.WithAddClasses(cfg.Inline.AddClasses...),
		inline.WithRemoveClasses(cfg.Inline.RemoveClasses...),
		inline.WithLogger(logging.ModuleLogger(provider, logging.InlineModule)),
	)
	if err != nil {
		return nil, fmt.Errorf("hstore: inline binder: %w", err)
	}

	e.logger.Debug("hstore engine ready", "templates", len(e.resolver.Names()), "theme", cfg.Theme.Name)
	return e, nil
}

// buildRenderer returns the renderer the widgets share. A nil result keeps
// the widget default, the caching pongo2 engine.
func (e *Engine) buildRenderer(o *options) (template.TemplateRenderer, error) {
	if o.renderer != nil {
		return o.renderer, nil
	}
	if e.cfg.Render.Engine != config.EngineGoTemplate {
		return nil, nil
	}
	var opts []gotemplate.Option
	if e.cfg.Templates.Dir != "" {
		opts = append(opts, gotemplate.WithBaseDir(e.cfg.Templates.Dir))
	}
	renderer, err := gotemplate.NewGoTemplate(opts...)
	if err != nil {
		return nil, fmt.Errorf("hstore: renderer: %w", err)
	}
	e.logger.Debug("hstore renderer selected", "engine", e.cfg.Render.Engine)
	return renderer, nil
}

// Bind initializes a widget for every top-level hstore field of doc. Inline
// groups are left to the binder; see BindAll. Prototype fields, whose name
// holds the inline placeholder, stay raw. Per-field failures are logged
// and returned joined without stopping the other fields.
func (e *Engine) Bind(doc *page.Document) ([]*widget.Instance, error) {
	if doc == nil {
		return nil, errors.New("hstore: document is required")
	}
	if err := e.registry.Decorate(doc); err != nil {
		return nil, fmt.Errorf("hstore: decorate: %w", err)
	}

	var (
		instances []*widget.Instance
		errs      []error
	)
	for _, container := range doc.Containers() {
		field := container.Field()
		if field == nil || container.Detached() || !e.registry.IsHStore(field) {
			continue
		}
		if strings.Contains(field.Name, e.cfg.Inline.Placeholder) {
			continue
		}
		inst, err := e.factory.New(doc, field.Name)
		if err == nil {
			err = inst.Init()
		}
		if err != nil {
			e.logger.Error("hstore init failed", "field", field.Name, "error", err)
			errs = append(errs, fmt.Errorf("hstore: init %s: %w", field.Name, err))
			continue
		}
		instances = append(instances, inst)
	}
	return instances, errors.Join(errs...)
}

// BindAll binds the top-level fields and then the inline groups of doc.
func (e *Engine) BindAll(doc *page.Document) ([]*widget.Instance, error) {
	instances, err := e.Bind(doc)
	if doc == nil {
		return nil, err
	}
	inlineErr := e.binder.Bind(doc)
	for _, group := range doc.Groups() {
		instances = append(instances, e.binder.Instances(group)...)
	}
	return instances, errors.Join(err, inlineErr)
}

// Config returns the effective configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Resolver returns the template resolver shared by every instance.
func (e *Engine) Resolver() *resolver.Resolver { return e.resolver }

// Factory returns the widget factory.
func (e *Engine) Factory() *widget.Factory { return e.factory }

// Registry returns the registry deciding which fields are hstore fields.
func (e *Engine) Registry() *widgets.Registry { return e.registry }

// Binder returns the inline binder.
func (e *Engine) Binder() *inline.Binder { return e.binder }

// Logger returns a logger scoped to module.
func (e *Engine) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(e.provider, module)
}

// Decode parses a submitted raw value. Blank values and "null" decode to an
// empty mapping.
func Decode(raw string) (*model.Mapping, error) {
	if trimmed := strings.TrimSpace(raw); trimmed == "" || trimmed == "null" {
		return model.NewMapping(), nil
	}
	mapping, err := model.Parse(raw)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid hstore value").
			WithTextCode(invalidValueCode)
	}
	return mapping, nil
}

// Encode renders values as a raw value with keys in sorted order, the form a
// server writes into the field before the widget takes over.
func Encode(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	mapping := model.NewMapping()
	for _, key := range keys {
		mapping.Set(key, values[key])
	}
	return model.Serialize(mapping)
}

func resolveConfig(o *options) (config.Config, error) {
	switch {
	case o.cfg != nil:
		cfg := *o.cfg
		cfg.Classes = cfg.Classes.WithDefaults()
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
		return cfg, nil
	case strings.TrimSpace(o.cfgPath) != "":
		return config.Load(o.cfgPath)
	default:
		return config.Default(), nil
	}
}

func (e *Engine) buildResolver(o *options) (*resolver.Resolver, error) {
	r := resolver.New(
		resolver.WithPlaceholder(e.cfg.Templates.Placeholder),
		resolver.WithDefaults(),
	)
	if dir := e.cfg.Templates.Dir; dir != "" {
		if err := r.LoadFS(os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("hstore: templates dir %s: %w", dir, err)
		}
	}
	if o.templates != nil {
		if err := r.LoadFS(o.templates); err != nil {
			return nil, fmt.Errorf("hstore: templates: %w", err)
		}
	}

	selection, fsys, err := e.selectTheme(o)
	if err != nil {
		return nil, err
	}
	if selection != nil {
		if err := r.ApplyTheme(selection, fsys); err != nil {
			return nil, fmt.Errorf("hstore: theme %s: %w", selection.Theme, err)
		}
		e.logger.Debug("hstore theme applied", "theme", selection.Theme, "variant", selection.Variant)
	}
	return r, nil
}

// selectTheme resolves the theme selection from an explicit selector, the
// registered manifests or the configured theme dir, in that order.
func (e *Engine) selectTheme(o *options) (*theme.Selection, fs.FS, error) {
	name, variant := e.cfg.Theme.Name, e.cfg.Theme.Variant

	selector := o.selector
	fsys := o.themeFS
	if selector == nil {
		manifests := o.manifests
		if dir := e.cfg.Theme.Dir; dir != "" {
			dirFS := os.DirFS(dir)
			manifest, err := theme.LoadDir(dirFS, ".")
			if err != nil {
				return nil, nil, fmt.Errorf("hstore: load theme from %s: %w", dir, err)
			}
			manifests = append(manifests, manifest)
			if fsys == nil {
				fsys = dirFS
			}
		}
		if len(manifests) == 0 {
			return nil, nil, nil
		}

		registry := theme.NewRegistry()
		for _, manifest := range manifests {
			if err := registry.Register(manifest); err != nil {
				return nil, nil, fmt.Errorf("hstore: register theme %s: %w", manifest.Name, err)
			}
		}
		if name == "" {
			name = manifests[0].Name
		}
		selector = &theme.Selector{
			Registry:       registry,
			DefaultTheme:   name,
			DefaultVariant: variant,
		}
	}

	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, nil, fmt.Errorf("hstore: select theme %s: %w", name, err)
	}
	return selection, fsys, nil
}
