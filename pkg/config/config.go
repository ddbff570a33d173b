// Package config loads the YAML settings the engine and CLI are built from.
package config

import (
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-hstore/pkg/page"
	"github.com/goliatone/go-hstore/pkg/resolver"
	"github.com/goliatone/go-hstore/pkg/widget"
)

const (
	configInvalidCode = "CONFIG_INVALID"
	defaultIndent     = 4
	maxIndent         = 8
)

// Template engines a config can select.
const (
	EnginePongo2     = "pongo2"
	EngineGoTemplate = "go-template"
)

// Config is the root of the YAML document.
type Config struct {
	Classes   widget.Classes `yaml:"classes"`
	Indent    int            `yaml:"indent"`
	Compact   bool           `yaml:"compact"`
	Templates Templates      `yaml:"templates"`
	Render    Render         `yaml:"render"`
	Inline    Inline         `yaml:"inline"`
	Theme     Theme          `yaml:"theme"`
	Logging   Logging        `yaml:"logging"`
}

// Templates locates template overrides.
type Templates struct {
	// Dir holds "<kind>-<field>.tpl" and "<kind>-inline.tpl" files.
	Dir string `yaml:"dir"`
	// Placeholder is replaced with the instance prefix in fallbacks.
	Placeholder string `yaml:"placeholder"`
}

// Render selects the template engine. pongo2 caches compiled inline
// strings; go-template parses them per call and runs its render hooks.
type Render struct {
	Engine string `yaml:"engine"`
}

// Inline configures the inline binder.
type Inline struct {
	Placeholder   string   `yaml:"placeholder"`
	AddClasses    []string `yaml:"add_classes"`
	RemoveClasses []string `yaml:"remove_classes"`
}

// Theme selects a go-theme manifest whose partials override templates.
type Theme struct {
	Dir     string `yaml:"dir"`
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// Logging configures the go-logger provider.
type Logging struct {
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Classes: widget.DefaultClasses(),
		Indent:  defaultIndent,
		Templates: Templates{
			Placeholder: resolver.DefaultPlaceholder,
		},
		Render: Render{
			Engine: EnginePongo2,
		},
		Inline: Inline{
			Placeholder: page.PrefixPlaceholder,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Indent, validation.Min(0), validation.Max(maxIndent)),
		validation.Field(&c.Templates),
		validation.Field(&c.Render),
		validation.Field(&c.Inline),
		validation.Field(&c.Logging),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration").
			WithTextCode(configInvalidCode)
	}
	return nil
}

// Validate implements validation.Validatable.
func (t Templates) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Placeholder, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (r Render) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Engine, validation.Required, validation.In(EnginePongo2, EngineGoTemplate)),
	)
}

// Validate implements validation.Validatable.
func (i Inline) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Placeholder, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (l Logging) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("trace", "debug", "info", "warn", "warning", "error", "fatal")),
		validation.Field(&l.Format, validation.In("console", "json", "pretty")),
	)
}

// IndentString returns the indentation written into raw values.
func (c Config) IndentString() string {
	if c.Compact {
		return ""
	}
	return strings.Repeat(" ", c.Indent)
}

// WidgetOptions translates the config into widget options.
func (c Config) WidgetOptions() []widget.Option {
	return []widget.Option{
		widget.WithClasses(c.Classes),
		widget.WithIndent(c.IndentString()),
	}
}

func (c *Config) normalize() {
	c.Classes = c.Classes.WithDefaults()
	c.Templates.Dir = strings.TrimSpace(c.Templates.Dir)
	c.Templates.Placeholder = strings.TrimSpace(c.Templates.Placeholder)
	c.Render.Engine = strings.ToLower(strings.TrimSpace(c.Render.Engine))
	c.Inline.Placeholder = strings.TrimSpace(c.Inline.Placeholder)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Theme.Name = strings.TrimSpace(c.Theme.Name)
	c.Theme.Variant = strings.TrimSpace(c.Theme.Variant)
}
