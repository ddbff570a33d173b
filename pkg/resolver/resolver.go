// Package resolver maps a template kind and field name to the markup the
// widget compiles. Field specific templates ("<kind>-<field>") win; otherwise
// the group-wide "<kind>-inline" template is used with its prefix placeholder
// replaced by the instance position.
package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// Template kinds consumed by one widget instance.
const (
	KindUI  = "hstore-ui"
	KindRow = "hstore-row"
)

const (
	// InlineSuffix names group-wide fallback templates.
	InlineSuffix = "inline"
	// DefaultPlaceholder is replaced with the instance prefix in fallbacks.
	DefaultPlaceholder = "__prefix__"

	templateExt         = ".tpl"
	templateNotFoundKey = "TEMPLATE_NOT_FOUND"
)

// ErrTemplateNotFound is wrapped when neither a specific nor a fallback
// template exists for a kind.
var ErrTemplateNotFound = errors.New("resolver: template not found")

// Option configures a Resolver.
type Option func(*Resolver)

// WithPlaceholder overrides the prefix placeholder token.
func WithPlaceholder(token string) Option {
	return func(r *Resolver) {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			r.placeholder = trimmed
		}
	}
}

// WithKinds adds template kinds LoadFS recognises beyond the built-in ones.
func WithKinds(kinds ...string) Option {
	return func(r *Resolver) {
		for _, kind := range kinds {
			if trimmed := strings.TrimSpace(kind); trimmed != "" && !slices.Contains(r.kinds, trimmed) {
				r.kinds = append(r.kinds, trimmed)
			}
		}
	}
}

// WithDefaults registers the embedded fallback templates.
func WithDefaults() Option {
	return func(r *Resolver) {
		r.loadDefaults = true
	}
}

// Resolver stores templates by name.
type Resolver struct {
	mu           sync.RWMutex
	specific     map[string]string
	fallback     map[string]string
	placeholder  string
	kinds        []string
	loadDefaults bool
}

// New constructs a resolver. With WithDefaults the embedded fallbacks are
// loaded; failures there indicate a broken build and panic.
func New(options ...Option) *Resolver {
	r := &Resolver{
		specific:    make(map[string]string),
		fallback:    make(map[string]string),
		placeholder: DefaultPlaceholder,
		kinds:       []string{KindUI, KindRow},
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.loadDefaults {
		if err := r.LoadFS(Defaults()); err != nil {
			panic(fmt.Errorf("resolver: load embedded templates: %w", err))
		}
	}
	return r
}

// TemplateName returns the registry name for kind and fieldName.
func TemplateName(kind, fieldName string) string {
	return strings.TrimSpace(kind) + "-" + strings.TrimSpace(fieldName)
}

// Placeholder returns the token replaced in fallback templates.
func (r *Resolver) Placeholder() string {
	return r.placeholder
}

// Register stores markup for one field.
func (r *Resolver) Register(kind, fieldName, markup string) error {
	kind = strings.TrimSpace(kind)
	fieldName = strings.TrimSpace(fieldName)
	if kind == "" || fieldName == "" {
		return errors.New("resolver: kind and field name are required")
	}
	if fieldName == InlineSuffix {
		return r.RegisterFallback(kind, markup)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.specific[TemplateName(kind, fieldName)] = markup
	return nil
}

// RegisterFallback stores the group-wide template for kind.
func (r *Resolver) RegisterFallback(kind, markup string) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return errors.New("resolver: kind is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback[kind] = markup
	return nil
}

// Has reports whether Resolve would succeed for kind and fieldName.
func (r *Resolver) Has(kind, fieldName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.specific[TemplateName(kind, fieldName)]; ok {
		return true
	}
	_, ok := r.fallback[strings.TrimSpace(kind)]
	return ok
}

// Resolve returns the markup for kind and fieldName. A field specific template
// is returned unchanged; the fallback has every placeholder replaced with
// prefix. Missing templates fail with a not-found error.
func (r *Resolver) Resolve(kind, fieldName, prefix string) (string, error) {
	name := TemplateName(kind, fieldName)

	r.mu.RLock()
	markup, ok := r.specific[name]
	fallback, hasFallback := r.fallback[strings.TrimSpace(kind)]
	r.mu.RUnlock()

	if ok {
		return markup, nil
	}
	if hasFallback {
		return strings.ReplaceAll(fallback, r.placeholder, prefix), nil
	}
	return "", goerrors.Wrap(ErrTemplateNotFound, goerrors.CategoryNotFound,
		fmt.Sprintf("no template %q and no %q fallback registered", name, TemplateName(kind, InlineSuffix))).
		WithTextCode(templateNotFoundKey)
}

// Names lists registered template names, fallbacks included, sorted.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specific)+len(r.fallback))
	for name := range r.specific {
		names = append(names, name)
	}
	for kind := range r.fallback {
		names = append(names, TemplateName(kind, InlineSuffix))
	}
	sort.Strings(names)
	return names
}

// LoadFS registers every "*.tpl" file in fsys. "<kind>-inline.tpl" becomes
// the fallback for kind and "<kind>-<field>.tpl" a field template. Files that
// match no known kind are ignored.
func (r *Resolver) LoadFS(fsys fs.FS) error {
	if fsys == nil {
		return nil
	}
	return fs.WalkDir(fsys, ".", func(filePath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || path.Ext(filePath) != templateExt {
			return nil
		}

		base := strings.TrimSuffix(path.Base(filePath), templateExt)
		kind, field, ok := r.split(base)
		if !ok {
			return nil
		}

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("resolver: read %s: %w", filePath, err)
		}
		return r.Register(kind, field, string(data))
	})
}

// TemplateSelector picks template paths by partial key. *theme.Selection from
// go-theme satisfies it.
type TemplateSelector interface {
	Template(key, fallback string) string
}

// ThemePartials maps template kinds to the theme partial keys that override
// their fallback.
var ThemePartials = map[string]string{
	KindUI:  "hstore.ui",
	KindRow: "hstore.row",
}

// ApplyTheme replaces fallbacks with the templates a theme selection points
// to, read from fsys. Kinds the theme does not override keep their fallback.
func (r *Resolver) ApplyTheme(selection TemplateSelector, fsys fs.FS) error {
	if selection == nil {
		return nil
	}
	kinds := make([]string, 0, len(ThemePartials))
	for kind := range ThemePartials {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		templatePath := strings.TrimSpace(selection.Template(ThemePartials[kind], ""))
		if templatePath == "" {
			continue
		}
		if fsys == nil {
			return fmt.Errorf("resolver: theme template %q needs a filesystem", templatePath)
		}
		data, err := fs.ReadFile(fsys, templatePath)
		if err != nil {
			return fmt.Errorf("resolver: read theme template %s: %w", templatePath, err)
		}
		if err := r.RegisterFallback(kind, string(data)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) split(base string) (string, string, bool) {
	kinds := slices.Clone(r.kinds)
	// longest kind first so "hstore-row" never shadows a longer kind
	sort.Slice(kinds, func(i, j int) bool { return len(kinds[i]) > len(kinds[j]) })
	for _, kind := range kinds {
		if field, ok := strings.CutPrefix(base, kind+"-"); ok && field != "" {
			return kind, field, true
		}
	}
	return "", "", false
}
