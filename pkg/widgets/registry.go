package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-hstore/pkg/page"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetHStore     = "hstore"
	WidgetCodeEditor = "code-editor"
)

// HStoreClass is the class the server side widget puts on raw hstore
// textareas.
const HStoreClass = "hstore-original-textarea"

// Metadata keys read by the built-in matchers.
const (
	MetaWidget      = "widget"
	MetaAdminWidget = "admin.widget"
	MetaFormat      = "format"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field *page.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit hints or registered
// matchers. Higher priority wins; ties fall back to registration order. An
// empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. The
// latest registration of a duplicate name wins ties.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. Explicit metadata hints are
// honoured before matcher evaluation.
func (r *Registry) Resolve(field *page.Field) (string, bool) {
	if field == nil {
		return "", false
	}
	if explicit := explicitWidget(field); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// IsHStore reports whether field resolves to the hstore widget.
func (r *Registry) IsHStore(field *page.Field) bool {
	name, ok := r.Resolve(field)
	return ok && name == WidgetHStore
}

// Decorate records the resolved widget in Metadata["widget"] for every field
// of doc, inline forms and prototypes included. Existing values are kept.
func (r *Registry) Decorate(doc *page.Document) error {
	if r == nil || doc == nil {
		return nil
	}
	for _, container := range doc.Containers() {
		r.decorateField(container.Field())
	}
	for _, group := range doc.Groups() {
		forms := group.Forms()
		if prototype := group.Prototype(); prototype != nil {
			forms = append(forms, prototype)
		}
		for _, form := range forms {
			for _, container := range form.Containers() {
				r.decorateField(container.Field())
			}
		}
	}
	return nil
}

func (r *Registry) decorateField(field *page.Field) {
	if field == nil {
		return
	}
	widget, ok := r.Resolve(field)
	if !ok || widget == "" {
		return
	}
	if field.Metadata == nil {
		field.Metadata = make(map[string]string)
	}
	if field.Metadata[MetaWidget] == "" {
		field.Metadata[MetaWidget] = widget
	}
}

func explicitWidget(field *page.Field) string {
	if field.Metadata == nil {
		return ""
	}
	if widget := strings.TrimSpace(field.Metadata[MetaAdminWidget]); widget != "" {
		return widget
	}
	return strings.TrimSpace(field.Metadata[MetaWidget])
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetHStore, 90, func(field *page.Field) bool {
		if field.HasClass(HStoreClass) {
			return true
		}
		return strings.EqualFold(strings.TrimSpace(field.Metadata[MetaFormat]), "hstore")
	})

	r.Register(WidgetCodeEditor, 60, func(field *page.Field) bool {
		format := strings.TrimSpace(strings.ToLower(field.Metadata[MetaFormat]))
		return format == "json" || format == "yaml" || format == "toml"
	})
}
