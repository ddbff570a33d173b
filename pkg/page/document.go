package page

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/goliatone/go-hstore/pkg/model"
)

// PrefixPlaceholder is the token the host form uses in prototype field names.
const PrefixPlaceholder = "__prefix__"

var (
	// ErrFieldNotFound is returned when no element carries the requested id.
	ErrFieldNotFound = errors.New("page: field not found")
	// ErrAlreadyReplaced is returned when a field was already swapped for a widget.
	ErrAlreadyReplaced = errors.New("page: field already replaced")
)

// Field is a text-bearing form element.
type Field struct {
	Name     string
	ID       string
	Value    string
	Classes  []string
	Metadata map[string]string
}

// HasClass reports whether the field carries class.
func (f *Field) HasClass(class string) bool {
	if f == nil {
		return false
	}
	return slices.Contains(f.Classes, class)
}

// FieldSpec describes a field plus its presentation container.
type FieldSpec struct {
	Name     string
	Value    string
	Label    string
	Help     string
	Errors   string
	Classes  []string
	Metadata map[string]string
}

// Container is the labelled group wrapping one field. It stays in the
// document, possibly hidden, after its field moved into a widget so the label,
// help text and errors remain available.
type Container struct {
	ID       string
	Label    string
	Help     string
	Errors   string
	Hidden   bool
	field    *Field
	detached bool
	form     *InlineForm
}

// Field returns the wrapped field, including after it moved into a widget.
func (c *Container) Field() *Field { return c.field }

// Detached reports whether the field was handed over to a widget.
func (c *Container) Detached() bool { return c.detached }

// Form returns the inline form holding the container, nil at the top level.
func (c *Container) Form() *InlineForm { return c.form }

// Widget is a rendered replacement for a field.
type Widget interface {
	ID() string
	Render() (string, error)
}

type node struct {
	container *Container
	widget    Widget
}

// Document is the in-memory host page.
type Document struct {
	nodes    []*node
	elements map[string]*Field
	owners   map[string]*Container
	groups   []*InlineGroup
	handlers *Handlers
}

// New returns an empty document.
func New() *Document {
	return &Document{
		elements: make(map[string]*Field),
		owners:   make(map[string]*Container),
		handlers: NewHandlers(),
	}
}

// Handlers exposes the document's event registry.
func (d *Document) Handlers() *Handlers { return d.handlers }

// Dispatch routes evt to the handlers registered for its container.
func (d *Document) Dispatch(evt Event) (bool, error) {
	return d.handlers.Dispatch(evt)
}

// AddField appends a top-level field and its container.
func (d *Document) AddField(spec FieldSpec) (*Container, error) {
	container, err := d.newContainer(spec, nil)
	if err != nil {
		return nil, err
	}
	d.nodes = append(d.nodes, &node{container: container})
	return container, nil
}

// Element returns the field registered under id.
func (d *Document) Element(id string) (*Field, bool) {
	field, ok := d.elements[id]
	return field, ok
}

// ContainerOf returns the container of the field registered under id.
func (d *Document) ContainerOf(id string) (*Container, bool) {
	container, ok := d.owners[id]
	return container, ok
}

// Containers lists top-level containers in document order.
func (d *Document) Containers() []*Container {
	var out []*Container
	for _, n := range d.nodes {
		if n.container != nil {
			out = append(out, n.container)
		}
	}
	return out
}

// Replace detaches the field registered under id, hides its container and
// inserts w right after it. The field stays registered as w's raw element.
func (d *Document) Replace(id string, w Widget) error {
	container, ok := d.owners[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	if container.detached {
		return fmt.Errorf("%w: %s", ErrAlreadyReplaced, id)
	}
	if w == nil {
		return errors.New("page: widget is required")
	}

	if container.form != nil {
		container.form.nodes = insertAfter(container.form.nodes, container, w)
	} else {
		d.nodes = insertAfter(d.nodes, container, w)
	}
	container.detached = true
	container.Hidden = true
	return nil
}

// RemoveWidget drops the widget with widgetID and unregisters the field id it
// owned.
func (d *Document) RemoveWidget(widgetID, fieldID string) bool {
	nodes, removed := removeWidget(d.nodes, widgetID)
	d.nodes = nodes
	if !removed {
		for _, group := range d.groups {
			for _, form := range group.forms {
				var ok bool
				if form.nodes, ok = removeWidget(form.nodes, widgetID); ok {
					removed = true
				}
			}
		}
	}
	if fieldID != "" {
		delete(d.elements, fieldID)
		delete(d.owners, fieldID)
	}
	return removed
}

// Widgets lists mounted widgets in document order.
func (d *Document) Widgets() []Widget {
	var out []Widget
	for _, n := range d.nodes {
		if n.widget != nil {
			out = append(out, n.widget)
		}
	}
	for _, group := range d.groups {
		for _, form := range group.forms {
			for _, n := range form.nodes {
				if n.widget != nil {
					out = append(out, n.widget)
				}
			}
		}
	}
	return out
}

// Widget returns the mounted widget with id.
func (d *Document) Widget(id string) (Widget, bool) {
	for _, w := range d.Widgets() {
		if w.ID() == id {
			return w, true
		}
	}
	return nil, false
}

// Submit collects the values the form would send, keyed by field name.
// Prototype fields are skipped.
func (d *Document) Submit() url.Values {
	values := url.Values{}
	collect := func(nodes []*node) {
		for _, n := range nodes {
			if n.container == nil || n.container.field == nil {
				continue
			}
			field := n.container.field
			if _, ok := d.elements[field.ID]; !ok {
				continue
			}
			if strings.Contains(field.Name, PrefixPlaceholder) {
				continue
			}
			values.Set(field.Name, field.Value)
		}
	}
	collect(d.nodes)
	for _, group := range d.groups {
		for _, form := range group.forms {
			collect(form.nodes)
		}
	}
	return values
}

func (d *Document) newContainer(spec FieldSpec, form *InlineForm) (*Container, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, errors.New("page: field name is required")
	}
	id := model.IdentifierFor(name)
	if _, exists := d.owners[id]; exists {
		return nil, fmt.Errorf("page: duplicate field id %q", id)
	}

	field := &Field{
		Name:     name,
		ID:       id,
		Value:    spec.Value,
		Classes:  slices.Clone(spec.Classes),
		Metadata: cloneMetadata(spec.Metadata),
	}
	container := &Container{
		ID:     "row-" + name,
		Label:  spec.Label,
		Help:   spec.Help,
		Errors: spec.Errors,
		field:  field,
		form:   form,
	}
	d.elements[id] = field
	d.owners[id] = container
	return container, nil
}

func insertAfter(nodes []*node, container *Container, w Widget) []*node {
	for idx, n := range nodes {
		if n.container == container {
			return slices.Insert(nodes, idx+1, &node{widget: w})
		}
	}
	return append(nodes, &node{widget: w})
}

func removeWidget(nodes []*node, id string) ([]*node, bool) {
	for idx, n := range nodes {
		if n.widget != nil && n.widget.ID() == id {
			return slices.Delete(nodes, idx, idx+1), true
		}
	}
	return nodes, false
}

func cloneMetadata(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
