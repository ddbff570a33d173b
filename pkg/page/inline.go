package page

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// InlineGroup is a repeated sub-form the user can grow or shrink at runtime.
type InlineGroup struct {
	Prefix  string
	Tabular bool

	doc       *Document
	forms     []*InlineForm
	prototype *InlineForm
	next      int
}

// InlineForm is one occurrence of an inline group's sub-form.
type InlineForm struct {
	group *InlineGroup
	nodes []*node
}

// AddInlineGroup registers an inline group. Tabular groups lay out one form
// per table row.
func (d *Document) AddInlineGroup(prefix string, tabular bool) (*InlineGroup, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, fmt.Errorf("page: inline group prefix is required")
	}
	if _, exists := d.Group(prefix); exists {
		return nil, fmt.Errorf("page: duplicate inline group %q", prefix)
	}
	group := &InlineGroup{Prefix: prefix, Tabular: tabular, doc: d}
	d.groups = append(d.groups, group)
	return group, nil
}

// Groups lists inline groups in registration order.
func (d *Document) Groups() []*InlineGroup {
	return slices.Clone(d.groups)
}

// Group returns the inline group registered under prefix.
func (d *Document) Group(prefix string) (*InlineGroup, bool) {
	for _, group := range d.groups {
		if group.Prefix == prefix {
			return group, true
		}
	}
	return nil, false
}

// Document returns the document the group belongs to.
func (g *InlineGroup) Document() *Document { return g.doc }

// EventContainer is the container id the group's add/remove affordances
// dispatch under.
func (g *InlineGroup) EventContainer() string {
	return "inline-" + g.Prefix
}

// Forms lists the live forms in display order.
func (g *InlineGroup) Forms() []*InlineForm {
	return slices.Clone(g.forms)
}

// Prototype returns the inert template form, if one was set.
func (g *InlineGroup) Prototype() *InlineForm {
	return g.prototype
}

// SetPrototype registers the inert template form whose field names embed
// PrefixPlaceholder.
func (g *InlineGroup) SetPrototype(specs ...FieldSpec) (*InlineForm, error) {
	form, err := g.buildForm(PrefixPlaceholder, specs)
	if err != nil {
		return nil, err
	}
	g.prototype = form
	return form, nil
}

// AddForm appends a new form built from specs, naming each field
// "<prefix>-<n>-<name>" the way the host form numbers its sub-forms.
func (g *InlineGroup) AddForm(specs ...FieldSpec) (*InlineForm, error) {
	form, err := g.buildForm(strconv.Itoa(g.next), specs)
	if err != nil {
		return nil, err
	}
	g.next++
	g.forms = append(g.forms, form)
	return form, nil
}

// RemoveForm deletes form from the group and unregisters its fields.
func (g *InlineGroup) RemoveForm(form *InlineForm) bool {
	idx := slices.Index(g.forms, form)
	if idx < 0 {
		return false
	}
	g.forms = slices.Delete(g.forms, idx, idx+1)
	g.forget(form)
	return true
}

// forget unregisters the form's field ids from the document.
func (g *InlineGroup) forget(form *InlineForm) {
	for _, container := range form.Containers() {
		id := container.field.ID
		delete(g.doc.elements, id)
		delete(g.doc.owners, id)
	}
}

// Index returns the form's position among the group's live forms, -1 for the
// prototype or a removed form.
func (f *InlineForm) Index() int {
	return slices.Index(f.group.forms, f)
}

// Group returns the owning inline group.
func (f *InlineForm) Group() *InlineGroup { return f.group }

// Containers lists the form's field containers in order.
func (f *InlineForm) Containers() []*Container {
	var out []*Container
	for _, n := range f.nodes {
		if n.container != nil {
			out = append(out, n.container)
		}
	}
	return out
}

// Widgets lists the widgets mounted inside the form.
func (f *InlineForm) Widgets() []Widget {
	var out []Widget
	for _, n := range f.nodes {
		if n.widget != nil {
			out = append(out, n.widget)
		}
	}
	return out
}

func (g *InlineGroup) buildForm(position string, specs []FieldSpec) (*InlineForm, error) {
	form := &InlineForm{group: g}
	for _, spec := range specs {
		spec.Name = g.Prefix + "-" + position + "-" + strings.TrimSpace(spec.Name)
		container, err := g.doc.newContainer(spec, form)
		if err != nil {
			g.forget(form)
			return nil, err
		}
		form.nodes = append(form.nodes, &node{container: container})
	}
	return form, nil
}
