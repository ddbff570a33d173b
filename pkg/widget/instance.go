package widget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-hstore/pkg/model"
	"github.com/goliatone/go-hstore/pkg/page"
)

// Instance is one widget bound to one field occurrence.
type Instance struct {
	doc       *page.Document
	fieldName string
	settings

	compiler  *Compiler
	sync      *Synchronizer
	toggle    *ToggleController
	container *Container
	binding   model.FieldBinding
	tpls      templates

	initialized bool
	destroyed   bool
}

var _ page.Widget = (*Instance)(nil)

// New prepares an instance for fieldName. Nothing in doc changes until Init.
func New(doc *page.Document, fieldName string, options ...Option) (*Instance, error) {
	s, err := newSettings(options)
	if err != nil {
		return nil, err
	}
	return newInstance(doc, fieldName, s)
}

func newInstance(doc *page.Document, fieldName string, s settings) (*Instance, error) {
	if doc == nil {
		return nil, errors.New("widget: document is required")
	}
	fieldName = strings.TrimSpace(fieldName)
	if fieldName == "" {
		return nil, errors.New("widget: field name is required")
	}
	inst := &Instance{
		doc:       doc,
		fieldName: fieldName,
		settings:  s,
		binding:   model.NewBinding(fieldName),
	}
	inst.compiler = &Compiler{doc: doc, settings: s}
	inst.sync = NewSynchronizer(s.indent)
	inst.toggle = NewToggleController(inst.compiler, inst.sync, fieldName, s.prefix)
	return inst, nil
}

// Identifier is the container id events for this instance are dispatched
// under.
func (i *Instance) Identifier() string {
	return i.binding.Identifier
}

// ID identifies the mounted widget in the document.
func (i *Instance) ID() string {
	return WidgetID(i.binding.Identifier)
}

// FieldName returns the bound field name.
func (i *Instance) FieldName() string {
	return i.fieldName
}

// Prefix returns the positional prefix the instance was compiled with.
func (i *Instance) Prefix() string {
	return i.prefix
}

// SetPrefix moves the instance to a new positional prefix and re-resolves
// its templates, so the next Render and the next raw-to-structured toggle
// use it.
func (i *Instance) SetPrefix(prefix string) error {
	if i.destroyed {
		return ErrDestroyed
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == i.prefix {
		return nil
	}
	if i.initialized {
		tpls, err := i.compiler.resolve(i.fieldName, prefix)
		if err != nil {
			return err
		}
		i.tpls = tpls
	}
	i.prefix = prefix
	i.compiler.prefix = prefix
	i.toggle.prefix = prefix
	return nil
}

// Classes returns the class names the instance renders and listens to.
func (i *Instance) Classes() Classes {
	return i.classes
}

// Init compiles the field, replaces it with the widget and registers the
// event handlers. A non-blank raw value is rewritten in canonical form.
func (i *Instance) Init() error {
	if i.destroyed {
		return ErrDestroyed
	}
	if i.initialized {
		return nil
	}

	result, tpls, err := i.compiler.compile(i.fieldName, CompileOptions{
		ReplaceOriginal: true,
		Prefix:          i.prefix,
		Mount:           i,
	})
	if err != nil {
		return err
	}

	raw, _ := i.doc.Element(i.binding.Identifier)
	i.tpls = tpls
	i.binding = result.Binding
	i.container = NewContainer(i.binding.Identifier, raw, result.Rows())
	if strings.TrimSpace(i.container.RawValue()) != "" {
		i.syncRows()
	}

	if err := i.registerHandlers(); err != nil {
		i.doc.Handlers().Unregister(i.Identifier())
		return err
	}
	i.initialized = true
	i.logger.Debug("hstore widget initialized", "field", i.fieldName, "prefix", i.prefix, "rows", i.container.Len())
	return nil
}

// Initialized reports whether Init succeeded.
func (i *Instance) Initialized() bool {
	return i.initialized && !i.destroyed
}

// AddRow appends an empty row. The raw value is unchanged until the row is
// edited.
func (i *Instance) AddRow() error {
	if err := i.ready(ViewStructured); err != nil {
		return err
	}
	i.container.appendRow(model.Row{})
	return nil
}

// RemoveRow deletes the row at idx and resynchronizes.
func (i *Instance) RemoveRow(idx int) error {
	if err := i.ready(ViewStructured); err != nil {
		return err
	}
	if err := i.container.removeRow(idx); err != nil {
		return fmt.Errorf("%w: %d", err, idx)
	}
	i.syncRows()
	return nil
}

// EditKey sets the key of row idx and resynchronizes.
func (i *Instance) EditKey(idx int, key string) error {
	if err := i.ready(ViewStructured); err != nil {
		return err
	}
	if err := i.container.setKey(idx, key); err != nil {
		return fmt.Errorf("%w: %d", err, idx)
	}
	i.syncRows()
	return nil
}

// EditValue sets the value of row idx and resynchronizes.
func (i *Instance) EditValue(idx int, value string) error {
	if err := i.ready(ViewStructured); err != nil {
		return err
	}
	if err := i.container.setValue(idx, value); err != nil {
		return fmt.Errorf("%w: %d", err, idx)
	}
	i.syncRows()
	return nil
}

// EditRaw replaces the raw text while the raw view is shown. The text is
// validated when toggling back.
func (i *Instance) EditRaw(text string) error {
	if err := i.ready(ViewRaw); err != nil {
		return err
	}
	i.container.setRaw(text)
	i.binding.RawValue = text
	return nil
}

// Toggle switches views. Leaving the raw view with invalid JSON alerts the
// user, keeps the raw view and returns the validation error.
func (i *Instance) Toggle() (View, error) {
	if err := i.ready(""); err != nil {
		return i.State(), err
	}
	view, result, err := i.toggle.Toggle(i.container)
	if err != nil {
		return view, err
	}
	if result != nil {
		i.binding.Accept(i.container.RawValue(), result.Mapping)
	}
	i.logger.Debug("hstore view toggled", "field", i.fieldName, "view", string(view))
	return view, nil
}

// Rows returns a copy of the current rows.
func (i *Instance) Rows() []model.Row {
	if i.container == nil {
		return nil
	}
	return i.container.Rows()
}

// RawValue returns the current raw text.
func (i *Instance) RawValue() string {
	if i.container == nil {
		if field, ok := i.doc.Element(i.binding.Identifier); ok {
			return field.Value
		}
		return ""
	}
	return i.container.RawValue()
}

// Mapping returns the mapping the current rows fold into.
func (i *Instance) Mapping() *model.Mapping {
	return model.MappingFromRows(i.Rows())
}

// Binding returns a copy of the field binding.
func (i *Instance) Binding() model.FieldBinding {
	binding := i.binding
	if binding.Parsed != nil {
		binding.Parsed = binding.Parsed.Clone()
	}
	return binding
}

// State returns the current view.
func (i *Instance) State() View {
	return i.toggle.State()
}

// Render produces the markup for the current state.
func (i *Instance) Render() (string, error) {
	if !i.Initialized() {
		return "", ErrNotInitialized
	}
	binding := i.binding
	binding.RawValue = i.container.RawValue()
	markup, _, err := i.compiler.render(i.tpls, binding, i.container.rows, i.State() == ViewStructured, i.prefix)
	return markup, err
}

// Destroy unregisters the instance handlers and removes the widget and its
// raw element from the document.
func (i *Instance) Destroy() {
	if i.destroyed {
		return
	}
	removed := i.doc.Handlers().Unregister(i.Identifier())
	if i.initialized {
		i.doc.RemoveWidget(i.ID(), i.Identifier())
	}
	i.destroyed = true
	i.logger.Debug("hstore widget destroyed", "field", i.fieldName, "handlers", removed)
}

func (i *Instance) ready(view View) error {
	switch {
	case i.destroyed:
		return ErrDestroyed
	case !i.initialized:
		return ErrNotInitialized
	case view != "" && i.State() != view:
		return fmt.Errorf("%w: %s", ErrViewInactive, i.State())
	}
	return nil
}

func (i *Instance) syncRows() {
	text, mapping := i.sync.SyncFromRows(i.container)
	i.binding.Accept(text, mapping)
}

func (i *Instance) registerHandlers() error {
	handlers := i.doc.Handlers()
	container := i.Identifier()

	registrations := []struct {
		kind    page.EventType
		class   string
		handler page.Handler
	}{
		{page.EventClick, i.classes.Add, func(page.Event) error { return i.AddRow() }},
		{page.EventClick, i.classes.Remove, func(evt page.Event) error { return i.RemoveRow(evt.Row) }},
		{page.EventClick, i.classes.Toggle, i.onToggle},
		{page.EventKeyUp, i.classes.Input, i.onRowKeyUp},
		{page.EventKeyUp, i.classes.Textarea, func(evt page.Event) error { return i.EditRaw(evt.Value) }},
	}
	for _, reg := range registrations {
		if err := handlers.Register(container, reg.kind, reg.class, reg.handler); err != nil {
			return err
		}
	}
	return nil
}

// onToggle swallows invalid JSON: the user was already alerted.
func (i *Instance) onToggle(page.Event) error {
	if _, err := i.Toggle(); err != nil && !IsInvalidJSON(err) {
		return err
	}
	return nil
}

func (i *Instance) onRowKeyUp(evt page.Event) error {
	if evt.Input == page.InputKey {
		return i.EditKey(evt.Row, evt.Value)
	}
	return i.EditValue(evt.Row, evt.Value)
}
