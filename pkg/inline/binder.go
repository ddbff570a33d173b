// Package inline binds hstore widgets inside inline groups, the repeated
// sub-forms a host form lets the user add and remove at runtime.
package inline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-hstore/internal/logging"
	"github.com/goliatone/go-hstore/pkg/interfaces"
	"github.com/goliatone/go-hstore/pkg/page"
	"github.com/goliatone/go-hstore/pkg/widget"
	"github.com/goliatone/go-hstore/pkg/widgets"
)

// Default host affordance classes.
const (
	AddClass        = "add-row"
	GrappelliAdd    = "grp-add-handler"
	RemoveClass     = "inline-deletelink"
	GrappelliRemove = "grp-delete-handler"
)

// ErrNoFactory is returned when a binder is built without a widget factory.
var ErrNoFactory = errors.New("inline: widget factory is required")

// Option configures a Binder.
type Option func(*Binder)

// WithAddClasses replaces the classes whose clicks trigger a rescan.
func WithAddClasses(classes ...string) Option {
	return func(b *Binder) {
		if cleaned := cleanClasses(classes); len(cleaned) > 0 {
			b.addClasses = cleaned
		}
	}
}

// WithRemoveClasses replaces the classes whose clicks prune removed forms.
func WithRemoveClasses(classes ...string) Option {
	return func(b *Binder) {
		if cleaned := cleanClasses(classes); len(cleaned) > 0 {
			b.removeClasses = cleaned
		}
	}
}

// WithPlaceholder overrides the token marking prototype field names.
func WithPlaceholder(token string) Option {
	return func(b *Binder) {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			b.placeholder = trimmed
		}
	}
}

// WithLogger sets the binder logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type tracked struct {
	instance *widget.Instance
	form     *page.InlineForm
}

// bindState is what the binder knows about one document.
type bindState struct {
	initialized bool
	bound       []string
	instances   map[string]tracked
}

// Binder initializes one widget per hstore field of every inline form and
// keeps doing so as forms are added. Its listeners are bound once per
// document lifecycle; Initialized exposes that guard.
type Binder struct {
	mu sync.Mutex

	factory       *widget.Factory
	registry      *widgets.Registry
	logger        interfaces.Logger
	placeholder   string
	addClasses    []string
	removeClasses []string

	docs map[*page.Document]*bindState
}

// New constructs a binder. A nil registry falls back to the built-in matchers.
func New(factory *widget.Factory, registry *widgets.Registry, options ...Option) (*Binder, error) {
	if factory == nil {
		return nil, ErrNoFactory
	}
	if registry == nil {
		registry = widgets.NewRegistry()
	}
	b := &Binder{
		factory:       factory,
		registry:      registry,
		logger:        logging.NoOp(),
		placeholder:   page.PrefixPlaceholder,
		addClasses:    []string{AddClass, GrappelliAdd},
		removeClasses: []string{RemoveClass, GrappelliRemove},
		docs:          make(map[*page.Document]*bindState),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// Initialized reports whether Bind already ran for doc.
func (b *Binder) Initialized(doc *page.Document) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.docs[doc]
	return ok && state.initialized
}

// Bind registers add and remove listeners on every non-tabular inline group
// of doc and initializes the forms already present. Later calls for the same
// document are no-ops until Unbind.
func (b *Binder) Bind(doc *page.Document) error {
	if doc == nil {
		return errors.New("inline: document is required")
	}
	b.mu.Lock()
	state := b.stateLocked(doc)
	if state.initialized {
		b.mu.Unlock()
		b.logger.Debug("inline binder already initialized")
		return nil
	}
	state.initialized = true
	b.mu.Unlock()

	var errs []error
	for _, group := range doc.Groups() {
		if group.Tabular {
			b.logger.Debug("hstore widget does not support tabular inlines", "group", group.Prefix)
			continue
		}
		if err := b.listen(doc, group); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := b.Rescan(doc, group); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Unbind drops doc's listeners, destroys every instance the binder created
// for it and resets its guard.
func (b *Binder) Unbind(doc *page.Document) {
	if doc == nil {
		return
	}
	b.mu.Lock()
	state, ok := b.docs[doc]
	delete(b.docs, doc)
	b.mu.Unlock()
	if !ok {
		return
	}

	for _, container := range state.bound {
		doc.Handlers().Unregister(container)
	}
	for _, entry := range state.instances {
		entry.instance.Destroy()
	}
}

// Rescan initializes a widget for every hstore field of group's live forms
// that does not have one yet, passing the form's display position as prefix.
// Instances of forms no longer in the group are destroyed and the survivors
// move to their current position. Failures are logged per field and returned
// joined; they never stop other fields.
func (b *Binder) Rescan(doc *page.Document, group *page.InlineGroup) error {
	if doc == nil || group == nil || group.Tabular {
		return nil
	}
	b.prune(doc, group)

	var errs []error
	for idx, form := range group.Forms() {
		prefix := strconv.Itoa(idx)
		for _, container := range form.Containers() {
			field := container.Field()
			if field == nil || strings.Contains(field.Name, b.placeholder) {
				continue
			}
			if existing, ok := b.lookup(doc, field.ID); ok {
				if existing.Prefix() == prefix {
					continue
				}
				if err := existing.SetPrefix(prefix); err != nil {
					b.logger.Error("hstore inline prefix update failed", "field", field.Name, "prefix", prefix, "error", err)
					errs = append(errs, fmt.Errorf("inline: move %s: %w", field.Name, err))
					continue
				}
				b.logger.Debug("hstore inline moved", "field", field.Name, "prefix", prefix)
				continue
			}
			if container.Detached() || !b.registry.IsHStore(field) {
				continue
			}

			inst, err := b.factory.New(doc, field.Name, widget.WithPrefix(prefix))
			if err == nil {
				err = inst.Init()
			}
			if err != nil {
				b.logger.Error("hstore inline init failed", "field", field.Name, "prefix", prefix, "error", err)
				errs = append(errs, fmt.Errorf("inline: init %s: %w", field.Name, err))
				continue
			}

			b.mu.Lock()
			b.stateLocked(doc).instances[field.ID] = tracked{instance: inst, form: form}
			b.mu.Unlock()
			b.logger.Debug("hstore inline initialized", "field", field.Name, "prefix", prefix)
		}
	}
	return errors.Join(errs...)
}

// Instances returns the group's widgets in display order.
func (b *Binder) Instances(group *page.InlineGroup) []*widget.Instance {
	if group == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.docs[group.Document()]
	if !ok {
		return nil
	}

	var out []*widget.Instance
	for _, form := range group.Forms() {
		for _, container := range form.Containers() {
			if entry, ok := state.instances[container.Field().ID]; ok {
				out = append(out, entry.instance)
			}
		}
	}
	return out
}

// Instance returns the widget bound to the field of doc with the given name.
func (b *Binder) Instance(doc *page.Document, fieldName string) (*widget.Instance, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.docs[doc]
	if !ok {
		return nil, false
	}
	for _, entry := range state.instances {
		if entry.instance.FieldName() == fieldName {
			return entry.instance, true
		}
	}
	return nil, false
}

func (b *Binder) listen(doc *page.Document, group *page.InlineGroup) error {
	container := group.EventContainer()
	handlers := doc.Handlers()

	for _, class := range b.addClasses {
		err := handlers.Register(container, page.EventClick, class, func(page.Event) error {
			return b.Rescan(doc, group)
		})
		if err != nil {
			return err
		}
	}
	for _, class := range b.removeClasses {
		err := handlers.Register(container, page.EventClick, class, func(page.Event) error {
			b.prune(doc, group)
			return nil
		})
		if err != nil {
			return err
		}
	}

	b.mu.Lock()
	state := b.stateLocked(doc)
	state.bound = append(state.bound, container)
	b.mu.Unlock()
	return nil
}

// prune destroys the instances of doc whose form left group.
func (b *Binder) prune(doc *page.Document, group *page.InlineGroup) {
	b.mu.Lock()
	var stale []*widget.Instance
	if state, ok := b.docs[doc]; ok {
		for id, entry := range state.instances {
			if entry.form.Group() != group || entry.form.Index() >= 0 {
				continue
			}
			stale = append(stale, entry.instance)
			delete(state.instances, id)
		}
	}
	b.mu.Unlock()

	for _, inst := range stale {
		inst.Destroy()
		b.logger.Debug("hstore inline destroyed", "field", inst.FieldName())
	}
}

func (b *Binder) lookup(doc *page.Document, id string) (*widget.Instance, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.docs[doc]
	if !ok {
		return nil, false
	}
	entry, ok := state.instances[id]
	return entry.instance, ok
}

// stateLocked returns doc's state, creating it. b.mu must be held.
func (b *Binder) stateLocked(doc *page.Document) *bindState {
	state, ok := b.docs[doc]
	if !ok {
		state = &bindState{instances: make(map[string]tracked)}
		b.docs[doc] = state
	}
	return state
}

func cleanClasses(classes []string) []string {
	out := make([]string, 0, len(classes))
	for _, class := range classes {
		if trimmed := strings.TrimSpace(class); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
