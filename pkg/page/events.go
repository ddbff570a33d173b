package page

import (
	"errors"
	"strings"
	"sync"
)

// EventType names the interaction that produced an event.
type EventType string

const (
	EventClick EventType = "click"
	EventKeyUp EventType = "keyup"
)

// Input positions inside a row: the key input comes first, the value second.
const (
	InputKey   = 0
	InputValue = 1
)

// Event is a user interaction routed to the handlers of one container.
type Event struct {
	Type      EventType
	Container string
	// Class is the class of the control the event originated from.
	Class string
	// Row is the zero-based row index for row-scoped controls, -1 otherwise.
	Row int
	// Input selects the key or value input for row keyups.
	Input int
	// Value carries the current text of the input for keyups.
	Value string
}

// Click builds a click event for a container control.
func Click(container, class string) Event {
	return Event{Type: EventClick, Container: container, Class: class, Row: -1}
}

// RowClick builds a click event for a control inside row.
func RowClick(container, class string, row int) Event {
	return Event{Type: EventClick, Container: container, Class: class, Row: row}
}

// KeyUp builds a keyup event carrying the new text of a control.
func KeyUp(container, class string, row, input int, value string) Event {
	return Event{Type: EventKeyUp, Container: container, Class: class, Row: row, Input: input, Value: value}
}

// Handler reacts to an event.
type Handler func(Event) error

// ErrContainerRequired is returned when registering without a container id.
var ErrContainerRequired = errors.New("page: container id is required")

type binding struct {
	kind    EventType
	class   string
	handler Handler
}

// Handlers keeps event handlers keyed by container identity so instances are
// isolated from one another and can be torn down with their container.
type Handlers struct {
	mu         sync.RWMutex
	containers map[string][]binding
}

// NewHandlers returns an empty registry.
func NewHandlers() *Handlers {
	return &Handlers{containers: make(map[string][]binding)}
}

// Register attaches handler to events of kind originating from class inside
// container.
func (h *Handlers) Register(container string, kind EventType, class string, handler Handler) error {
	container = strings.TrimSpace(container)
	if container == "" {
		return ErrContainerRequired
	}
	if handler == nil {
		return errors.New("page: handler is required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.containers[container] = append(h.containers[container], binding{
		kind:    kind,
		class:   strings.TrimSpace(class),
		handler: handler,
	})
	return nil
}

// Unregister drops every handler of container and reports how many were
// removed.
func (h *Handlers) Unregister(container string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	removed := len(h.containers[container])
	delete(h.containers, container)
	return removed
}

// Count reports the handlers registered for container.
func (h *Handlers) Count(container string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.containers[container])
}

// Containers returns the number of containers with registered handlers.
func (h *Handlers) Containers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.containers)
}

// Dispatch runs the handlers of the event's container that match its type and
// class, in registration order. It reports whether any handler ran.
func (h *Handlers) Dispatch(evt Event) (bool, error) {
	h.mu.RLock()
	candidates := append([]binding(nil), h.containers[evt.Container]...)
	h.mu.RUnlock()

	handled := false
	for _, b := range candidates {
		if b.kind != evt.Type || b.class != evt.Class {
			continue
		}
		handled = true
		if err := b.handler(evt); err != nil {
			return true, err
		}
	}
	return handled, nil
}
