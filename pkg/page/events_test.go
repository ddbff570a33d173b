package page

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHandlers_DispatchScopedToContainer(t *testing.T) {
	handlers := NewHandlers()
	var calls []string

	mustRegister(t, handlers, "a", EventClick, "add-row", func(Event) error {
		calls = append(calls, "a:add")
		return nil
	})
	mustRegister(t, handlers, "b", EventClick, "add-row", func(Event) error {
		calls = append(calls, "b:add")
		return nil
	})
	mustRegister(t, handlers, "a", EventKeyUp, "hstore-input", func(evt Event) error {
		calls = append(calls, "a:keyup:"+evt.Value)
		return nil
	})

	if handled, err := handlers.Dispatch(Click("a", "add-row")); err != nil || !handled {
		t.Fatalf("dispatch click: handled=%v err=%v", handled, err)
	}
	if handled, _ := handlers.Dispatch(KeyUp("a", "hstore-input", 0, InputKey, "k")); !handled {
		t.Fatalf("expected keyup handled")
	}
	if handled, _ := handlers.Dispatch(Click("c", "add-row")); handled {
		t.Fatalf("unknown container must not be handled")
	}
	if handled, _ := handlers.Dispatch(Click("a", "remove-row")); handled {
		t.Fatalf("unmatched class must not be handled")
	}

	want := []string{"a:add", "a:keyup:k"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlers_UnregisterDropsContainer(t *testing.T) {
	handlers := NewHandlers()
	noop := func(Event) error { return nil }
	mustRegister(t, handlers, "a", EventClick, "x", noop)
	mustRegister(t, handlers, "a", EventClick, "y", noop)
	mustRegister(t, handlers, "b", EventClick, "x", noop)

	if removed := handlers.Unregister("a"); removed != 2 {
		t.Fatalf("expected 2 handlers removed, got %d", removed)
	}
	if handlers.Count("a") != 0 || handlers.Containers() != 1 {
		t.Fatalf("unexpected registry state: a=%d containers=%d", handlers.Count("a"), handlers.Containers())
	}
}

func TestHandlers_PropagatesError(t *testing.T) {
	handlers := NewHandlers()
	boom := errors.New("boom")
	mustRegister(t, handlers, "a", EventClick, "x", func(Event) error { return boom })

	handled, err := handlers.Dispatch(Click("a", "x"))
	if !handled || !errors.Is(err, boom) {
		t.Fatalf("expected handled error, got handled=%v err=%v", handled, err)
	}
}

func TestHandlers_RegisterValidation(t *testing.T) {
	handlers := NewHandlers()
	if err := handlers.Register(" ", EventClick, "x", func(Event) error { return nil }); !errors.Is(err, ErrContainerRequired) {
		t.Fatalf("expected ErrContainerRequired, got %v", err)
	}
	if err := handlers.Register("a", EventClick, "x", nil); err == nil {
		t.Fatalf("expected nil handler rejected")
	}
}

func mustRegister(t *testing.T, handlers *Handlers, container string, kind EventType, class string, fn Handler) {
	t.Helper()
	if err := handlers.Register(container, kind, class, fn); err != nil {
		t.Fatalf("register: %v", err)
	}
}
