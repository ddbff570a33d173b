package widget

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-hstore/pkg/model"
	"github.com/goliatone/go-hstore/pkg/page"
	"github.com/goliatone/go-hstore/pkg/testsupport"
)

func newInitialized(t *testing.T, doc *page.Document, field string, options ...Option) *Instance {
	t.Helper()
	inst, err := New(doc, field, options...)
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}
	if err := inst.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	return inst
}

func TestInstance_ToggleRoundTrip(t *testing.T) {
	doc := testsupport.Document(t, testsupport.HStoreSpec("data", `{"x": "1"}`))
	inst := newInitialized(t, doc, "data")

	if inst.State() != ViewStructured {
		t.Fatalf("initial state = %s", inst.State())
	}

	view, err := inst.Toggle()
	if err != nil || view != ViewRaw {
		t.Fatalf("toggle to raw = %s, %v", view, err)
	}
	if got := inst.RawValue(); got != "{\n    \"x\": \"1\"\n}" {
		t.Fatalf("raw value = %q", got)
	}

	view, err = inst.Toggle()
	if err != nil || view != ViewStructured {
		t.Fatalf("toggle to structured = %s, %v", view, err)
	}
	want := []model.Row{{Key: "x", Value: "1"}}
	if diff := cmp.Diff(want, inst.Rows()); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestInstance_AbortOnInvalidJSON(t *testing.T) {
	doc := testsupport.Document(t, testsupport.HStoreSpec("data", `{"x": "1"}`))
	notifier := &recordingNotifier{}
	inst := newInitialized(t, doc, "data", WithNotifier(notifier))

	if _, err := inst.Toggle(); err != nil {
		t.Fatalf("toggle to raw: %v", err)
	}
	if err := inst.EditRaw("{invalid"); err != nil {
		t.Fatalf("edit raw: %v", err)
	}

	view, err := inst.Toggle()
	if !IsInvalidJSON(err) {
		t.Fatalf("expected invalid JSON error, got %v", err)
	}
	if view != ViewRaw || inst.State() != ViewRaw {
		t.Fatalf("state must stay raw, got %s", inst.State())
	}
	if inst.RawValue() != "{invalid" {
		t.Fatalf("raw text changed: %q", inst.RawValue())
	}
	if diff := cmp.Diff([]model.Row{{Key: "x", Value: "1"}}, inst.Rows()); diff != "" {
		t.Fatalf("rows changed (-want +got):\n%s", diff)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected one alert, got %d", len(notifier.messages))
	}
}

func TestInstance_EmptyValue(t *testing.T) {
	doc := testsupport.Document(t, testsupport.HStoreSpec("data", ""))
	inst := newInitialized(t, doc, "data")

	if len(inst.Rows()) != 0 || inst.Mapping().Len() != 0 {
		t.Fatalf("expected no rows, got %v", inst.Rows())
	}
	if inst.RawValue() != "" {
		t.Fatalf("empty raw value must be left alone, got %q", inst.RawValue())
	}
}

func TestInstance_InitCanonicalizesRawValue(t *testing.T) {
	doc := testsupport.Document(t, testsupport.HStoreSpec("data", `{"b":2,"a":"1","b":"3"}`))
	inst := newInitialized(t, doc, "data")

	want := "{\n    \"b\": \"3\",\n    \"a\": \"1\"\n}"
	if inst.RawValue() != want {
		t.Fatalf("raw value = %q, want %q", inst.RawValue(), want)
	}
	if got := doc.Submit().Get("data"); got != want {
		t.Fatalf("submitted value = %q", got)
	}
}

func TestInstance_InitInvalidJSONLeavesField(t *testing.T) {
	doc := testsupport.Document(t, testsupport.HStoreSpec("data", "[1, 2]"))
	inst, err := New(doc, "data", WithNotifier(&recordingNotifier{}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := inst.Init(); !IsInvalidJSON(err) {
		t.Fatalf("expected invalid JSON, got %v", err)
	}
	if inst.Initialized() {
		t.Fatal("instance must not be initialized")
	}
	if doc.Handlers().Count("id_data") != 0 {
		t.Fatal("no handlers expected")
	}
	if err := inst.AddRow(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestInstance_EventsDriveRows(t *testing.T) {
	doc := testsupport.Document(t, testsupport.HStoreSpec("data", `{"a": "1"}`))
	inst := newInitialized(t, doc, "data")
	classes := inst.Classes()
	id := inst.Identifier()

	dispatch := func(evt page.Event) {
		t.Helper()
		handled, err := doc.Dispatch(evt)
		if err != nil {
			t.Fatalf("dispatch %+v: %v", evt, err)
		}
		if !handled {
			t.Fatalf("event not handled: %+v", evt)
		}
	}

	before := inst.RawValue()
	dispatch(page.Click(id, classes.Add))
	if len(inst.Rows()) != 2 {
		t.Fatalf("expected 2 rows, got %v", inst.Rows())
	}
	if inst.RawValue() != before {
		t.Fatal("adding a row must not resync")
	}

	dispatch(page.KeyUp(id, classes.Input, 1, page.InputKey, "b"))
	dispatch(page.KeyUp(id, classes.Input, 1, page.InputValue, "2"))
	if want := "{\n    \"a\": \"1\",\n    \"b\": \"2\"\n}"; inst.RawValue() != want {
		t.Fatalf("raw after edits = %q, want %q", inst.RawValue(), want)
	}

	dispatch(page.RowClick(id, classes.Remove, 0))
	if want := "{\n    \"b\": \"2\"\n}"; inst.RawValue() != want {
		t.Fatalf("raw after remove = %q, want %q", inst.RawValue(), want)
	}

	dispatch(page.Click(id, classes.Toggle))
	if inst.State() != ViewRaw {
		t.Fatalf("expected raw view, got %s", inst.State())
	}
	dispatch(page.KeyUp(id, classes.Textarea, -1, 0, `{"z": "26"}`))
	dispatch(page.Click(id, classes.Toggle))
	if diff := cmp.Diff([]model.Row{{Key: "z", Value: "26"}}, inst.Rows()); diff != "" {
		t.Fatalf("rows after raw edit (-want +got):\n%s", diff)
	}
	if want := "{\n    \"z\": \"26\"\n}"; inst.RawValue() != want {
		t.Fatalf("raw not canonicalized: %q", inst.RawValue())
	}
}

func TestInstance_ToggleEventSwallowsInvalidJSON(t *testing.T) {
	doc := testsupport.Document(t, testsupport.HStoreSpec("data", `{"a": "1"}`))
	notifier := &recordingNotifier{}
	inst := newInitialized(t, doc, "data", WithNotifier(notifier))
	id := inst.Identifier()

	if _, err := doc.Dispatch(page.Click(id, inst.Classes().Toggle)); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	_ = inst.EditRaw("{invalid")
	if _, err := doc.Dispatch(page.Click(id, inst.Classes().Toggle)); err != nil {
		t.Fatalf("invalid JSON must be reported through the notifier, got %v", err)
	}
	if len(notifier.messages) != 1 || inst.State() != ViewRaw {
		t.Fatalf("alerts=%d state=%s", len(notifier.messages), inst.State())
	}
}

func TestInstance_ViewGuards(t *testing.T) {
	doc := testsupport.Document(t, testsupport.HStoreSpec("data", `{"a": "1"}`))
	inst := newInitialized(t, doc, "data")

	if err := inst.EditRaw("{}"); !errors.Is(err, ErrViewInactive) {
		t.Fatalf("expected ErrViewInactive in structured view, got %v", err)
	}
	if err := inst.RemoveRow(5); !errors.Is(err, ErrRowOutOfRange) {
		t.Fatalf("expected ErrRowOutOfRange, got %v", err)
	}

	if _, err := inst.Toggle(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := inst.AddRow(); !errors.Is(err, ErrViewInactive) {
		t.Fatalf("expected ErrViewInactive in raw view, got %v", err)
	}
	if err := inst.EditKey(0, "b"); !errors.Is(err, ErrViewInactive) {
		t.Fatalf("expected ErrViewInactive in raw view, got %v", err)
	}
}

func TestInstance_RenderReflectsView(t *testing.T) {
	doc := testsupport.Document(t, testsupport.HStoreSpec("data", `{"color": "red"}`))
	inst := newInitialized(t, doc, "data")

	markup, err := inst.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, fragment := range []string{`class="hstore"`, `value="color"`, `value="red"`, "Show raw JSON"} {
		if !strings.Contains(markup, fragment) {
			t.Fatalf("expected %q in markup:\n%s", fragment, markup)
		}
	}

	if _, err := inst.Toggle(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	markup, err = inst.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(markup, "Show rows") {
		t.Fatalf("raw view markup expected, got:\n%s", markup)
	}

	mounted, ok := doc.Widget(inst.ID())
	if !ok || mounted != page.Widget(inst) {
		t.Fatal("instance should be mounted in the document")
	}
}

func TestInstance_SetPrefixReresolvesTemplates(t *testing.T) {
	doc := testsupport.Document(t, testsupport.HStoreSpec("items-1-data", `{"a": "1"}`))
	inst := newInitialized(t, doc, "items-1-data", WithPrefix("1"))

	markup, err := inst.Render()
	if err != nil || !strings.Contains(markup, `data-prefix="1"`) {
		t.Fatalf("render before move: %v\n%s", err, markup)
	}

	if err := inst.SetPrefix("0"); err != nil {
		t.Fatalf("set prefix: %v", err)
	}
	if inst.Prefix() != "0" {
		t.Fatalf("prefix = %q", inst.Prefix())
	}
	markup, err = inst.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(markup, `data-prefix="0"`) || strings.Contains(markup, `data-prefix="1"`) {
		t.Fatalf("expected moved prefix in markup:\n%s", markup)
	}

	inst.Destroy()
	if err := inst.SetPrefix("2"); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("expected ErrDestroyed, got %v", err)
	}
}

func TestInstance_IndependentContainers(t *testing.T) {
	doc := testsupport.Document(t,
		testsupport.HStoreSpec("first", `{"a": "1"}`),
		testsupport.HStoreSpec("second", `{"a": "1"}`),
	)
	first := newInitialized(t, doc, "first")
	second := newInitialized(t, doc, "second")
	before := second.RawValue()

	if _, err := doc.Dispatch(page.KeyUp(first.Identifier(), first.Classes().Input, 0, page.InputValue, "changed")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if second.RawValue() != before {
		t.Fatal("editing one instance changed another")
	}
	if !strings.Contains(first.RawValue(), "changed") {
		t.Fatalf("first instance not updated: %q", first.RawValue())
	}
}

func TestInstance_Destroy(t *testing.T) {
	doc := testsupport.Document(t, testsupport.HStoreSpec("data", `{"a": "1"}`))
	inst := newInitialized(t, doc, "data")
	if doc.Handlers().Count(inst.Identifier()) == 0 {
		t.Fatal("expected registered handlers")
	}

	inst.Destroy()

	if doc.Handlers().Count(inst.Identifier()) != 0 {
		t.Fatal("handlers must be unregistered")
	}
	if _, ok := doc.Widget(inst.ID()); ok {
		t.Fatal("widget must be removed")
	}
	if err := inst.AddRow(); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("expected ErrDestroyed, got %v", err)
	}
	if handled, _ := doc.Dispatch(page.Click(inst.Identifier(), inst.Classes().Add)); handled {
		t.Fatal("events must no longer reach the instance")
	}
}

func TestFactory_SharesConfiguration(t *testing.T) {
	notifier := &recordingNotifier{}
	factory, err := NewFactory(WithNotifier(notifier), WithClasses(Classes{Add: "grow"}))
	if err != nil {
		t.Fatalf("new factory: %v", err)
	}
	doc := testsupport.Document(t, testsupport.HStoreSpec("data", "{bad"))

	inst, err := factory.New(doc, "data", WithPrefix("2"))
	if err != nil {
		t.Fatalf("factory new: %v", err)
	}
	if inst.Prefix() != "2" || inst.Classes().Add != "grow" || inst.Classes().Remove != "remove-row" {
		t.Fatalf("unexpected settings prefix=%q classes=%+v", inst.Prefix(), inst.Classes())
	}
	if err := inst.Init(); !IsInvalidJSON(err) {
		t.Fatalf("expected invalid JSON, got %v", err)
	}
	if len(notifier.messages) != 1 {
		t.Fatal("factory notifier should be used")
	}
}
