package hstore

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-hstore/pkg/page"
	"github.com/goliatone/go-hstore/pkg/testsupport"
)

func TestDecodeForm_RoundTripsBoundDocument(t *testing.T) {
	doc, _ := testsupport.InlineDocument(t, "items", "data", false, `{"a": "1"}`, "")
	engine := newEngine(t)
	if _, err := engine.BindAll(doc); err != nil {
		t.Fatalf("bind all: %v", err)
	}

	first, ok := engine.Binder().Instance(doc, "items-0-data")
	if !ok {
		t.Fatalf("expected first inline instance")
	}
	if _, err := doc.Dispatch(page.KeyUp(first.Identifier(), first.Classes().Input, 0, page.InputKey, "b")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	decoded, err := DecodeForm(doc.Submit(), "items-0-data", "items-1-data")
	if err != nil {
		t.Fatalf("decode form: %v", err)
	}
	got := map[string]map[string]string{}
	for name, mapping := range decoded {
		got[name] = mapping.Map()
	}
	want := map[string]map[string]string{
		"items-0-data": {"b": "1"},
		"items-1-data": {},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeForm_CollectsFieldErrors(t *testing.T) {
	values := url.Values{
		"good": {`{"k": "v"}`},
		"bad":  {`{oops`},
	}

	decoded, err := DecodeForm(values)
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := decoded["good"]; !ok || len(decoded) != 1 {
		t.Fatalf("expected only good field decoded, got %v", decoded)
	}
}
