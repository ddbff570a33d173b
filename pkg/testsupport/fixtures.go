package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-hstore/pkg/page"
)

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

// Document builds a page with one top-level field per spec.
func Document(t *testing.T, specs ...page.FieldSpec) *page.Document {
	t.Helper()

	doc := page.New()
	for _, spec := range specs {
		if _, err := doc.AddField(spec); err != nil {
			t.Fatalf("add field %q: %v", spec.Name, err)
		}
	}
	return doc
}

// InlineDocument builds a page with a single inline group holding one form
// per raw value plus a prototype form.
func InlineDocument(t *testing.T, prefix, field string, tabular bool, values ...string) (*page.Document, *page.InlineGroup) {
	t.Helper()

	doc := page.New()
	group, err := doc.AddInlineGroup(prefix, tabular)
	if err != nil {
		t.Fatalf("add inline group: %v", err)
	}
	if _, err := group.SetPrototype(HStoreSpec(field, "")); err != nil {
		t.Fatalf("set prototype: %v", err)
	}
	for _, value := range values {
		if _, err := group.AddForm(HStoreSpec(field, value)); err != nil {
			t.Fatalf("add form: %v", err)
		}
	}
	return doc, group
}

// HStoreSpec returns a field spec marked the way the server widget marks its
// raw textarea.
func HStoreSpec(name, value string) page.FieldSpec {
	return page.FieldSpec{
		Name:    name,
		Value:   value,
		Label:   "Data",
		Help:    "Key/value attributes",
		Classes: []string{"hstore-original-textarea"},
	}
}
