package openapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spec.yaml")
	if err := os.WriteFile(path, []byte(productsSpec), 0o644); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	doc, err := NewLoader().Load(context.Background(), SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Location() != path || string(doc.Raw()) != productsSpec {
		t.Fatalf("unexpected document from %q", doc.Location())
	}
}

func TestLoader_LoadFS(t *testing.T) {
	files := fstest.MapFS{"api/spec.yaml": {Data: []byte(productsSpec)}}

	doc, err := NewLoader(WithFileSystem(files)).Load(context.Background(), SourceFromFS("api/spec.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Source().Kind() != SourceKindFS {
		t.Fatalf("expected fs source, got %v", doc.Source().Kind())
	}
}

func TestLoader_FSNotConfigured(t *testing.T) {
	if _, err := NewLoader().Load(context.Background(), SourceFromFS("spec.yaml")); err == nil {
		t.Fatalf("expected error without filesystem")
	}
}

func TestLoader_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(productsSpec))
	}))
	defer server.Close()

	src, err := SourceFromURL(server.URL + "/spec.yaml")
	if err != nil {
		t.Fatalf("source: %v", err)
	}

	if _, err := NewLoader().Load(context.Background(), src); err == nil {
		t.Fatalf("expected http to be disabled by default")
	}

	doc, err := NewLoader(WithHTTPClient(server.Client())).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != productsSpec {
		t.Fatalf("unexpected payload")
	}
}

func TestSourceFor(t *testing.T) {
	src, err := SourceFor("https://example.com/openapi.json")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if src.Kind() != SourceKindURL {
		t.Fatalf("expected url source, got %v", src.Kind())
	}

	src, err = SourceFor("./openapi.yaml")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if src.Kind() != SourceKindFile {
		t.Fatalf("expected file source, got %v", src.Kind())
	}
}
