package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_RendersMarkup(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-name", "attrs", "-value", `{"color": "red"}`}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{`id="hstore-id_attrs"`, "color", "red"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRun_ReadsValueFileAndWritesOutput(t *testing.T) {
	dir := t.TempDir()
	valuePath := filepath.Join(dir, "value.json")
	if err := os.WriteFile(valuePath, []byte(`{"size": "XL"}`), 0o644); err != nil {
		t.Fatalf("write value: %v", err)
	}
	outPath := filepath.Join(dir, "out.html")

	var out bytes.Buffer
	if err := run(context.Background(), []string{"-file", valuePath, "-output", outPath}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "XL") {
		t.Fatalf("output file missing value:\n%s", data)
	}
	if !strings.Contains(out.String(), outPath) {
		t.Fatalf("expected confirmation, got %q", out.String())
	}
}

func TestRun_InvalidValue(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-value", "{broken"}, &out); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestRun_SchemaDiscovery(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "openapi.yaml")
	schema := `
openapi: 3.0.3
info:
  title: Products
  version: "1.0"
paths:
  /products:
    post:
      operationId: createProduct
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                attributes:
                  type: object
                  additionalProperties:
                    type: string
      responses:
        "201":
          description: created
`
	if err := os.WriteFile(schemaPath, []byte(schema), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), []string{"-schema", schemaPath, "-operation", "createProduct"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), `id="hstore-id_attributes"`) {
		t.Fatalf("expected attributes widget:\n%s", out.String())
	}
}
