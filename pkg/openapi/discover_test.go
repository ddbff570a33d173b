package openapi

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-hstore/pkg/page"
	"github.com/goliatone/go-hstore/pkg/widgets"
)

const productsSpec = `
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
              required: [attributes]
              properties:
                name:
                  type: string
                attributes:
                  type: object
                  title: Attributes
                  description: Free form product attributes
                  additionalProperties:
                    type: string
                  default:
                    size: XL
                    color: red
                tags:
                  type: array
                  items:
                    type: string
      responses:
        "201":
          description: created
  /products/{id}:
    patch:
      operationId: updateProduct
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                extra:
                  type: string
                  format: hstore
                meta:
                  type: object
                  x-hstore: true
                counts:
                  type: object
                  additionalProperties:
                    type: integer
      responses:
        "200":
          description: updated
`

func testDocument(t *testing.T) Document {
	t.Helper()
	return MustNewDocument(SourceFromFile("products.yaml"), []byte(productsSpec))
}

func TestDiscover_SingleOperation(t *testing.T) {
	fields, err := Discover(context.Background(), testDocument(t), "createProduct")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(fields) != 1 {
		t.Fatalf("expected one field, got %d", len(fields))
	}

	field := fields[0]
	if field.Name != "attributes" || !field.Required || field.Title != "Attributes" {
		t.Fatalf("unexpected field: %+v", field)
	}
	if field.Default == nil {
		t.Fatalf("expected default mapping")
	}
	if diff := cmp.Diff([]string{"color", "size"}, field.Default.Keys()); diff != "" {
		t.Fatalf("default keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_AllOperationsSorted(t *testing.T) {
	fields, err := Discover(context.Background(), testDocument(t), "")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	var got []string
	for _, field := range fields {
		got = append(got, field.Operation+"."+field.Name)
	}
	want := []string{"createProduct.attributes", "updateProduct.extra", "updateProduct.meta"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_UnknownOperation(t *testing.T) {
	_, err := Discover(context.Background(), testDocument(t), "deleteProduct")
	if !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
}

func TestDiscover_InvalidDocument(t *testing.T) {
	doc := MustNewDocument(SourceFromFile("broken.yaml"), []byte("openapi: [unclosed"))
	if _, err := Discover(context.Background(), doc, ""); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestDiscover_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Discover(ctx, testDocument(t), ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestField_Spec(t *testing.T) {
	fields, err := Discover(context.Background(), testDocument(t), "createProduct")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	got := fields[0].Spec()
	want := page.FieldSpec{
		Name:  "attributes",
		Value: "{\n    \"color\": \"red\",\n    \"size\": \"XL\"\n}",
		Label: "Attributes",
		Help:  "Free form product attributes",
		Metadata: map[string]string{
			widgets.MetaFormat: FormatHStore,
			MetaOperation:      "createProduct",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("spec mismatch (-want +got):\n%s", diff)
	}

	doc := page.New()
	if _, err := doc.AddField(got); err != nil {
		t.Fatalf("add field: %v", err)
	}
	field, ok := doc.Element("id_attributes")
	if !ok {
		t.Fatalf("expected field in document")
	}
	if !widgets.NewRegistry().IsHStore(field) {
		t.Fatalf("expected registry to match discovered field")
	}
}

func TestField_SpecWithoutDefault(t *testing.T) {
	spec := Field{Name: "extra", Operation: "updateProduct"}.Spec()
	if spec.Value != "" || spec.Label != "extra" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}
