package openapi

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const lintSpec = `
openapi: 3.0.3
info:
  title: Lint
  version: "1.0"
paths:
  /things:
    post:
      operationId: createThing
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                bad_flag:
                  type: object
                  x-hstore: "yes"
                numbers:
                  type: object
                  x-hstore: true
                  additionalProperties:
                    type: integer
                shaped:
                  type: object
                  format: hstore
                  properties:
                    a:
                      type: string
                  default:
                    a: "1"
                    nested:
                      b: "2"
                fine:
                  type: object
                  x-hstore: true
                  default:
                    a: "1"
      responses:
        "201":
          description: created
`

func TestLint_ReportsViolations(t *testing.T) {
	doc := MustNewDocument(SourceFromFile("lint.yaml"), []byte(lintSpec))

	violations, err := Lint(context.Background(), doc)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}

	var got []string
	for _, v := range violations {
		got = append(got, v.String())
	}
	base := "operation > createThing > requestBody > application/json > "
	want := []string{
		base + "properties.bad_flag -> x-hstore must be a boolean, found string",
		base + "properties.numbers -> hstore values must be strings, found integer",
		base + "properties.shaped -> hstore property must not declare properties",
		base + `properties.shaped -> default value for "nested" must be a scalar`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestLint_CleanDocument(t *testing.T) {
	violations, err := Lint(context.Background(), MustNewDocument(SourceFromFile("products.yaml"), []byte(productsSpec)))
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}
