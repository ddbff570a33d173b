package hstore

import (
	"context"

	pkgopenapi "github.com/goliatone/go-hstore/pkg/openapi"
	"github.com/goliatone/go-hstore/pkg/page"
)

// NewLoader constructs an OpenAPI document loader.
func NewLoader(options ...pkgopenapi.LoaderOption) *pkgopenapi.Loader {
	return pkgopenapi.NewLoader(options...)
}

// DocumentFromOpenAPI loads source and builds a page holding one field per
// hstore-shaped request body property of operationID (all operations when
// empty).
func DocumentFromOpenAPI(ctx context.Context, loader *pkgopenapi.Loader, source pkgopenapi.Source, operationID string) (*page.Document, error) {
	if loader == nil {
		loader = NewLoader()
	}
	doc, err := loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	fields, err := pkgopenapi.Discover(ctx, doc, operationID)
	if err != nil {
		return nil, err
	}

	out := page.New()
	for _, field := range fields {
		if _, err := out.AddField(field.Spec()); err != nil {
			return nil, err
		}
	}
	return out, nil
}
