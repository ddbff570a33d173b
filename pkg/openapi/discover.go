package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-hstore/pkg/model"
	"github.com/goliatone/go-hstore/pkg/page"
	"github.com/goliatone/go-hstore/pkg/widgets"
)

// Schema markers that opt a property into the widget explicitly.
const (
	FormatHStore    = "hstore"
	ExtensionHStore = "x-hstore"
)

// MetaOperation records the operation a discovered field came from.
const MetaOperation = "openapi.operation"

// ErrOperationNotFound is returned when the requested operation id is absent.
var ErrOperationNotFound = errors.New("openapi: operation not found")

// Field is a request body property holding a string-to-string map.
type Field struct {
	Operation   string
	Name        string
	Title       string
	Description string
	Required    bool
	Default     *model.Mapping
}

// Spec converts the field into a page field spec whose value is the default
// mapping in canonical form.
func (f Field) Spec() page.FieldSpec {
	label := f.Title
	if label == "" {
		label = f.Name
	}
	value := ""
	if f.Default != nil && f.Default.Len() > 0 {
		value = model.Serialize(f.Default)
	}
	return page.FieldSpec{
		Name:  f.Name,
		Value: value,
		Label: label,
		Help:  f.Description,
		Metadata: map[string]string{
			widgets.MetaFormat: FormatHStore,
			MetaOperation:      f.Operation,
		},
	}
}

var methodOrder = []string{"GET", "PUT", "POST", "DELETE", "PATCH", "HEAD", "OPTIONS", "TRACE"}

// Discover lists the hstore-shaped request body properties of operationID,
// or of every operation when operationID is empty. Operations without an id
// are named "<method>:<path>".
func Discover(ctx context.Context, doc Document, operationID string) ([]Field, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}

	operationID = strings.TrimSpace(operationID)
	found := false
	var fields []Field

	if spec.Paths != nil {
		items := spec.Paths.Map()
		paths := make([]string, 0, len(items))
		for path := range items {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		for _, path := range paths {
			item := items[path]
			if item == nil {
				continue
			}
			for _, method := range methodOrder {
				operation := item.GetOperation(method)
				if operation == nil {
					continue
				}
				id := operation.OperationID
				if id == "" {
					id = strings.ToLower(method) + ":" + path
				}
				if operationID != "" && id != operationID {
					continue
				}
				found = true
				fields = append(fields, requestFields(id, operation.RequestBody)...)
			}
		}
	}

	if operationID != "" && !found {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, operationID)
	}
	return fields, nil
}

// IsHStoreSchema reports whether schema describes a flat string map.
func IsHStoreSchema(schema *openapi3.Schema) bool {
	if schema == nil {
		return false
	}
	if strings.EqualFold(schema.Format, FormatHStore) {
		return true
	}
	if marked, ok := schema.Extensions[ExtensionHStore].(bool); ok && marked {
		return true
	}
	if schema.Type == nil || !schema.Type.Is(openapi3.TypeObject) || len(schema.Properties) > 0 {
		return false
	}
	values := schema.AdditionalProperties.Schema
	if values == nil || values.Value == nil || values.Value.Type == nil {
		return false
	}
	return values.Value.Type.Is(openapi3.TypeString)
}

func requestFields(operationID string, body *openapi3.RequestBodyRef) []Field {
	if body == nil || body.Value == nil {
		return nil
	}
	media := body.Value.Content.Get("application/json")
	if media == nil {
		for _, candidate := range []string{"application/x-www-form-urlencoded", "multipart/form-data"} {
			if media = body.Value.Content.Get(candidate); media != nil {
				break
			}
		}
	}
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}
	schema := media.Schema.Value

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []Field
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || !IsHStoreSchema(ref.Value) {
			continue
		}
		fields = append(fields, Field{
			Operation:   operationID,
			Name:        name,
			Title:       ref.Value.Title,
			Description: ref.Value.Description,
			Required:    required[name],
			Default:     defaultMapping(ref.Value.Default),
		})
	}
	return fields
}

// defaultMapping converts an object default into a mapping with sorted keys;
// non-string values are kept as their JSON text.
func defaultMapping(value any) *model.Mapping {
	object, ok := value.(map[string]any)
	if !ok || len(object) == 0 {
		return nil
	}
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	mapping := model.NewMapping()
	for _, key := range keys {
		switch v := object[key].(type) {
		case nil:
			mapping.Set(key, "")
		case string:
			mapping.Set(key, v)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				continue
			}
			mapping.Set(key, string(encoded))
		}
	}
	return mapping
}
