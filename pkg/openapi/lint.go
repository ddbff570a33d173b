package openapi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Violation is a schema that misuses the hstore markers.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	return v.Location + " -> " + v.Message
}

// Lint reports request body schemas whose hstore markers cannot be honoured:
// a non-boolean x-hstore, marked objects that declare properties or
// non-string values, and defaults that are not flat objects.
func Lint(ctx context.Context, doc Document) ([]Violation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if spec.Paths == nil {
		return nil, nil
	}

	items := spec.Paths.Map()
	paths := make([]string, 0, len(items))
	for path := range items {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var result []Violation
	for _, path := range paths {
		item := items[path]
		if item == nil {
			continue
		}
		for _, method := range methodOrder {
			operation := item.GetOperation(method)
			if operation == nil || operation.RequestBody == nil || operation.RequestBody.Value == nil {
				continue
			}
			id := operation.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}

			content := operation.RequestBody.Value.Content
			mediaTypes := make([]string, 0, len(content))
			for mediaType := range content {
				mediaTypes = append(mediaTypes, mediaType)
			}
			sort.Strings(mediaTypes)
			for _, mediaType := range mediaTypes {
				media := content[mediaType]
				if media == nil || media.Schema == nil {
					continue
				}
				base := []string{"operation", id, "requestBody", mediaType}
				result = append(result, lintSchema(base, media.Schema.Value, map[*openapi3.Schema]bool{})...)
			}
		}
	}
	return result, nil
}

func lintSchema(path []string, schema *openapi3.Schema, seen map[*openapi3.Schema]bool) []Violation {
	if schema == nil || seen[schema] {
		return nil
	}
	seen[schema] = true

	var result []Violation
	report := func(format string, args ...any) {
		result = append(result, Violation{Location: strings.Join(path, " > "), Message: fmt.Sprintf(format, args...)})
	}

	if value, ok := schema.Extensions[ExtensionHStore]; ok {
		if _, isBool := value.(bool); !isBool {
			report("%s must be a boolean, found %T", ExtensionHStore, value)
		}
	}

	if marked(schema) {
		if schema.Type != nil && !schema.Type.Is(openapi3.TypeObject) && !schema.Type.Is(openapi3.TypeString) {
			report("hstore property must be an object or a string, found %s", strings.Join(schema.Type.Slice(), ","))
		}
		if len(schema.Properties) > 0 {
			report("hstore property must not declare properties")
		}
		if values := schema.AdditionalProperties.Schema; values != nil && values.Value != nil && values.Value.Type != nil &&
			!values.Value.Type.Is(openapi3.TypeString) {
			report("hstore values must be strings, found %s", strings.Join(values.Value.Type.Slice(), ","))
		}
		result = append(result, lintDefault(path, schema.Default)...)
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ref := schema.Properties[name]; ref != nil {
			result = append(result, lintSchema(appendPath(path, "properties."+name), ref.Value, seen)...)
		}
	}
	if schema.Items != nil {
		result = append(result, lintSchema(appendPath(path, "items"), schema.Items.Value, seen)...)
	}
	return result
}

func lintDefault(path []string, value any) []Violation {
	if value == nil {
		return nil
	}
	location := strings.Join(path, " > ")
	object, ok := value.(map[string]any)
	if !ok {
		return []Violation{{Location: location, Message: fmt.Sprintf("default must be an object, found %T", value)}}
	}

	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var result []Violation
	for _, key := range keys {
		switch object[key].(type) {
		case map[string]any, []any:
			result = append(result, Violation{
				Location: location,
				Message:  fmt.Sprintf("default value for %q must be a scalar", key),
			})
		}
	}
	return result
}

// marked reports an explicit opt-in; shape-only matches are always valid.
func marked(schema *openapi3.Schema) bool {
	if strings.EqualFold(schema.Format, FormatHStore) {
		return true
	}
	flag, ok := schema.Extensions[ExtensionHStore].(bool)
	return ok && flag
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	return append(next, segment)
}
