package widget

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-hstore/pkg/model"
	"github.com/goliatone/go-hstore/pkg/page"
	"github.com/goliatone/go-hstore/pkg/resolver"
	"github.com/goliatone/go-hstore/pkg/sanitize"
)

// CompileOptions controls a single compilation.
type CompileOptions struct {
	// ReplaceOriginal detaches the raw field and mounts the widget after its
	// hidden container.
	ReplaceOriginal bool
	// Prefix is substituted into fallback templates.
	Prefix string
	// Mount is the widget inserted on replacement. A static widget holding the
	// compiled markup is used when nil.
	Mount page.Widget
}

// Result is the output of a successful compilation.
type Result struct {
	Binding    model.FieldBinding
	Mapping    *model.Mapping
	Markup     string
	RowsMarkup string
}

// Rows returns the rows the compiled mapping starts with.
func (r Result) Rows() []model.Row {
	return r.Mapping.Rows()
}

// Compiler renders the editor markup for raw-value fields of one document.
type Compiler struct {
	doc *page.Document
	settings
}

// NewCompiler constructs a compiler for doc.
func NewCompiler(doc *page.Document, options ...Option) (*Compiler, error) {
	if doc == nil {
		return nil, fmt.Errorf("widget: document is required")
	}
	s, err := newSettings(options)
	if err != nil {
		return nil, err
	}
	return &Compiler{doc: doc, settings: s}, nil
}

type templates struct {
	ui  string
	row string
}

// Compile reads the raw value of fieldName, parses it and renders the widget
// markup. Invalid JSON raises an alert and fails without touching the
// document.
func (c *Compiler) Compile(fieldName string, opts CompileOptions) (Result, error) {
	result, _, err := c.compile(fieldName, opts)
	return result, err
}

func (c *Compiler) compile(fieldName string, opts CompileOptions) (Result, templates, error) {
	fieldName = strings.TrimSpace(fieldName)
	id := model.IdentifierFor(fieldName)
	field, ok := c.doc.Element(id)
	if !ok {
		return Result{}, templates{}, fmt.Errorf("%w: %s", page.ErrFieldNotFound, id)
	}

	mapping, err := model.Parse(field.Value)
	if err != nil {
		c.notifier.Alert(alertMessage(err))
		c.logger.Debug("hstore compile aborted", "field", fieldName, "error", err)
		return Result{}, templates{}, invalidJSON(fieldName, err)
	}

	binding := model.NewBinding(fieldName)
	if container, ok := c.doc.ContainerOf(id); ok {
		binding.Label = sanitize.Text(container.Label)
		binding.HelpText = sanitize.Text(container.Help)
		binding.ErrorMarkup = sanitize.Markup(container.Errors)
	}
	binding.Accept(field.Value, mapping)

	tpls, err := c.resolve(fieldName, opts.Prefix)
	if err != nil {
		return Result{}, templates{}, err
	}

	markup, rowsMarkup, err := c.render(tpls, binding, mapping.Rows(), true, opts.Prefix)
	if err != nil {
		return Result{}, templates{}, err
	}

	if opts.ReplaceOriginal {
		mount := opts.Mount
		if mount == nil {
			mount = staticWidget{id: WidgetID(id), markup: markup}
		}
		if err := c.doc.Replace(id, mount); err != nil {
			return Result{}, templates{}, err
		}
	}

	return Result{
		Binding:    binding,
		Mapping:    mapping,
		Markup:     markup,
		RowsMarkup: rowsMarkup,
	}, tpls, nil
}

func (c *Compiler) resolve(fieldName, prefix string) (templates, error) {
	row, err := c.resolver.Resolve(resolver.KindRow, fieldName, prefix)
	if err != nil {
		return templates{}, err
	}
	ui, err := c.resolver.Resolve(resolver.KindUI, fieldName, prefix)
	if err != nil {
		return templates{}, err
	}
	return templates{ui: ui, row: row}, nil
}

// render produces the rows markup, one row template execution per row, and
// then the editor markup wrapping it.
func (c *Compiler) render(tpls templates, binding model.FieldBinding, rows []model.Row, structured bool, prefix string) (string, string, error) {
	classes := c.classes.templateData()

	var rowsMarkup strings.Builder
	for idx, row := range rows {
		out, err := c.renderer.RenderString(tpls.row, map[string]any{
			"index":   strconv.Itoa(idx),
			"key":     row.Key,
			"value":   row.Value,
			"id":      binding.Identifier,
			"name":    binding.FieldName,
			"prefix":  prefix,
			"classes": classes,
		})
		if err != nil {
			return "", "", fmt.Errorf("widget: render row %d of %s: %w", idx, binding.FieldName, err)
		}
		rowsMarkup.WriteString(out)
	}

	data := make([]map[string]any, 0, binding.Parsed.Len())
	for _, entry := range binding.Parsed.Entries() {
		data = append(data, map[string]any{"key": entry.Key, "value": entry.Value})
	}

	markup, err := c.renderer.RenderString(tpls.ui, map[string]any{
		"id":         binding.Identifier,
		"label":      binding.Label,
		"name":       binding.FieldName,
		"value":      binding.RawValue,
		"help":       binding.HelpText,
		"errors":     binding.ErrorMarkup,
		"data":       data,
		"rows":       rowsMarkup.String(),
		"structured": structured,
		"prefix":     prefix,
		"classes":    classes,
	})
	if err != nil {
		return "", "", fmt.Errorf("widget: render editor for %s: %w", binding.FieldName, err)
	}
	return markup, rowsMarkup.String(), nil
}

// WidgetID returns the id of the widget mounted for the raw element id.
func WidgetID(identifier string) string {
	return "hstore-" + identifier
}

type staticWidget struct {
	id     string
	markup string
}

func (w staticWidget) ID() string              { return w.id }
func (w staticWidget) Render() (string, error) { return w.markup, nil }
