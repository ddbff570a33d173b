package widget

import (
	"slices"

	"github.com/goliatone/go-hstore/pkg/model"
	"github.com/goliatone/go-hstore/pkg/page"
)

// Container scopes one binding's rows and its single raw-value element.
type Container struct {
	ID   string
	raw  *page.Field
	rows []model.Row
}

// NewContainer wraps raw with rows.
func NewContainer(id string, raw *page.Field, rows []model.Row) *Container {
	if raw == nil {
		raw = &page.Field{ID: id}
	}
	return &Container{ID: id, raw: raw, rows: model.CloneRows(rows)}
}

// Rows returns a copy of the rows in display order.
func (c *Container) Rows() []model.Row {
	return model.CloneRows(c.rows)
}

// Len returns the number of rows.
func (c *Container) Len() int {
	return len(c.rows)
}

// RawValue returns the raw element text.
func (c *Container) RawValue() string {
	return c.raw.Value
}

func (c *Container) setRaw(text string) {
	c.raw.Value = text
}

func (c *Container) replaceRows(rows []model.Row) {
	c.rows = model.CloneRows(rows)
}

func (c *Container) appendRow(row model.Row) {
	c.rows = append(c.rows, row)
}

func (c *Container) removeRow(idx int) error {
	if idx < 0 || idx >= len(c.rows) {
		return ErrRowOutOfRange
	}
	c.rows = slices.Delete(c.rows, idx, idx+1)
	return nil
}

func (c *Container) setKey(idx int, key string) error {
	if idx < 0 || idx >= len(c.rows) {
		return ErrRowOutOfRange
	}
	c.rows[idx].Key = key
	return nil
}

func (c *Container) setValue(idx int, value string) error {
	if idx < 0 || idx >= len(c.rows) {
		return ErrRowOutOfRange
	}
	c.rows[idx].Value = value
	return nil
}

// Synchronizer writes the canonical JSON of a container's rows into its raw
// element.
type Synchronizer struct {
	indent string
}

// NewSynchronizer returns a synchronizer using indent; model.Indent is the
// canonical choice.
func NewSynchronizer(indent string) *Synchronizer {
	return &Synchronizer{indent: indent}
}

// SyncFromRows folds the rows in display order, later keys overriding earlier
// ones, serializes the mapping and stores it as the raw value. It returns the
// written text and the mapping it came from.
func (s *Synchronizer) SyncFromRows(container *Container) (string, *model.Mapping) {
	mapping := model.MappingFromRows(container.rows)
	text := model.SerializeIndent(mapping, s.indent)
	container.setRaw(text)
	return text, mapping
}
