package model

import "strings"

// IdentifierPrefix is prepended to a field name to build the element id of its
// raw-value field.
const IdentifierPrefix = "id_"

// Row is one visible key/value pair. Keys may be empty or repeated; they are
// only interpreted when rows are folded into a Mapping.
type Row struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FieldBinding describes one widget instance bound to a raw-value field.
type FieldBinding struct {
	Identifier  string   `json:"id"`
	FieldName   string   `json:"name"`
	Label       string   `json:"label,omitempty"`
	HelpText    string   `json:"help,omitempty"`
	ErrorMarkup string   `json:"errors,omitempty"`
	RawValue    string   `json:"value"`
	Parsed      *Mapping `json:"data,omitempty"`
}

// IdentifierFor returns the element id used for the raw-value field of name.
func IdentifierFor(fieldName string) string {
	return IdentifierPrefix + strings.TrimSpace(fieldName)
}

// NewBinding builds a binding for fieldName with the identifier derived from it.
func NewBinding(fieldName string) FieldBinding {
	name := strings.TrimSpace(fieldName)
	return FieldBinding{
		Identifier: IdentifierFor(name),
		FieldName:  name,
		Parsed:     NewMapping(),
	}
}

// Accept stores raw as the binding's value together with its parsed form.
func (b *FieldBinding) Accept(raw string, parsed *Mapping) {
	if b == nil {
		return
	}
	if parsed == nil {
		parsed = NewMapping()
	}
	b.RawValue = raw
	b.Parsed = parsed
}

// CloneRows returns a copy of rows so callers can mutate the result freely.
func CloneRows(rows []Row) []Row {
	if len(rows) == 0 {
		return nil
	}
	out := make([]Row, len(rows))
	copy(out, rows)
	return out
}
