// Package model holds the in-memory state behind an hstore field: the ordered
// key/value Mapping, the Row pairs shown to the user, and the FieldBinding that
// ties one widget instance to its underlying form field.
//
// Mapping keeps keys in the order JSON.stringify would emit them: canonical
// array-index keys first in ascending numeric order, then every other key in
// insertion order. Assigning an existing key overwrites the value in place, so
// rows synchronize with last-write-wins semantics. Serialize renders the
// canonical text written into the raw-value field (four space indentation,
// `{}` when empty) and Parse accepts that text back.
package model
