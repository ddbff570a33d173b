package model

import (
	"sort"
	"strconv"
)

// maxArrayIndex is 2^32-1, the first integer that is not an array index.
const maxArrayIndex = 4294967295

// Entry is a single key/value pair as emitted by Mapping.Entries.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Mapping is an ordered key/value mapping with unique keys.
type Mapping struct {
	order  []string
	values map[string]string
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]string)}
}

// MappingFromRows folds rows in display order; later rows override earlier
// rows that share the same key.
func MappingFromRows(rows []Row) *Mapping {
	m := NewMapping()
	for _, row := range rows {
		m.Set(row.Key, row.Value)
	}
	return m
}

// Set assigns value to key. An existing key keeps its position.
func (m *Mapping) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, exists := m.values[key]; !exists {
		m.order = append(m.order, key)
	}
	m.values[key] = value
}

// Get returns the value stored for key.
func (m *Mapping) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	value, ok := m.values[key]
	return value, ok
}

// Delete removes key from the mapping.
func (m *Mapping) Delete(key string) {
	if m == nil {
		return
	}
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for idx, candidate := range m.order {
		if candidate == key {
			m.order = append(m.order[:idx], m.order[idx+1:]...)
			break
		}
	}
}

// Len reports the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Keys returns the keys in serialization order.
func (m *Mapping) Keys() []string {
	if m == nil || len(m.order) == 0 {
		return nil
	}

	var (
		indices []string
		others  []string
	)
	for _, key := range m.order {
		if _, ok := arrayIndex(key); ok {
			indices = append(indices, key)
			continue
		}
		others = append(others, key)
	}
	sort.SliceStable(indices, func(i, j int) bool {
		left, _ := arrayIndex(indices[i])
		right, _ := arrayIndex(indices[j])
		return left < right
	})
	return append(indices, others...)
}

// Entries returns the pairs in serialization order.
func (m *Mapping) Entries() []Entry {
	keys := m.Keys()
	if len(keys) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(keys))
	for _, key := range keys {
		out = append(out, Entry{Key: key, Value: m.values[key]})
	}
	return out
}

// Rows converts the mapping into rows, one per key.
func (m *Mapping) Rows() []Row {
	entries := m.Entries()
	if len(entries) == 0 {
		return nil
	}
	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, Row{Key: entry.Key, Value: entry.Value})
	}
	return rows
}

// Map returns a plain map copy. Ordering is lost.
func (m *Mapping) Map() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for key, value := range m.values {
		out[key] = value
	}
	return out
}

// Clone returns an independent copy of the mapping.
func (m *Mapping) Clone() *Mapping {
	clone := NewMapping()
	if m == nil {
		return clone
	}
	for _, key := range m.order {
		clone.Set(key, m.values[key])
	}
	return clone
}

// Equal reports whether both mappings hold the same keys and values,
// regardless of order.
func (m *Mapping) Equal(other *Mapping) bool {
	if m.Len() != other.Len() {
		return false
	}
	for _, key := range m.Keys() {
		value, ok := other.Get(key)
		if !ok || value != m.values[key] {
			return false
		}
	}
	return true
}

// MarshalJSON renders the compact canonical form.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	return []byte(SerializeIndent(m, "")), nil
}

// UnmarshalJSON accepts any JSON object accepted by Parse.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}

// arrayIndex reports whether key is a canonical array index ("0", "1", ...
// without leading zeros, below 2^32-1).
func arrayIndex(key string) (uint64, bool) {
	if key == "" || len(key) > 10 {
		return 0, false
	}
	if len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	value, err := strconv.ParseUint(key, 10, 64)
	if err != nil || value >= maxArrayIndex {
		return 0, false
	}
	return value, true
}
