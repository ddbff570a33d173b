package hstore

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-hstore/pkg/model"
)

// DecodeForm decodes the hstore fields of a submitted form. With no names,
// every submitted field is decoded. Failures are collected per field; the
// fields that decoded are returned alongside the joined error.
func DecodeForm(values url.Values, names ...string) (map[string]*model.Mapping, error) {
	if len(names) == 0 {
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	out := make(map[string]*model.Mapping, len(names))
	var errs []error
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		mapping, err := Decode(values.Get(name))
		if err != nil {
			errs = append(errs, fmt.Errorf("hstore: field %s: %w", name, err))
			continue
		}
		out[name] = mapping
	}
	return out, errors.Join(errs...)
}
