package hstore

import (
	"io/fs"

	"github.com/goliatone/go-hstore/pkg/resolver"
)

// EmbeddedTemplates exposes the built-in widget templates so callers can copy
// or extend them without importing the resolver package directly.
func EmbeddedTemplates() fs.FS {
	return resolver.Defaults()
}
