// Package openapi loads OpenAPI documents and discovers the request body
// properties that hold string-to-string maps, the fields an hstore widget
// edits.
package openapi
