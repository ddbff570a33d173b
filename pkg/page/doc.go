// Package page models the host form the hstore widget lives in: raw-value
// fields, the presentation containers wrapping them (label, help, errors),
// inline groups whose forms are added and removed at runtime, and the
// per-container handler registry user events are dispatched through.
//
// The document is single threaded. Handlers run to completion before the next
// event is dispatched; only the registries guard their maps with a mutex.
package page
