// Package hstore wires the key/value widget engine for a page: it builds the
// template resolver, widget factory and inline binder from a configuration,
// binds every hstore field of a document and decodes submitted values.
//
// Typical use:
//
//	engine, err := hstore.New(hstore.WithConfigFile("hstore.yaml"))
//	if err != nil {
//		return err
//	}
//	if _, err := engine.BindAll(doc); err != nil {
//		return err
//	}
//	values := doc.Submit()
package hstore
