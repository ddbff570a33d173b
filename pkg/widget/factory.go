package widget

import "github.com/goliatone/go-hstore/pkg/page"

// Factory builds instances that share one resolver, renderer and notifier.
type Factory struct {
	base settings
}

// NewFactory resolves options once; every instance reuses the result.
func NewFactory(options ...Option) (*Factory, error) {
	s, err := newSettings(options)
	if err != nil {
		return nil, err
	}
	return &Factory{base: s}, nil
}

// New prepares an instance for fieldName in doc. Extra options apply to this
// instance only.
func (f *Factory) New(doc *page.Document, fieldName string, options ...Option) (*Instance, error) {
	s := f.base
	s.apply(options)
	return newInstance(doc, fieldName, s)
}

// Compiler returns a compiler for doc configured like the factory's instances.
func (f *Factory) Compiler(doc *page.Document) *Compiler {
	return &Compiler{doc: doc, settings: f.base}
}

// Classes returns the class names instances render and listen to.
func (f *Factory) Classes() Classes {
	return f.base.classes
}
