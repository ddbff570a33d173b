package widget

// View is the visible representation of an instance.
type View string

const (
	// ViewStructured shows rows and the add-row control.
	ViewStructured View = "STRUCTURED"
	// ViewRaw shows the raw JSON text.
	ViewRaw View = "RAW"
)

// ToggleController switches one container between its two views.
type ToggleController struct {
	state     View
	compiler  *Compiler
	sync      *Synchronizer
	fieldName string
	prefix    string
}

// NewToggleController starts in the structured view.
func NewToggleController(compiler *Compiler, sync *Synchronizer, fieldName, prefix string) *ToggleController {
	return &ToggleController{
		state:     ViewStructured,
		compiler:  compiler,
		sync:      sync,
		fieldName: fieldName,
		prefix:    prefix,
	}
}

// State returns the current view.
func (t *ToggleController) State() View {
	return t.state
}

// Toggle flips the view of container. Leaving the raw view recompiles the
// rows from the current raw text; when that text is invalid the view stays
// raw, the rows are left alone and the compile error is returned.
func (t *ToggleController) Toggle(container *Container) (View, *Result, error) {
	if t.state == ViewStructured {
		t.state = ViewRaw
		return t.state, nil, nil
	}

	result, err := t.compiler.Compile(t.fieldName, CompileOptions{Prefix: t.prefix})
	if err != nil {
		return t.state, nil, err
	}
	container.replaceRows(result.Rows())
	t.sync.SyncFromRows(container)
	t.state = ViewStructured
	return t.state, &result, nil
}
