package widget

// Class is a typed identifier for the class names templates must honour.
type Class string

const (
	ClassRoot     Class = "hstore"
	ClassRows     Class = "hstore-rows"
	ClassRow      Class = "hstore-row"
	ClassInput    Class = "hstore-input"
	ClassKey      Class = "hstore-key"
	ClassValue    Class = "hstore-value"
	ClassAdd      Class = "add-row"
	ClassRemove   Class = "remove-row"
	ClassToggle   Class = "hstore-toggle-txtarea"
	ClassTextarea Class = "hstore-textarea"
)

// Classes holds the class names used in markup and as event sources.
type Classes struct {
	Root     string `yaml:"root" json:"root"`
	Rows     string `yaml:"rows" json:"rows"`
	Row      string `yaml:"row" json:"row"`
	Input    string `yaml:"input" json:"input"`
	Key      string `yaml:"key" json:"key"`
	Value    string `yaml:"value" json:"value"`
	Add      string `yaml:"add" json:"add"`
	Remove   string `yaml:"remove" json:"remove"`
	Toggle   string `yaml:"toggle" json:"toggle"`
	Textarea string `yaml:"textarea" json:"textarea"`
}

// DefaultClasses returns the built-in class names.
func DefaultClasses() Classes {
	return Classes{
		Root:     string(ClassRoot),
		Rows:     string(ClassRows),
		Row:      string(ClassRow),
		Input:    string(ClassInput),
		Key:      string(ClassKey),
		Value:    string(ClassValue),
		Add:      string(ClassAdd),
		Remove:   string(ClassRemove),
		Toggle:   string(ClassToggle),
		Textarea: string(ClassTextarea),
	}
}

// WithDefaults fills empty names from DefaultClasses.
func (c Classes) WithDefaults() Classes {
	defaults := DefaultClasses()
	pick := func(value, fallback string) string {
		if value == "" {
			return fallback
		}
		return value
	}
	return Classes{
		Root:     pick(c.Root, defaults.Root),
		Rows:     pick(c.Rows, defaults.Rows),
		Row:      pick(c.Row, defaults.Row),
		Input:    pick(c.Input, defaults.Input),
		Key:      pick(c.Key, defaults.Key),
		Value:    pick(c.Value, defaults.Value),
		Add:      pick(c.Add, defaults.Add),
		Remove:   pick(c.Remove, defaults.Remove),
		Toggle:   pick(c.Toggle, defaults.Toggle),
		Textarea: pick(c.Textarea, defaults.Textarea),
	}
}

func (c Classes) templateData() map[string]any {
	return map[string]any{
		"root":     c.Root,
		"rows":     c.Rows,
		"row":      c.Row,
		"input":    c.Input,
		"key":      c.Key,
		"value":    c.Value,
		"add":      c.Add,
		"remove":   c.Remove,
		"toggle":   c.Toggle,
		"textarea": c.Textarea,
	}
}
