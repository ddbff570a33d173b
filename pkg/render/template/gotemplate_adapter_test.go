package template_test

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-hstore/pkg/render/template/gotemplate"
	"github.com/goliatone/go-hstore/pkg/testsupport"
)

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("row", map[string]any{"key": "color", "value": "<red>"}, w)
	})

	want := `<input value="color"><input value="&lt;red&gt;">`
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_RenderStringCachesByContent(t *testing.T) {
	engine := newEngine(t)
	content := `{% for entry in data %}{{ entry.key }}={{ entry.value }};{% endfor %}`

	for i := 0; i < 2; i++ {
		got, err := engine.RenderString(content, map[string]any{
			"data": []map[string]string{{"key": "a", "value": "1"}, {"key": "b", "value": "2"}},
		})
		if err != nil {
			t.Fatalf("render string: %v", err)
		}
		if got != "a=1;b=2;" {
			t.Fatalf("unexpected output %q", got)
		}
	}
}

func TestGoTemplateEngine_RenderDetectsInlineContent(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.Render("{{ name|trim }}", map[string]any{"name": "  Ada  "})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Ada" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	got, err := engine.RenderString("env={{ settings.env }}", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "env=staging" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("hstore_shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	got, err := engine.RenderString("{{ name|hstore_shout }}", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestGoTemplateEngine_WithoutLoaders(t *testing.T) {
	engine, err := gotemplate.New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
	got, err := engine.RenderString("{{ a }}", map[string]any{"a": "ok"})
	if err != nil || got != "ok" {
		t.Fatalf("render string: %q %v", got, err)
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	files := fstest.MapFS{
		"row.tpl": {Data: []byte(`<input value="{{ key }}"><input value="{{ value }}">`)},
	}
	engine, err := gotemplate.New(gotemplate.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestNewGoTemplate_RendersFilesAndStrings(t *testing.T) {
	files := fstest.MapFS{
		"row.tpl": {Data: []byte(`<li>{{ key|trim }}={{ value }}</li>`)},
	}
	engine, err := gotemplate.NewGoTemplate(gotemplate.WithFS(files))
	if err != nil {
		t.Fatalf("new go-template engine: %v", err)
	}

	got, err := engine.RenderTemplate("row", map[string]any{"key": " color ", "value": "<red>"})
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	if want := `<li>color=&lt;red&gt;</li>`; got != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q", want, got)
	}

	got, err = engine.RenderString(`{{ rows|safe }}`, map[string]any{"rows": "<li></li>"})
	if err != nil || got != "<li></li>" {
		t.Fatalf("render string: %q %v", got, err)
	}
}

func TestNewGoTemplate_WithoutLoaders(t *testing.T) {
	engine, err := gotemplate.NewGoTemplate()
	if err != nil {
		t.Fatalf("new go-template engine: %v", err)
	}
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatal("expected missing template error")
	}
	got, err := engine.Render("{{ a }}", map[string]any{"a": "ok"})
	if err != nil || got != "ok" {
		t.Fatalf("render: %q %v", got, err)
	}
}
