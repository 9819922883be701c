package templating

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders Go text templates with the sprig function map. Functions
// that read the process environment or the filesystem are removed, since
// templates come from stored automation definitions.
type Engine struct {
	FuncMap template.FuncMap
}

// New creates an engine with the restricted sprig function map.
func New() *Engine {
	f := sprig.TxtFuncMap()
	for _, fn := range []string{"env", "expandenv", "base", "dir", "clean", "ext", "isAbs"} {
		delete(f, fn)
	}
	return &Engine{FuncMap: f}
}

// Render executes tpl against vals in strict mode: missing map keys are errors.
func (e *Engine) Render(name, tpl string, vals any) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Funcs(e.FuncMap).Parse(tpl)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vals); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}
	return buf.String(), nil
}
