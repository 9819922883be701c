package action

import (
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/templating"
)

// templateValues exposes the automation, the triggering event and its
// primary resource labels to action templates.
func templateValues(a *model.Automation, ev *model.Event) map[string]any {
	return map[string]any{
		"automation": a,
		"event":      ev,
		"resource":   map[string]string(ev.Resource),
		"payload":    ev.Payload,
	}
}

var defaultEngine = templating.New()

func (d *Dispatcher) engine() *templating.Engine {
	if d.Templates == nil {
		return defaultEngine
	}
	return d.Templates
}

func (d *Dispatcher) render(name, tpl string, a *model.Automation, ev *model.Event) (string, error) {
	if tpl == "" {
		return "", nil
	}
	return d.engine().Render(name, tpl, templateValues(a, ev))
}

// renderParameters renders string parameter values; other values pass through.
func (d *Dispatcher) renderParameters(params map[string]any, a *model.Automation, ev *model.Event) (map[string]any, error) {
	if params == nil {
		return nil, nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		s, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}
		r, err := d.render("parameter "+k, s, a, ev)
		if err != nil {
			return nil, err
		}
		out[k] = r
	}
	return out, nil
}
