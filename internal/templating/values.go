// Package templating resolves "{{ key }}" placeholders in nested values and
// renders sprig text templates.
package templating

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRE = regexp.MustCompile(`\{\{\s*([\w.\-\[\]$]+)\s*\}\}`)

// Placeholder is one "{{ name }}" occurrence.
type Placeholder struct {
	FullMatch string
	Name      string
}

// FindPlaceholders returns the distinct placeholders of s in order of appearance.
func FindPlaceholders(s string) []Placeholder {
	var out []Placeholder
	seen := map[string]bool{}
	for _, m := range placeholderRE.FindAllStringSubmatch(s, -1) {
		if seen[m[0]] {
			continue
		}
		seen[m[0]] = true
		out = append(out, Placeholder{FullMatch: m[0], Name: m[1]})
	}
	return out
}

// Lookup resolves a dotted key against values. An exact key match wins over
// descending into nested maps, so flat step outputs like "image.name" work.
func Lookup(values map[string]any, key string) (any, bool) {
	if v, ok := values[key]; ok {
		return v, true
	}
	head, rest, found := strings.Cut(key, ".")
	if !found {
		return nil, false
	}
	nested, ok := values[head].(map[string]any)
	if !ok {
		return nil, false
	}
	return Lookup(nested, rest)
}

type notSet struct{}

// ApplyValues walks template (maps, slices, strings) and substitutes
// placeholders from values:
//   - a string made of exactly one placeholder is replaced by the value
//     itself, keeping its type; map entries whose value is unresolved are dropped
//   - placeholders embedded in longer strings are replaced by the value's
//     string form; unresolved ones are left untouched
//
// template is not modified.
func ApplyValues(template any, values map[string]any) any {
	out := apply(template, values)
	if _, ok := out.(notSet); ok {
		return template
	}
	return out
}

// ApplyValuesMap is ApplyValues for the common map case.
func ApplyValuesMap(template map[string]any, values map[string]any) map[string]any {
	if template == nil {
		return nil
	}
	return apply(template, values).(map[string]any)
}

func apply(template any, values map[string]any) any {
	switch t := template.(type) {
	case string:
		return applyString(t, values)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			nv := apply(v, values)
			if _, ok := nv.(notSet); ok {
				continue
			}
			out[k] = nv
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, v := range t {
			nv := apply(v, values)
			if _, ok := nv.(notSet); ok {
				continue
			}
			out = append(out, nv)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, 0, len(t))
		for _, v := range t {
			out = append(out, apply(v, values).(map[string]any))
		}
		return out
	case []string:
		out := make([]string, 0, len(t))
		for _, v := range t {
			switch nv := applyString(v, values).(type) {
			case notSet:
			case string:
				out = append(out, nv)
			default:
				out = append(out, fmt.Sprint(nv))
			}
		}
		return out
	default:
		return template
	}
}

func applyString(s string, values map[string]any) any {
	phs := FindPlaceholders(s)
	if len(phs) == 0 {
		return s
	}
	if len(phs) == 1 && phs[0].FullMatch == s {
		if v, ok := Lookup(values, phs[0].Name); ok {
			return v
		}
		return notSet{}
	}
	for _, ph := range phs {
		v, ok := Lookup(values, ph.Name)
		if !ok {
			continue
		}
		s = strings.ReplaceAll(s, ph.FullMatch, fmt.Sprint(v))
	}
	return s
}
