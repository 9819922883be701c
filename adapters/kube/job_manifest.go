package kube

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gomodules.xyz/jsonpatch/v2"
	"sigs.k8s.io/yaml"
)

// JobContainerName is the name of the container running the flow run.
const JobContainerName = "flowops-job"

// Manifest is a Kubernetes object in its generic JSON form.
type Manifest = map[string]any

// BaseJobManifest returns the smallest Job manifest accepted as a template.
func BaseJobManifest() Manifest {
	return Manifest{
		"apiVersion": "batch/v1",
		"kind":       "Job",
		"metadata":   map[string]any{"labels": map[string]any{}},
		"spec": map[string]any{
			"template": map[string]any{
				"spec": map[string]any{
					"parallelism":   1,
					"completions":   1,
					"restartPolicy": "Never",
					"containers": []any{
						map[string]any{"name": JobContainerName, "env": []any{}},
					},
				},
			},
		},
	}
}

// ValidateJobManifest checks that manifest keeps every attribute of
// BaseJobManifest with the same value. Extra attributes are allowed.
func ValidateJobManifest(manifest Manifest) error {
	ops, err := diffToBase(manifest)
	if err != nil {
		return err
	}
	var missing, incompatible []string
	for _, op := range ops {
		switch op.Operation {
		case "add":
			missing = append(missing, op.Path)
		case "replace":
			incompatible = append(incompatible, fmt.Sprintf("%s must have value %s", op.Path, formatValue(op.Value)))
		}
	}
	sort.Strings(missing)
	sort.Strings(incompatible)
	if len(missing) > 0 {
		return fmt.Errorf("Job is missing required attributes at the following paths: %s", strings.Join(missing, ", "))
	}
	if len(incompatible) > 0 {
		return fmt.Errorf("Job has incompatible values for the following attributes: %s", strings.Join(incompatible, ", "))
	}
	return nil
}

// diffToBase returns the add and replace operations turning manifest into
// the base manifest. Removals are irrelevant for validation and not reported.
// Lists are compared by index.
func diffToBase(manifest Manifest) ([]jsonpatch.Operation, error) {
	have, err := normalize(manifest)
	if err != nil {
		return nil, err
	}
	want, _ := normalize(BaseJobManifest())
	var ops []jsonpatch.Operation
	diffValue("", have, want, &ops)
	return ops, nil
}

func diffValue(path string, have, want any, ops *[]jsonpatch.Operation) {
	switch w := want.(type) {
	case map[string]any:
		h, ok := have.(map[string]any)
		if !ok {
			*ops = append(*ops, jsonpatch.NewOperation("replace", path, want))
			return
		}
		for k, wv := range w {
			p := path + "/" + escapePointer(k)
			hv, ok := h[k]
			if !ok {
				*ops = append(*ops, jsonpatch.NewOperation("add", p, wv))
				continue
			}
			diffValue(p, hv, wv, ops)
		}
	case []any:
		h, ok := have.([]any)
		if !ok {
			*ops = append(*ops, jsonpatch.NewOperation("replace", path, want))
			return
		}
		for i, wv := range w {
			p := path + "/" + strconv.Itoa(i)
			if i >= len(h) {
				*ops = append(*ops, jsonpatch.NewOperation("add", p, wv))
				continue
			}
			diffValue(p, h[i], wv, ops)
		}
		// An empty list in the base matches any list.
	default:
		if !reflect.DeepEqual(have, want) {
			*ops = append(*ops, jsonpatch.NewOperation("replace", path, want))
		}
	}
}

// normalize round-trips v through JSON so numbers compare as float64.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return out, nil
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// escapePointer escapes a key for use as a JSON pointer segment (RFC 6901).
func escapePointer(key string) string {
	return strings.ReplaceAll(strings.ReplaceAll(key, "~", "~0"), "/", "~1")
}

// JobFromFile loads a Job manifest from a YAML or JSON file.
func JobFromFile(fs afero.Fs, filename string) (Manifest, error) {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, fmt.Errorf("read job manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse job manifest %s: %w", filename, err)
	}
	return m, nil
}

// CustomizationsFromFile loads an RFC 6902 patch from a YAML or JSON file.
func CustomizationsFromFile(fs afero.Fs, filename string) ([]map[string]any, error) {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, fmt.Errorf("read customizations: %w", err)
	}
	var ops []map[string]any
	if err := yaml.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("parse customizations %s: %w", filename, err)
	}
	for i, op := range ops {
		if _, ok := op["op"].(string); !ok {
			return nil, fmt.Errorf("customization %d: missing op", i)
		}
		if _, ok := op["path"].(string); !ok {
			return nil, fmt.Errorf("customization %d: missing path", i)
		}
	}
	return ops, nil
}
