package deployment

// DefaultTemplate returns the keys every deployment definition carries.
// Missing keys of a user definition are filled from it.
func DefaultTemplate() map[string]any {
	return map[string]any{
		"name":        nil,
		"version":     nil,
		"tags":        []any{},
		"description": nil,
		"schedule":    nil,
		"flow_name":   nil,
		"entrypoint":  nil,
		"parameters":  map[string]any{},
		"work_pool": map[string]any{
			"name":            nil,
			"work_queue_name": nil,
			"job_variables":   map[string]any{},
		},
	}
}

// MergeDefaults fills missing top level keys of base and missing keys of
// its nested mappings from DefaultTemplate. base is not modified.
func MergeDefaults(base map[string]any) map[string]any {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}
	for key, value := range DefaultTemplate() {
		cur, ok := out[key]
		if !ok || cur == nil {
			out[key] = value
			continue
		}
		def, isMap := value.(map[string]any)
		if !isMap {
			continue
		}
		curMap, ok := cur.(map[string]any)
		if !ok {
			continue
		}
		merged := make(map[string]any, len(curMap)+len(def))
		for k, v := range curMap {
			merged[k] = v
		}
		for k, v := range def {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
		out[key] = merged
	}
	return out
}
