package model

import (
	"strings"
	"time"
)

// Flow is a registered unit of workflow code.
type Flow struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Entrypoint  string    `json:"entrypoint,omitempty"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SplitEntrypoint splits "path/to/file.py:func" into its path and function parts.
// ok is false when either part is missing.
func SplitEntrypoint(entrypoint string) (path, fn string, ok bool) {
	i := strings.LastIndex(entrypoint, ":")
	if i <= 0 || i == len(entrypoint)-1 {
		return "", "", false
	}
	return entrypoint[:i], entrypoint[i+1:], true
}

// FlowNameFromEntrypoint derives the default flow name from the function part of an entrypoint.
func FlowNameFromEntrypoint(entrypoint string) string {
	_, fn, ok := SplitEntrypoint(entrypoint)
	if !ok {
		return ""
	}
	return strings.ReplaceAll(fn, "_", "-")
}
