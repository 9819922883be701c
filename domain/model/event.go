package model

import (
	"strings"
	"time"
)

// Well-known resource label keys.
const (
	LabelResourceID   = "flowops.resource.id"
	LabelResourceName = "flowops.resource.name"
	LabelResourceRole = "flowops.resource.role"
)

// Resource id prefixes.
const (
	ResourceFlowRun    = "flowops.flow-run."
	ResourceFlow       = "flowops.flow."
	ResourceDeployment = "flowops.deployment."
	ResourceWorkPool   = "flowops.work-pool."
	ResourceAutomation = "flowops.automation."
	ResourceIncident   = "flowops.incident."
)

// Resource is a label set identifying the subject of an event.
type Resource map[string]string

// ID returns the resource id label.
func (r Resource) ID() string { return r[LabelResourceID] }

// Role returns the role label used in related resources.
func (r Resource) Role() string { return r[LabelResourceRole] }

// Event is an observation ingested by the platform.
type Event struct {
	ID          string         `json:"id"`
	WorkspaceID string         `json:"workspace_id"`
	Event       string         `json:"event"`
	Occurred    time.Time      `json:"occurred"`
	Received    time.Time      `json:"received"`
	Resource    Resource       `json:"resource"`
	Related     []Resource     `json:"related,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// RelatedByRole returns the first related resource with the given role.
func (e *Event) RelatedByRole(role string) Resource {
	for _, r := range e.Related {
		if r.Role() == role {
			return r
		}
	}
	return nil
}

// ResourceIDWithPrefix returns the id suffix of the primary or a related resource
// whose id starts with prefix.
func (e *Event) ResourceIDWithPrefix(prefix string) (string, bool) {
	if id := e.Resource.ID(); strings.HasPrefix(id, prefix) {
		return strings.TrimPrefix(id, prefix), true
	}
	for _, r := range e.Related {
		if id := r.ID(); strings.HasPrefix(id, prefix) {
			return strings.TrimPrefix(id, prefix), true
		}
	}
	return "", false
}

// MatchPattern matches value against a pattern: "*" matches anything, a trailing
// "*" matches by prefix, anything else must be equal.
func MatchPattern(pattern, value string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(value, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == value
}

// MatchLabels reports whether every pattern in match is satisfied by labels.
func MatchLabels(match map[string]string, labels Resource) bool {
	for k, p := range match {
		v, ok := labels[k]
		if !ok {
			return false
		}
		if !MatchPattern(p, v) {
			return false
		}
	}
	return true
}
