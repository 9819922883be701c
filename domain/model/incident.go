package model

import "time"

// Incident severities.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// Incident statuses.
const (
	IncidentActive   = "active"
	IncidentResolved = "resolved"
)

// IsKnownSeverity reports whether s is a supported severity.
func IsKnownSeverity(s string) bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// Incident is a formal declaration of a workflow disruption.
type Incident struct {
	ID           string     `json:"id"`
	WorkspaceID  string     `json:"workspace_id"`
	Title        string     `json:"title"`
	Summary      string     `json:"summary,omitempty"`
	Severity     string     `json:"severity"`
	Status       string     `json:"status"`
	AutomationID string     `json:"automation_id,omitempty"`
	EventID      string     `json:"event_id,omitempty"`
	Resources    []Resource `json:"resources,omitempty"`
	DeclaredAt   time.Time  `json:"declared_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
