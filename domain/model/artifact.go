package model

import "time"

// Artifact types.
const (
	ArtifactMarkdown = "markdown"
	ArtifactTable    = "table"
)

// Artifact is a persisted result (e.g. a run summary) keyed for later lookup.
type Artifact struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Key         string    `json:"key"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Data        string    `json:"data"`
	FlowRunID   string    `json:"flow_run_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
