package model

import "time"

// Deployment is a configured, schedulable instance of a flow.
type Deployment struct {
	ID              string           `json:"id"`
	WorkspaceID     string           `json:"workspace_id"`
	FlowID          string           `json:"flow_id"`
	Name            string           `json:"name"`
	Version         string           `json:"version,omitempty"`
	Description     string           `json:"description,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	Parameters      map[string]any   `json:"parameters,omitempty"`
	ParameterSchema map[string]any   `json:"parameter_openapi_schema,omitempty"`
	Schedule        *Schedule        `json:"schedule,omitempty"`
	Paused          bool             `json:"paused"`
	WorkPoolName    string           `json:"work_pool_name,omitempty"`
	WorkQueueName   string           `json:"work_queue_name,omitempty"`
	Entrypoint      string           `json:"entrypoint,omitempty"`
	Path            string           `json:"path,omitempty"`
	PullSteps       []map[string]any `json:"pull_steps,omitempty"`
	JobVariables    map[string]any   `json:"job_variables,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// IsScheduled reports whether the deployment should receive scheduled runs.
func (d *Deployment) IsScheduled() bool {
	return d != nil && !d.Paused && d.Schedule != nil && d.Schedule.Kind() != ""
}
