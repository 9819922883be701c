package model

import "time"

// Work pool types.
const (
	WorkPoolTypeKubernetes = "kubernetes"
	WorkPoolTypeProcess    = "process"
	// WorkPoolTypeAgent pools are served by legacy agents and cannot receive project deployments.
	WorkPoolTypeAgent = "agent"
)

// DefaultWorkQueueName is the queue every work pool carries.
const DefaultWorkQueueName = "default"

// WorkPool is a logical grouping of execution infrastructure.
type WorkPool struct {
	ID               string         `json:"id"`
	WorkspaceID      string         `json:"workspace_id"`
	Name             string         `json:"name"`
	Type             string         `json:"type"`
	Description      string         `json:"description,omitempty"`
	BaseJobTemplate  map[string]any `json:"base_job_template,omitempty"`
	ConcurrencyLimit int            `json:"concurrency_limit,omitempty"`
	Paused           bool           `json:"paused"`
	Queues           []WorkQueue    `json:"queues"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// WorkQueue partitions runs within a pool. Lower Priority values are served first.
type WorkQueue struct {
	Name             string `json:"name"`
	Priority         int    `json:"priority"`
	ConcurrencyLimit int    `json:"concurrency_limit,omitempty"`
	Paused           bool   `json:"paused"`
}

// Queue returns the named queue, or nil.
func (p *WorkPool) Queue(name string) *WorkQueue {
	for i := range p.Queues {
		if p.Queues[i].Name == name {
			return &p.Queues[i]
		}
	}
	return nil
}

// IsKnownWorkPoolType reports whether t is a supported pool type.
func IsKnownWorkPoolType(t string) bool {
	switch t {
	case WorkPoolTypeKubernetes, WorkPoolTypeProcess, WorkPoolTypeAgent:
		return true
	}
	return false
}
