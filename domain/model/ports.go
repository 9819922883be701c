package model

import "context"

// EventSink accepts events for ingestion.
type EventSink interface {
	Emit(ctx context.Context, ev *Event) error
}

// ActionPort performs automation actions.
type ActionPort interface {
	Perform(ctx context.Context, automation *Automation, action *Action, ev *Event) error
}

// InfrastructureSubmitOptions are per-submission settings.
type InfrastructureSubmitOptions struct {
	// Started is called with the infrastructure identifier once the run has started.
	Started func(identifier string)
}

// InfrastructureSubmitOption configures a submission.
type InfrastructureSubmitOption func(*InfrastructureSubmitOptions)

// WithStartedCallback registers a callback invoked when infrastructure reports the run started.
func WithStartedCallback(fn func(identifier string)) InfrastructureSubmitOption {
	return func(o *InfrastructureSubmitOptions) { o.Started = fn }
}

// InfrastructurePort runs flow runs on the infrastructure of a work pool.
type InfrastructurePort interface {
	Submit(ctx context.Context, pool *WorkPool, run *FlowRun, opts ...InfrastructureSubmitOption) (*InfrastructureResult, error)
}
