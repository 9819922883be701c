package model

import (
	"fmt"
	"time"
)

// Posture determines whether a trigger fires on the presence or absence of events.
type Posture string

const (
	PostureReactive  Posture = "Reactive"
	PostureProactive Posture = "Proactive"
)

// Action types.
const (
	ActionRunDeployment      = "run-deployment"
	ActionPauseDeployment    = "pause-deployment"
	ActionResumeDeployment   = "resume-deployment"
	ActionCancelFlowRun      = "cancel-flow-run"
	ActionChangeFlowRunState = "change-flow-run-state"
	ActionPauseAutomation    = "pause-automation"
	ActionResumeAutomation   = "resume-automation"
	ActionDeclareIncident    = "declare-incident"
)

// EventTrigger describes which events an automation reacts to.
type EventTrigger struct {
	Match        map[string]string `json:"match,omitempty" yaml:"match,omitempty"`
	MatchRelated map[string]string `json:"match_related,omitempty" yaml:"match_related,omitempty"`
	Expect       []string          `json:"expect,omitempty" yaml:"expect,omitempty"`
	After        []string          `json:"after,omitempty" yaml:"after,omitempty"`
	ForEach      []string          `json:"for_each,omitempty" yaml:"for_each,omitempty"`
	Posture      Posture           `json:"posture" yaml:"posture"`
	Threshold    int               `json:"threshold" yaml:"threshold"`
	Within       time.Duration     `json:"within,omitempty" yaml:"within,omitempty"`
}

// Validate checks trigger consistency.
func (t *EventTrigger) Validate() error {
	switch t.Posture {
	case PostureReactive, PostureProactive:
	default:
		return fmt.Errorf("%w: posture must be %s or %s", ErrAutomationInvalid, PostureReactive, PostureProactive)
	}
	if t.Threshold < 1 {
		return fmt.Errorf("%w: threshold must be at least 1", ErrAutomationInvalid)
	}
	if t.Within < 0 {
		return fmt.Errorf("%w: within must not be negative", ErrAutomationInvalid)
	}
	if t.Posture == PostureProactive && t.Within == 0 {
		return fmt.Errorf("%w: proactive triggers require a within duration", ErrAutomationInvalid)
	}
	return nil
}

// Action is a side effect performed when an automation fires.
type Action struct {
	Type         string         `json:"type" yaml:"type"`
	DeploymentID string         `json:"deployment_id,omitempty" yaml:"deployment_id,omitempty"`
	AutomationID string         `json:"automation_id,omitempty" yaml:"automation_id,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	State        StateType      `json:"state,omitempty" yaml:"state,omitempty"`
	Title        string         `json:"title,omitempty" yaml:"title,omitempty"`
	Message      string         `json:"message,omitempty" yaml:"message,omitempty"`
	Severity     string         `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// Validate checks that the action type is known and has what it needs.
func (a *Action) Validate() error {
	switch a.Type {
	case ActionRunDeployment, ActionPauseDeployment, ActionResumeDeployment,
		ActionCancelFlowRun, ActionPauseAutomation, ActionResumeAutomation:
	case ActionChangeFlowRunState:
		if _, err := ParseStateType(string(a.State)); err != nil {
			return fmt.Errorf("%w: %s requires a valid state", ErrAutomationInvalid, a.Type)
		}
	case ActionDeclareIncident:
		if a.Severity != "" && !IsKnownSeverity(a.Severity) {
			return fmt.Errorf("%w: unknown severity %q", ErrAutomationInvalid, a.Severity)
		}
	default:
		return fmt.Errorf("%w: unknown action type %q", ErrAutomationInvalid, a.Type)
	}
	return nil
}

// Automation is a trigger-action rule reacting to events.
type Automation struct {
	ID          string       `json:"id"`
	WorkspaceID string       `json:"workspace_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Enabled     bool         `json:"enabled"`
	Trigger     EventTrigger `json:"trigger"`
	Actions     []Action     `json:"actions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Validate checks the automation definition.
func (a *Automation) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: name is required", ErrAutomationInvalid)
	}
	if err := a.Trigger.Validate(); err != nil {
		return err
	}
	if len(a.Actions) == 0 {
		return fmt.Errorf("%w: at least one action is required", ErrAutomationInvalid)
	}
	for i := range a.Actions {
		if err := a.Actions[i].Validate(); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}
