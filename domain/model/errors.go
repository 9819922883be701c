package model

import "errors"

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrWorkspaceInvalid  = errors.New("workspace invalid")
	ErrWorkspaceConflict = errors.New("workspace already exists")
)

var (
	ErrFlowNotFound = errors.New("flow not found")
	ErrFlowInvalid  = errors.New("flow invalid")
	ErrFlowConflict = errors.New("flow already exists")
)

var (
	ErrDeploymentNotFound = errors.New("deployment not found")
	ErrDeploymentInvalid  = errors.New("deployment invalid")
	ErrDeploymentConflict = errors.New("deployment already exists")
)

var (
	ErrScheduleInvalid = errors.New("schedule invalid")
)

var (
	ErrWorkPoolNotFound = errors.New("work pool not found")
	ErrWorkPoolInvalid  = errors.New("work pool invalid")
	ErrWorkPoolConflict = errors.New("work pool already exists")
)

var (
	ErrFlowRunNotFound        = errors.New("flow run not found")
	ErrFlowRunInvalid         = errors.New("flow run invalid")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventInvalid  = errors.New("event invalid")
)

var (
	ErrAutomationNotFound = errors.New("automation not found")
	ErrAutomationInvalid  = errors.New("automation invalid")
	ErrAutomationCycle    = errors.New("automation chain forms a cycle")
)

var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrIncidentInvalid  = errors.New("incident invalid")
)

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrArtifactInvalid  = errors.New("artifact invalid")
)
