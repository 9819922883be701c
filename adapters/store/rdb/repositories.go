package rdb

import (
	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
	"gorm.io/gorm"
)

// WorkspaceRepository is a GORM-backed implementation of domain.WorkspaceRepository.
type WorkspaceRepository struct {
	*crud[model.Workspace, WorkspaceRecord]
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{&crud[model.Workspace, WorkspaceRecord]{
		db: db, idPrefix: "ws", order: "created_at ASC", notFound: model.ErrWorkspaceNotFound,
		id: func(m *model.Workspace) *string { return &m.ID },
		toRecord: func(m *model.Workspace) (*WorkspaceRecord, error) {
			return &WorkspaceRecord{ID: m.ID, Name: m.Name, Handle: m.Handle, Description: m.Description, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
		},
		toModel: func(r *WorkspaceRecord) (*model.Workspace, error) {
			return &model.Workspace{ID: r.ID, Name: r.Name, Handle: r.Handle, Description: r.Description, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}, nil
		},
	}}
}

// FlowRepository is a GORM-backed implementation of domain.FlowRepository.
type FlowRepository struct {
	*crud[model.Flow, FlowRecord]
}

func NewFlowRepository(db *gorm.DB) *FlowRepository {
	return &FlowRepository{&crud[model.Flow, FlowRecord]{
		db: db, idPrefix: "flow", order: "created_at ASC", notFound: model.ErrFlowNotFound,
		id: func(m *model.Flow) *string { return &m.ID },
		toRecord: func(m *model.Flow) (*FlowRecord, error) {
			tags, err := encodeJSON(m.Tags)
			if err != nil {
				return nil, err
			}
			return &FlowRecord{ID: m.ID, WorkspaceID: m.WorkspaceID, Name: m.Name, Entrypoint: m.Entrypoint, Description: m.Description, Tags: tags, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}, nil
		},
		toModel: func(r *FlowRecord) (*model.Flow, error) {
			m := &model.Flow{ID: r.ID, WorkspaceID: r.WorkspaceID, Name: r.Name, Entrypoint: r.Entrypoint, Description: r.Description, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
			return m, decodeJSON(r.Tags, &m.Tags)
		},
	}}
}

// DeploymentRepository is a GORM-backed implementation of domain.DeploymentRepository.
type DeploymentRepository struct {
	*crud[model.Deployment, DeploymentRecord]
}

func NewDeploymentRepository(db *gorm.DB) *DeploymentRepository {
	return &DeploymentRepository{&crud[model.Deployment, DeploymentRecord]{
		db: db, idPrefix: "dep", order: "created_at ASC", notFound: model.ErrDeploymentNotFound,
		id: func(m *model.Deployment) *string { return &m.ID },
		toRecord: func(m *model.Deployment) (*DeploymentRecord, error) {
			r := &DeploymentRecord{
				ID: m.ID, WorkspaceID: m.WorkspaceID, FlowID: m.FlowID, Name: m.Name, Version: m.Version,
				Description: m.Description, Paused: m.Paused, WorkPoolName: m.WorkPoolName, WorkQueueName: m.WorkQueueName,
				Entrypoint: m.Entrypoint, Path: m.Path, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
			}
			var err error
			for _, c := range []struct {
				dst *string
				v   any
			}{
				{&r.Tags, m.Tags}, {&r.Parameters, m.Parameters}, {&r.ParameterSchema, m.ParameterSchema},
				{&r.Schedule, m.Schedule}, {&r.PullSteps, m.PullSteps}, {&r.JobVariables, m.JobVariables},
			} {
				if *c.dst, err = encodeJSON(c.v); err != nil {
					return nil, err
				}
			}
			return r, nil
		},
		toModel: func(r *DeploymentRecord) (*model.Deployment, error) {
			m := &model.Deployment{
				ID: r.ID, WorkspaceID: r.WorkspaceID, FlowID: r.FlowID, Name: r.Name, Version: r.Version,
				Description: r.Description, Paused: r.Paused, WorkPoolName: r.WorkPoolName, WorkQueueName: r.WorkQueueName,
				Entrypoint: r.Entrypoint, Path: r.Path, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
			}
			for _, c := range []struct {
				src string
				v   any
			}{
				{r.Tags, &m.Tags}, {r.Parameters, &m.Parameters}, {r.ParameterSchema, &m.ParameterSchema},
				{r.Schedule, &m.Schedule}, {r.PullSteps, &m.PullSteps}, {r.JobVariables, &m.JobVariables},
			} {
				if err := decodeJSON(c.src, c.v); err != nil {
					return nil, err
				}
			}
			return m, nil
		},
	}}
}

// WorkPoolRepository is a GORM-backed implementation of domain.WorkPoolRepository.
type WorkPoolRepository struct {
	*crud[model.WorkPool, WorkPoolRecord]
}

func NewWorkPoolRepository(db *gorm.DB) *WorkPoolRepository {
	return &WorkPoolRepository{&crud[model.WorkPool, WorkPoolRecord]{
		db: db, idPrefix: "pool", order: "created_at ASC", notFound: model.ErrWorkPoolNotFound,
		id: func(m *model.WorkPool) *string { return &m.ID },
		toRecord: func(m *model.WorkPool) (*WorkPoolRecord, error) {
			tpl, err := encodeJSON(m.BaseJobTemplate)
			if err != nil {
				return nil, err
			}
			queues, err := encodeJSON(m.Queues)
			if err != nil {
				return nil, err
			}
			return &WorkPoolRecord{
				ID: m.ID, WorkspaceID: m.WorkspaceID, Name: m.Name, Type: m.Type, Description: m.Description,
				BaseJobTemplate: tpl, ConcurrencyLimit: m.ConcurrencyLimit, Paused: m.Paused, Queues: queues,
				CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
			}, nil
		},
		toModel: func(r *WorkPoolRecord) (*model.WorkPool, error) {
			m := &model.WorkPool{
				ID: r.ID, WorkspaceID: r.WorkspaceID, Name: r.Name, Type: r.Type, Description: r.Description,
				ConcurrencyLimit: r.ConcurrencyLimit, Paused: r.Paused, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
			}
			if err := decodeJSON(r.BaseJobTemplate, &m.BaseJobTemplate); err != nil {
				return nil, err
			}
			return m, decodeJSON(r.Queues, &m.Queues)
		},
	}}
}

// FlowRunRepository is a GORM-backed implementation of domain.FlowRunRepository.
type FlowRunRepository struct {
	*crud[model.FlowRun, FlowRunRecord]
}

func NewFlowRunRepository(db *gorm.DB) *FlowRunRepository {
	return &FlowRunRepository{&crud[model.FlowRun, FlowRunRecord]{
		db: db, idPrefix: "run", order: "created_at ASC", notFound: model.ErrFlowRunNotFound,
		id: func(m *model.FlowRun) *string { return &m.ID },
		toRecord: func(m *model.FlowRun) (*FlowRunRecord, error) {
			r := &FlowRunRecord{
				ID: m.ID, WorkspaceID: m.WorkspaceID, FlowID: m.FlowID, DeploymentID: m.DeploymentID, Name: m.Name,
				State: string(m.State), StateMessage: m.StateMessage, ExpectedStartTime: m.ExpectedStartTime,
				StartTime: m.StartTime, EndTime: m.EndTime, WorkPoolName: m.WorkPoolName, WorkQueueName: m.WorkQueueName,
				InfrastructureID: m.InfrastructureID, IdempotencyKey: m.IdempotencyKey, RunCount: m.RunCount,
				CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
			}
			var err error
			if r.Parameters, err = encodeJSON(m.Parameters); err != nil {
				return nil, err
			}
			if r.JobVariables, err = encodeJSON(m.JobVariables); err != nil {
				return nil, err
			}
			if r.Tags, err = encodeJSON(m.Tags); err != nil {
				return nil, err
			}
			return r, nil
		},
		toModel: func(r *FlowRunRecord) (*model.FlowRun, error) {
			m := &model.FlowRun{
				ID: r.ID, WorkspaceID: r.WorkspaceID, FlowID: r.FlowID, DeploymentID: r.DeploymentID, Name: r.Name,
				State: model.StateType(r.State), StateMessage: r.StateMessage, ExpectedStartTime: r.ExpectedStartTime,
				StartTime: r.StartTime, EndTime: r.EndTime, WorkPoolName: r.WorkPoolName, WorkQueueName: r.WorkQueueName,
				InfrastructureID: r.InfrastructureID, IdempotencyKey: r.IdempotencyKey, RunCount: r.RunCount,
				CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
			}
			if err := decodeJSON(r.Parameters, &m.Parameters); err != nil {
				return nil, err
			}
			if err := decodeJSON(r.JobVariables, &m.JobVariables); err != nil {
				return nil, err
			}
			return m, decodeJSON(r.Tags, &m.Tags)
		},
	}}
}

// EventRepository is a GORM-backed implementation of domain.EventRepository.
type EventRepository struct {
	*crud[model.Event, EventRecord]
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{&crud[model.Event, EventRecord]{
		db: db, idPrefix: "evt", order: "received ASC", notFound: model.ErrEventNotFound,
		id: func(m *model.Event) *string { return &m.ID },
		toRecord: func(m *model.Event) (*EventRecord, error) {
			r := &EventRecord{ID: m.ID, WorkspaceID: m.WorkspaceID, Event: m.Event, Occurred: m.Occurred, Received: m.Received}
			var err error
			if r.Resource, err = encodeJSON(m.Resource); err != nil {
				return nil, err
			}
			if r.Related, err = encodeJSON(m.Related); err != nil {
				return nil, err
			}
			if r.Payload, err = encodeJSON(m.Payload); err != nil {
				return nil, err
			}
			return r, nil
		},
		toModel: func(r *EventRecord) (*model.Event, error) {
			m := &model.Event{ID: r.ID, WorkspaceID: r.WorkspaceID, Event: r.Event, Occurred: r.Occurred, Received: r.Received}
			if err := decodeJSON(r.Resource, &m.Resource); err != nil {
				return nil, err
			}
			if err := decodeJSON(r.Related, &m.Related); err != nil {
				return nil, err
			}
			return m, decodeJSON(r.Payload, &m.Payload)
		},
	}}
}

// AutomationRepository is a GORM-backed implementation of domain.AutomationRepository.
type AutomationRepository struct {
	*crud[model.Automation, AutomationRecord]
}

func NewAutomationRepository(db *gorm.DB) *AutomationRepository {
	return &AutomationRepository{&crud[model.Automation, AutomationRecord]{
		db: db, idPrefix: "auto", order: "created_at ASC", notFound: model.ErrAutomationNotFound,
		id: func(m *model.Automation) *string { return &m.ID },
		toRecord: func(m *model.Automation) (*AutomationRecord, error) {
			trigger, err := encodeJSON(m.Trigger)
			if err != nil {
				return nil, err
			}
			actions, err := encodeJSON(m.Actions)
			if err != nil {
				return nil, err
			}
			return &AutomationRecord{
				ID: m.ID, WorkspaceID: m.WorkspaceID, Name: m.Name, Description: m.Description, Enabled: m.Enabled,
				Trigger: trigger, Actions: actions, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
			}, nil
		},
		toModel: func(r *AutomationRecord) (*model.Automation, error) {
			m := &model.Automation{
				ID: r.ID, WorkspaceID: r.WorkspaceID, Name: r.Name, Description: r.Description, Enabled: r.Enabled,
				CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
			}
			if err := decodeJSON(r.Trigger, &m.Trigger); err != nil {
				return nil, err
			}
			return m, decodeJSON(r.Actions, &m.Actions)
		},
	}}
}

// IncidentRepository is a GORM-backed implementation of domain.IncidentRepository.
type IncidentRepository struct {
	*crud[model.Incident, IncidentRecord]
}

func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{&crud[model.Incident, IncidentRecord]{
		db: db, idPrefix: "inc", order: "created_at ASC", notFound: model.ErrIncidentNotFound,
		id: func(m *model.Incident) *string { return &m.ID },
		toRecord: func(m *model.Incident) (*IncidentRecord, error) {
			res, err := encodeJSON(m.Resources)
			if err != nil {
				return nil, err
			}
			return &IncidentRecord{
				ID: m.ID, WorkspaceID: m.WorkspaceID, Title: m.Title, Summary: m.Summary, Severity: m.Severity,
				Status: m.Status, AutomationID: m.AutomationID, EventID: m.EventID, Resources: res,
				DeclaredAt: m.DeclaredAt, ResolvedAt: m.ResolvedAt, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
			}, nil
		},
		toModel: func(r *IncidentRecord) (*model.Incident, error) {
			m := &model.Incident{
				ID: r.ID, WorkspaceID: r.WorkspaceID, Title: r.Title, Summary: r.Summary, Severity: r.Severity,
				Status: r.Status, AutomationID: r.AutomationID, EventID: r.EventID,
				DeclaredAt: r.DeclaredAt, ResolvedAt: r.ResolvedAt, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
			}
			return m, decodeJSON(r.Resources, &m.Resources)
		},
	}}
}

// ArtifactRepository is a GORM-backed implementation of domain.ArtifactRepository.
type ArtifactRepository struct {
	*crud[model.Artifact, ArtifactRecord]
}

func NewArtifactRepository(db *gorm.DB) *ArtifactRepository {
	return &ArtifactRepository{&crud[model.Artifact, ArtifactRecord]{
		db: db, idPrefix: "art", order: "created_at ASC", notFound: model.ErrArtifactNotFound,
		id: func(m *model.Artifact) *string { return &m.ID },
		toRecord: func(m *model.Artifact) (*ArtifactRecord, error) {
			return &ArtifactRecord{
				ID: m.ID, WorkspaceID: m.WorkspaceID, Key: m.Key, Type: m.Type, Description: m.Description,
				Data: m.Data, FlowRunID: m.FlowRunID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
			}, nil
		},
		toModel: func(r *ArtifactRecord) (*model.Artifact, error) {
			return &model.Artifact{
				ID: r.ID, WorkspaceID: r.WorkspaceID, Key: r.Key, Type: r.Type, Description: r.Description,
				Data: r.Data, FlowRunID: r.FlowRunID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
			}, nil
		},
	}}
}

// NewRepositories wires every GORM repository over db.
func NewRepositories(db *gorm.DB) *domain.Repositories {
	return &domain.Repositories{
		Workspace:  NewWorkspaceRepository(db),
		Flow:       NewFlowRepository(db),
		Deployment: NewDeploymentRepository(db),
		WorkPool:   NewWorkPoolRepository(db),
		FlowRun:    NewFlowRunRepository(db),
		Event:      NewEventRepository(db),
		Automation: NewAutomationRepository(db),
		Incident:   NewIncidentRepository(db),
		Artifact:   NewArtifactRepository(db),
	}
}

// Ensure interface satisfaction.
var (
	_ domain.WorkspaceRepository  = (*WorkspaceRepository)(nil)
	_ domain.FlowRepository       = (*FlowRepository)(nil)
	_ domain.DeploymentRepository = (*DeploymentRepository)(nil)
	_ domain.WorkPoolRepository   = (*WorkPoolRepository)(nil)
	_ domain.FlowRunRepository    = (*FlowRunRepository)(nil)
	_ domain.EventRepository      = (*EventRepository)(nil)
	_ domain.AutomationRepository = (*AutomationRepository)(nil)
	_ domain.IncidentRepository   = (*IncidentRepository)(nil)
	_ domain.ArtifactRepository   = (*ArtifactRepository)(nil)
)
