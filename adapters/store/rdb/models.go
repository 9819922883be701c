package rdb

import "time"

// WorkspaceRecord is the RDB persistence model for domain Workspace.
// Table name: workspaces
type WorkspaceRecord struct {
	ID          string    `gorm:"primaryKey;type:text;not null"`
	Name        string    `gorm:"type:text;not null;uniqueIndex"`
	Handle      string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (WorkspaceRecord) TableName() string { return "workspaces" }

// FlowRecord persistence model
type FlowRecord struct {
	ID          string    `gorm:"primaryKey;type:text;not null"`
	WorkspaceID string    `gorm:"type:text;not null;index"` // references Workspace
	Name        string    `gorm:"type:text;not null"`
	Entrypoint  string    `gorm:"type:text"`
	Description string    `gorm:"type:text"`
	Tags        string    `gorm:"type:text"` // JSON encoded []string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (FlowRecord) TableName() string { return "flows" }

// DeploymentRecord persistence model
type DeploymentRecord struct {
	ID              string    `gorm:"primaryKey;type:text;not null"`
	WorkspaceID     string    `gorm:"type:text;not null;index"`
	FlowID          string    `gorm:"type:text;not null;index"` // references Flow
	Name            string    `gorm:"type:text;not null"`
	Version         string    `gorm:"type:text"`
	Description     string    `gorm:"type:text"`
	Tags            string    `gorm:"type:text"` // JSON encoded []string
	Parameters      string    `gorm:"type:text"` // JSON encoded map[string]any
	ParameterSchema string    `gorm:"type:text"` // JSON encoded map[string]any
	Schedule        string    `gorm:"type:text"` // JSON encoded *model.Schedule
	Paused          bool      `gorm:"not null"`
	WorkPoolName    string    `gorm:"type:text"`
	WorkQueueName   string    `gorm:"type:text"`
	Entrypoint      string    `gorm:"type:text"`
	Path            string    `gorm:"type:text"`
	PullSteps       string    `gorm:"type:text"` // JSON encoded []map[string]any
	JobVariables    string    `gorm:"type:text"` // JSON encoded map[string]any
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (DeploymentRecord) TableName() string { return "deployments" }

// WorkPoolRecord persistence model
type WorkPoolRecord struct {
	ID               string    `gorm:"primaryKey;type:text;not null"`
	WorkspaceID      string    `gorm:"type:text;not null;index"`
	Name             string    `gorm:"type:text;not null"`
	Type             string    `gorm:"type:text;not null"`
	Description      string    `gorm:"type:text"`
	BaseJobTemplate  string    `gorm:"type:text"` // JSON encoded map[string]any
	ConcurrencyLimit int       `gorm:"not null"`
	Paused           bool      `gorm:"not null"`
	Queues           string    `gorm:"type:text"` // JSON encoded []model.WorkQueue
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (WorkPoolRecord) TableName() string { return "work_pools" }

// FlowRunRecord persistence model
type FlowRunRecord struct {
	ID                string     `gorm:"primaryKey;type:text;not null"`
	WorkspaceID       string     `gorm:"type:text;not null;index"`
	FlowID            string     `gorm:"type:text;not null"`
	DeploymentID      string     `gorm:"type:text;index"`
	Name              string     `gorm:"type:text;not null"`
	Parameters        string     `gorm:"type:text"` // JSON encoded map[string]any
	JobVariables      string     `gorm:"type:text"` // JSON encoded map[string]any
	State             string     `gorm:"type:text;not null;index"`
	StateMessage      string     `gorm:"type:text"`
	ExpectedStartTime time.Time  `gorm:"not null"`
	StartTime         *time.Time `gorm:"default:null"`
	EndTime           *time.Time `gorm:"default:null"`
	WorkPoolName      string     `gorm:"type:text"`
	WorkQueueName     string     `gorm:"type:text"`
	InfrastructureID  string     `gorm:"type:text"`
	Tags              string     `gorm:"type:text"` // JSON encoded []string
	IdempotencyKey    string     `gorm:"type:text;index"`
	RunCount          int        `gorm:"not null"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

func (FlowRunRecord) TableName() string { return "flow_runs" }

// EventRecord persistence model
type EventRecord struct {
	ID          string    `gorm:"primaryKey;type:text;not null"`
	WorkspaceID string    `gorm:"type:text;not null;index"`
	Event       string    `gorm:"type:text;not null;index"`
	Occurred    time.Time `gorm:"not null"`
	Received    time.Time `gorm:"not null;index"`
	Resource    string    `gorm:"type:text"` // JSON encoded model.Resource
	Related     string    `gorm:"type:text"` // JSON encoded []model.Resource
	Payload     string    `gorm:"type:text"` // JSON encoded map[string]any
}

func (EventRecord) TableName() string { return "events" }

// AutomationRecord persistence model
type AutomationRecord struct {
	ID          string    `gorm:"primaryKey;type:text;not null"`
	WorkspaceID string    `gorm:"type:text;not null;index"`
	Name        string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	Enabled     bool      `gorm:"not null"`
	Trigger     string    `gorm:"type:text"` // JSON encoded model.EventTrigger
	Actions     string    `gorm:"type:text"` // JSON encoded []model.Action
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (AutomationRecord) TableName() string { return "automations" }

// IncidentRecord persistence model
type IncidentRecord struct {
	ID           string     `gorm:"primaryKey;type:text;not null"`
	WorkspaceID  string     `gorm:"type:text;not null;index"`
	Title        string     `gorm:"type:text;not null"`
	Summary      string     `gorm:"type:text"`
	Severity     string     `gorm:"type:text;not null"`
	Status       string     `gorm:"type:text;not null"`
	AutomationID string     `gorm:"type:text"`
	EventID      string     `gorm:"type:text"`
	Resources    string     `gorm:"type:text"` // JSON encoded []model.Resource
	DeclaredAt   time.Time  `gorm:"not null"`
	ResolvedAt   *time.Time `gorm:"default:null"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

func (IncidentRecord) TableName() string { return "incidents" }

// ArtifactRecord persistence model
type ArtifactRecord struct {
	ID          string    `gorm:"primaryKey;type:text;not null"`
	WorkspaceID string    `gorm:"type:text;not null;index"`
	Key         string    `gorm:"type:text;index"`
	Type        string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	Data        string    `gorm:"type:text"`
	FlowRunID   string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (ArtifactRecord) TableName() string { return "artifacts" }
