package incident

import (
	"context"
	"fmt"
	"strings"

	"github.com/kompox/flowops/domain/model"
)

// DeclareInput describes a new incident.
type DeclareInput struct {
	WorkspaceID string `json:"workspace_id"`
	Title       string `json:"title"`
	Summary     string `json:"summary,omitempty"`
	// Severity defaults to medium.
	Severity     string           `json:"severity,omitempty"`
	AutomationID string           `json:"automation_id,omitempty"`
	EventID      string           `json:"event_id,omitempty"`
	Resources    []model.Resource `json:"resources,omitempty"`
}

// DeclareOutput wraps the declared incident.
type DeclareOutput struct {
	Incident *model.Incident `json:"incident"`
}

// Declare stores an active incident and emits flowops.incident.declared.
func (u *UseCase) Declare(ctx context.Context, in *DeclareInput) (*DeclareOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrIncidentInvalid
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrIncidentInvalid)
	}
	severity := in.Severity
	if severity == "" {
		severity = model.SeverityMedium
	}
	if !model.IsKnownSeverity(severity) {
		return nil, fmt.Errorf("%w: unknown severity %q", model.ErrIncidentInvalid, severity)
	}
	t := u.now()
	inc := &model.Incident{
		WorkspaceID:  in.WorkspaceID,
		Title:        in.Title,
		Summary:      in.Summary,
		Severity:     severity,
		Status:       model.IncidentActive,
		AutomationID: in.AutomationID,
		EventID:      in.EventID,
		Resources:    in.Resources,
		DeclaredAt:   t,
		CreatedAt:    t,
		UpdatedAt:    t,
	}
	if err := u.Repos.Incident.Create(ctx, inc); err != nil {
		return nil, err
	}
	u.emit(ctx, EventDeclared, inc)
	return &DeclareOutput{Incident: inc}, nil
}
