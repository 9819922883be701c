package incident

import (
	"context"
	"time"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/logging"
)

// Incident events.
const (
	EventDeclared = "flowops.incident.declared"
	EventResolved = "flowops.incident.resolved"
)

// LabelSeverity carries the incident severity on incident events.
const LabelSeverity = "flowops.incident.severity"

// Repos holds repositories needed for incident use cases.
type Repos struct {
	Incident domain.IncidentRepository
}

// UseCase wires repositories and the event sink for incident use cases.
type UseCase struct {
	Repos  *Repos
	Events model.EventSink
	Now    func() time.Time
}

func (u *UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now().UTC()
	}
	return time.Now().UTC()
}

func (u *UseCase) get(ctx context.Context, workspaceID, id string) (*model.Incident, error) {
	if id == "" {
		return nil, model.ErrIncidentInvalid
	}
	inc, err := u.Repos.Incident.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inc.WorkspaceID != workspaceID {
		return nil, model.ErrIncidentNotFound
	}
	return inc, nil
}

// emit reports an incident change. Failures are logged only.
func (u *UseCase) emit(ctx context.Context, name string, inc *model.Incident) {
	if u.Events == nil {
		return
	}
	ev := &model.Event{
		WorkspaceID: inc.WorkspaceID,
		Event:       name,
		Occurred:    u.now(),
		Resource: model.Resource{
			model.LabelResourceID:   model.ResourceIncident + inc.ID,
			model.LabelResourceName: inc.Title,
			LabelSeverity:           inc.Severity,
		},
		Payload: map[string]any{"status": inc.Status, "summary": inc.Summary},
	}
	for _, r := range inc.Resources {
		if r.ID() != "" {
			ev.Related = append(ev.Related, r)
		}
	}
	if inc.AutomationID != "" {
		ev.Related = append(ev.Related, model.Resource{
			model.LabelResourceID:   model.ResourceAutomation + inc.AutomationID,
			model.LabelResourceRole: "automation",
		})
	}
	if err := u.Events.Emit(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn(ctx, "incident event not emitted", "event", name, "incident", inc.ID, "err", err)
	}
}
