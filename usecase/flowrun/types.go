package flowrun

import (
	"context"
	"fmt"
	"time"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/logging"
	"github.com/kompox/flowops/internal/metrics"
)

// Repos holds repositories needed for flow run use cases.
type Repos struct {
	FlowRun    domain.FlowRunRepository
	Flow       domain.FlowRepository
	Deployment domain.DeploymentRepository
}

// UseCase wires repositories and the event sink for flow run use cases.
type UseCase struct {
	Repos *Repos
	// Events receives state change events. Optional.
	Events model.EventSink
	// Metrics counts state transitions. Optional.
	Metrics *metrics.Metrics
	// Now overrides the clock in tests.
	Now func() time.Time
}

func (u *UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now().UTC()
	}
	return time.Now().UTC()
}

// get returns the run when it belongs to the workspace.
func (u *UseCase) get(ctx context.Context, workspaceID, id string) (*model.FlowRun, error) {
	if id == "" {
		return nil, model.ErrFlowRunInvalid
	}
	r, err := u.Repos.FlowRun.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("%w: %s", model.ErrFlowRunNotFound, id)
	}
	return r, nil
}

// Related resource roles attached to flow run events.
const (
	RoleFlow       = "flow"
	RoleDeployment = "deployment"
	RoleWorkPool   = "work-pool"
)

// StateEvent builds the event describing the current state of run. from is
// the state it left, empty for new runs.
func StateEvent(run *model.FlowRun, from model.StateType, at time.Time) *model.Event {
	ev := &model.Event{
		WorkspaceID: run.WorkspaceID,
		Event:       "flowops.flow-run." + run.State.Name(),
		Occurred:    at,
		Resource: model.Resource{
			model.LabelResourceID:   model.ResourceFlowRun + run.ID,
			model.LabelResourceName: run.Name,
			"flowops.state-type":    string(run.State),
			"flowops.state-name":    run.State.Name(),
		},
		Related: []model.Resource{{
			model.LabelResourceID:   model.ResourceFlow + run.FlowID,
			model.LabelResourceRole: RoleFlow,
		}},
		Payload: map[string]any{
			"intended": map[string]any{"from": string(from), "to": string(run.State)},
		},
	}
	if run.StateMessage != "" {
		ev.Payload["message"] = run.StateMessage
	}
	if run.DeploymentID != "" {
		ev.Related = append(ev.Related, model.Resource{
			model.LabelResourceID:   model.ResourceDeployment + run.DeploymentID,
			model.LabelResourceRole: RoleDeployment,
		})
	}
	if run.WorkPoolName != "" {
		ev.Related = append(ev.Related, model.Resource{
			model.LabelResourceID:   model.ResourceWorkPool + run.WorkPoolName,
			model.LabelResourceName: run.WorkPoolName,
			model.LabelResourceRole: RoleWorkPool,
		})
	}
	return ev
}

// emitState records the transition and publishes its event. Emission
// failures are logged; the state change itself already happened.
func (u *UseCase) emitState(ctx context.Context, run *model.FlowRun, from model.StateType) {
	u.Metrics.FlowRunTransition(string(run.State))
	if u.Events == nil {
		return
	}
	if err := u.Events.Emit(ctx, StateEvent(run, from, u.now())); err != nil {
		logging.FromContext(ctx).Warn(ctx, "flow run event not emitted", "flowRun", run.ID, "err", err)
	}
}
