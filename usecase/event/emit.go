package event

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/domain/trigger"
	"github.com/kompox/flowops/internal/logging"
)

// EmitInput carries an event to ingest.
type EmitInput struct {
	Event *model.Event `json:"event"`
}

// Fired summarizes one automation firing.
type Fired struct {
	AutomationID string `json:"automation_id"`
	Automation   string `json:"automation"`
	Bucket       string `json:"bucket,omitempty"`
	Count        int    `json:"count"`
}

// EmitOutput reports the stored event and what it triggered.
type EmitOutput struct {
	Event *model.Event `json:"event"`
	Fired []Fired      `json:"fired"`
	// ActionErrors lists actions that failed. They do not fail ingestion.
	ActionErrors []string `json:"action_errors,omitempty"`
}

// Emit validates and stores an event, then evaluates the automations of its
// workspace and dispatches actions of those that fire.
func (u *UseCase) Emit(ctx context.Context, in *EmitInput) (*EmitOutput, error) {
	if in == nil || in.Event == nil {
		return nil, model.ErrEventInvalid
	}
	ev := cloneEvent(in.Event)
	if err := validate(ev); err != nil {
		return nil, err
	}
	now := u.now()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Occurred.IsZero() {
		ev.Occurred = now
	}
	ev.Occurred = ev.Occurred.UTC()
	ev.Received = now
	if err := u.Repos.Event.Create(ctx, ev); err != nil {
		return nil, err
	}
	u.Metrics.EventIngested(ev.WorkspaceID)

	out := &EmitOutput{Event: ev, Fired: []Fired{}}
	logger := logging.FromContext(ctx)
	depth := Depth(ctx)
	if depth >= MaxDepth {
		logger.Warn(ctx, "event chain too deep, automations not evaluated", "event", ev.Event, "id", ev.ID, "depth", depth)
		return out, nil
	}
	if u.Evaluator == nil {
		return out, nil
	}
	autos, err := u.automations(ctx, "")
	if err != nil {
		return nil, err
	}
	u.markSeen(ev)
	if err := u.catchUp(ctx, now, autos); err != nil {
		return nil, err
	}
	firings := u.Evaluator.Evaluate(ev, autos)
	if merr := u.dispatch(withDepth(ctx, depth+1), firings, out); merr != nil {
		logger.Warn(ctx, "automation actions failed", "event", ev.Event, "id", ev.ID, "err", merr)
	}
	return out, nil
}

// dispatch performs the actions of firings and aggregates their errors.
func (u *UseCase) dispatch(ctx context.Context, firings []trigger.Firing, out *EmitOutput) error {
	var merr *multierror.Error
	for _, f := range firings {
		a := f.Automation
		u.Metrics.AutomationFired(string(a.Trigger.Posture))
		out.Fired = append(out.Fired, Fired{AutomationID: a.ID, Automation: a.Name, Bucket: f.Bucket, Count: f.Count})
		logging.FromContext(ctx).Info(ctx, "automation fired", "automation", a.Name, "id", a.ID, "bucket", f.Bucket, "count", f.Count)
		if u.Actions == nil {
			continue
		}
		for i := range a.Actions {
			action := &a.Actions[i]
			err := u.Actions.Perform(ctx, a, action, f.Event)
			u.Metrics.ActionDispatched(action.Type, err)
			if err != nil {
				err = fmt.Errorf("automation %s action %d (%s): %w", a.Name, i, action.Type, err)
				out.ActionErrors = append(out.ActionErrors, err.Error())
				merr = multierror.Append(merr, err)
			}
		}
	}
	return merr.ErrorOrNil()
}

func (u *UseCase) automations(ctx context.Context, workspaceID string) ([]*model.Automation, error) {
	if u.Repos.Automation == nil {
		return nil, nil
	}
	items, err := u.Repos.Automation.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Automation, 0, len(items))
	for _, a := range items {
		if workspaceID == "" || a.WorkspaceID == workspaceID {
			out = append(out, a)
		}
	}
	return out, nil
}

func validate(ev *model.Event) error {
	if ev.WorkspaceID == "" {
		return fmt.Errorf("%w: workspace is required", model.ErrEventInvalid)
	}
	if strings.TrimSpace(ev.Event) == "" {
		return fmt.Errorf("%w: event name is required", model.ErrEventInvalid)
	}
	if ev.Resource.ID() == "" {
		return fmt.Errorf("%w: resource must have a %s label", model.ErrEventInvalid, model.LabelResourceID)
	}
	for i, r := range ev.Related {
		if r.ID() == "" {
			return fmt.Errorf("%w: related resource %d must have a %s label", model.ErrEventInvalid, i, model.LabelResourceID)
		}
	}
	return nil
}

func cloneEvent(ev *model.Event) *model.Event {
	cp := *ev
	cp.Resource = cloneResource(ev.Resource)
	if ev.Related != nil {
		cp.Related = make([]model.Resource, len(ev.Related))
		for i, r := range ev.Related {
			cp.Related[i] = cloneResource(r)
		}
	}
	return &cp
}

func cloneResource(r model.Resource) model.Resource {
	if r == nil {
		return nil
	}
	out := make(model.Resource, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
