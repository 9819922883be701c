// Package action performs the actions of fired automations.
package action

import (
	"context"
	"fmt"
	"time"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/logging"
	"github.com/kompox/flowops/internal/templating"
	"github.com/kompox/flowops/usecase/automation"
	"github.com/kompox/flowops/usecase/deployment"
	"github.com/kompox/flowops/usecase/flowrun"
	"github.com/kompox/flowops/usecase/incident"
)

// Events reporting the outcome of an action.
const (
	EventExecuted = "flowops.automation.action.executed"
	EventFailed   = "flowops.automation.action.failed"
)

// DefaultIncidentTitle is rendered when a declare-incident action has no title.
const DefaultIncidentTitle = `Automation {{ .automation.Name }} triggered on {{ .event.Event }}`

// Dispatcher implements model.ActionPort on top of the use cases. A nil use
// case makes its actions fail.
type Dispatcher struct {
	Deployments *deployment.UseCase
	FlowRuns    *flowrun.UseCase
	Automations *automation.UseCase
	Incidents   *incident.UseCase
	// Events receives executed and failed action events. Optional.
	Events    model.EventSink
	Templates *templating.Engine
	Now       func() time.Time
}

var _ model.ActionPort = (*Dispatcher)(nil)

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// Perform runs one action of a fired automation and reports the outcome as an event.
func (d *Dispatcher) Perform(ctx context.Context, a *model.Automation, act *model.Action, ev *model.Event) error {
	if a == nil || act == nil || ev == nil {
		return fmt.Errorf("%w: automation, action and event are required", model.ErrAutomationInvalid)
	}
	ctx, end := logging.Span(ctx, "ACTION", act.Type, a.ID)
	subject, err := d.perform(ctx, a, act, ev)
	end(err, "subject", subject)
	d.report(ctx, a, act, ev, subject, err)
	return err
}

func (d *Dispatcher) perform(ctx context.Context, a *model.Automation, act *model.Action, ev *model.Event) (string, error) {
	ws := a.WorkspaceID
	switch act.Type {
	case model.ActionRunDeployment:
		id, err := deploymentID(act, ev)
		if err != nil || d.Deployments == nil {
			return id, orUnconfigured(err, "deployments")
		}
		params, err := d.renderParameters(act.Parameters, a, ev)
		if err != nil {
			return id, err
		}
		out, err := d.Deployments.Run(ctx, &deployment.RunInput{WorkspaceID: ws, Ref: id, Parameters: params, Tags: []string{"automation"}})
		if err != nil {
			return id, err
		}
		return out.FlowRun.ID, nil

	case model.ActionPauseDeployment, model.ActionResumeDeployment:
		id, err := deploymentID(act, ev)
		if err != nil || d.Deployments == nil {
			return id, orUnconfigured(err, "deployments")
		}
		in := &deployment.PauseInput{WorkspaceID: ws, Ref: id}
		if act.Type == model.ActionPauseDeployment {
			_, err = d.Deployments.Pause(ctx, in)
		} else {
			_, err = d.Deployments.Resume(ctx, in)
		}
		return id, err

	case model.ActionCancelFlowRun, model.ActionChangeFlowRunState:
		id, ok := ev.ResourceIDWithPrefix(model.ResourceFlowRun)
		if !ok {
			return "", fmt.Errorf("%w: event %s does not concern a flow run", model.ErrAutomationInvalid, ev.Event)
		}
		if d.FlowRuns == nil {
			return id, orUnconfigured(nil, "flow runs")
		}
		if act.Type == model.ActionCancelFlowRun {
			_, err := d.FlowRuns.Cancel(ctx, &flowrun.CancelInput{WorkspaceID: ws, FlowRunID: id})
			return id, err
		}
		msg, err := d.render("message", act.Message, a, ev)
		if err != nil {
			return id, err
		}
		_, err = d.FlowRuns.SetState(ctx, &flowrun.SetStateInput{WorkspaceID: ws, FlowRunID: id, State: act.State, Message: msg})
		return id, err

	case model.ActionPauseAutomation, model.ActionResumeAutomation:
		id := act.AutomationID
		if id == "" {
			if inferred, ok := ev.ResourceIDWithPrefix(model.ResourceAutomation); ok {
				id = inferred
			} else {
				id = a.ID
			}
		}
		if d.Automations == nil {
			return id, orUnconfigured(nil, "automations")
		}
		in := &automation.EnableInput{WorkspaceID: ws, Ref: id}
		var err error
		if act.Type == model.ActionPauseAutomation {
			_, err = d.Automations.Disable(ctx, in)
		} else {
			_, err = d.Automations.Enable(ctx, in)
		}
		return id, err

	case model.ActionDeclareIncident:
		if d.Incidents == nil {
			return "", orUnconfigured(nil, "incidents")
		}
		title := act.Title
		if title == "" {
			title = DefaultIncidentTitle
		}
		title, err := d.render("title", title, a, ev)
		if err != nil {
			return "", err
		}
		summary, err := d.render("message", act.Message, a, ev)
		if err != nil {
			return "", err
		}
		resources := append([]model.Resource{ev.Resource}, ev.Related...)
		out, err := d.Incidents.Declare(ctx, &incident.DeclareInput{
			WorkspaceID:  ws,
			Title:        title,
			Summary:      summary,
			Severity:     act.Severity,
			AutomationID: a.ID,
			EventID:      ev.ID,
			Resources:    resources,
		})
		if err != nil {
			return "", err
		}
		return out.Incident.ID, nil
	}
	return "", fmt.Errorf("%w: unknown action type %q", model.ErrAutomationInvalid, act.Type)
}

// deploymentID returns the configured deployment or the one the event concerns.
func deploymentID(act *model.Action, ev *model.Event) (string, error) {
	if act.DeploymentID != "" {
		return act.DeploymentID, nil
	}
	if id, ok := ev.ResourceIDWithPrefix(model.ResourceDeployment); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: event %s does not concern a deployment", model.ErrAutomationInvalid, ev.Event)
}

func orUnconfigured(err error, what string) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("%s are not configured for automation actions", what)
}

// report emits the executed or failed event of an action.
func (d *Dispatcher) report(ctx context.Context, a *model.Automation, act *model.Action, ev *model.Event, subject string, actErr error) {
	if d.Events == nil {
		return
	}
	name := EventExecuted
	payload := map[string]any{"action_type": act.Type, "triggering_event": ev.ID}
	if subject != "" {
		payload["subject"] = subject
	}
	if actErr != nil {
		name = EventFailed
		payload["reason"] = actErr.Error()
	}
	out := &model.Event{
		WorkspaceID: a.WorkspaceID,
		Event:       name,
		Occurred:    d.now(),
		Resource: model.Resource{
			model.LabelResourceID:   model.ResourceAutomation + a.ID,
			model.LabelResourceName: a.Name,
		},
		Payload: payload,
	}
	if id := ev.Resource.ID(); id != "" {
		out.Related = []model.Resource{{model.LabelResourceID: id, model.LabelResourceRole: "triggering-resource"}}
	}
	if err := d.Events.Emit(ctx, out); err != nil {
		logging.FromContext(ctx).Warn(ctx, "action event not emitted", "event", name, "automation", a.ID, "err", err)
	}
}
