package automation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kompox/flowops/adapters/store/inmem"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/domain/trigger"
)

func newUseCase(t *testing.T) *UseCase {
	t.Helper()
	repos := inmem.NewStore().Repositories()
	return &UseCase{
		Repos:     &Repos{Automation: repos.Automation, Deployment: repos.Deployment},
		Evaluator: trigger.NewEvaluator(),
	}
}

// onCompleted runs target whenever a run of source completes.
func onCompleted(name, source, target string) *CreateInput {
	return &CreateInput{
		WorkspaceID: "ws",
		Name:        name,
		Enabled:     true,
		Trigger: model.EventTrigger{
			MatchRelated: map[string]string{model.LabelResourceID: model.ResourceDeployment + source},
			Expect:       []string{"flowops.flow-run.Completed"},
			Posture:      model.PostureReactive,
			Threshold:    1,
		},
		Actions: []model.Action{{Type: model.ActionRunDeployment, DeploymentID: target}},
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	u := newUseCase(t)

	_, err := u.Create(ctx, &CreateInput{WorkspaceID: "ws", Name: "x", Trigger: model.EventTrigger{Posture: model.PostureReactive, Threshold: 1}})
	assert.ErrorIs(t, err, model.ErrAutomationInvalid, "no actions")

	_, err = u.Create(ctx, &CreateInput{
		WorkspaceID: "ws", Name: "x",
		Trigger: model.EventTrigger{Posture: model.PostureProactive, Threshold: 1},
		Actions: []model.Action{{Type: model.ActionDeclareIncident}},
	})
	assert.ErrorIs(t, err, model.ErrAutomationInvalid, "proactive without within")

	_, err = u.Create(ctx, onCompleted("a", "d1", "d2"))
	require.NoError(t, err)
	_, err = u.Create(ctx, onCompleted("a", "d3", "d4"))
	assert.ErrorIs(t, err, model.ErrAutomationInvalid, "duplicate name")
}

func TestChainCycleRejected(t *testing.T) {
	ctx := context.Background()
	u := newUseCase(t)

	_, err := u.Create(ctx, onCompleted("a-to-b", "a", "b"))
	require.NoError(t, err)
	_, err = u.Create(ctx, onCompleted("b-to-c", "b", "c"))
	require.NoError(t, err)
	_, err = u.Create(ctx, onCompleted("c-to-a", "c", "a"))
	assert.ErrorIs(t, err, model.ErrAutomationCycle)

	self := onCompleted("self", "x", "")
	_, err = u.Create(ctx, self)
	assert.ErrorIs(t, err, model.ErrAutomationCycle, "inferred target runs the watched deployment again")

	disabled := onCompleted("c-to-a", "c", "a")
	disabled.Enabled = false
	out, err := u.Create(ctx, disabled)
	require.NoError(t, err, "disabled automations do not form chains")

	_, err = u.Enable(ctx, &EnableInput{WorkspaceID: "ws", Ref: out.Automation.ID})
	assert.ErrorIs(t, err, model.ErrAutomationCycle)
}

func TestEnableDisableForgetsState(t *testing.T) {
	ctx := context.Background()
	u := newUseCase(t)
	in := &CreateInput{
		WorkspaceID: "ws",
		Name:        "watch",
		Enabled:     true,
		Trigger:     model.EventTrigger{Expect: []string{"ping"}, Posture: model.PostureReactive, Threshold: 3},
		Actions:     []model.Action{{Type: model.ActionDeclareIncident}},
	}
	out, err := u.Create(ctx, in)
	require.NoError(t, err)
	a := out.Automation

	ev := &model.Event{WorkspaceID: "ws", Event: "ping", Occurred: time.Now(), Resource: model.Resource{model.LabelResourceID: "x"}}
	u.Evaluator.Evaluate(ev, []*model.Automation{a})
	assert.Equal(t, 1, u.Evaluator.Pending(a.ID))

	dis, err := u.Disable(ctx, &EnableInput{WorkspaceID: "ws", Ref: "watch"})
	require.NoError(t, err)
	assert.False(t, dis.Automation.Enabled)
	assert.Equal(t, 0, u.Evaluator.Pending(a.ID))

	en, err := u.Enable(ctx, &EnableInput{WorkspaceID: "ws", Ref: "watch"})
	require.NoError(t, err)
	assert.True(t, en.Automation.Enabled)

	name := "renamed"
	up, err := u.Update(ctx, &UpdateInput{WorkspaceID: "ws", Ref: a.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", up.Automation.Name)

	list, err := u.List(ctx, &ListInput{WorkspaceID: "ws", EnabledOnly: true})
	require.NoError(t, err)
	assert.Len(t, list.Automations, 1)

	_, err = u.Delete(ctx, &DeleteInput{WorkspaceID: "ws", Ref: "renamed"})
	require.NoError(t, err)
	_, err = u.Get(ctx, &GetInput{WorkspaceID: "ws", Ref: "renamed"})
	assert.ErrorIs(t, err, model.ErrAutomationNotFound)
}
