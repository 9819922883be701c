package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kompox/flowops/adapters/store/inmem"
	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/domain/trigger"
	"github.com/kompox/flowops/internal/metrics"
)

type performed struct {
	automation string
	action     string
	depth      int
}

type fakeActions struct {
	mu    sync.Mutex
	calls []performed
	err   error
	// onPerform runs after recording, e.g. to emit a follow-up event.
	onPerform func(ctx context.Context, ev *model.Event) error
}

func (f *fakeActions) Perform(ctx context.Context, a *model.Automation, act *model.Action, ev *model.Event) error {
	f.mu.Lock()
	f.calls = append(f.calls, performed{automation: a.Name, action: act.Type, depth: Depth(ctx)})
	f.mu.Unlock()
	if f.onPerform != nil {
		return f.onPerform(ctx, ev)
	}
	return f.err
}

func newUseCase(t *testing.T) (*UseCase, *domain.Repositories, *fakeActions) {
	t.Helper()
	repos := inmem.NewStore().Repositories()
	acts := &fakeActions{}
	u := &UseCase{
		Repos:     &Repos{Event: repos.Event, Automation: repos.Automation},
		Evaluator: trigger.NewEvaluator(),
		Actions:   acts,
		Metrics:   metrics.New(),
	}
	return u, repos, acts
}

func failedRun(id string, at time.Time) *model.Event {
	return &model.Event{
		WorkspaceID: "ws",
		Event:       "flowops.flow-run.Failed",
		Occurred:    at,
		Resource:    model.Resource{model.LabelResourceID: model.ResourceFlowRun + id},
	}
}

func TestEmitValidation(t *testing.T) {
	ctx := context.Background()
	u, _, _ := newUseCase(t)
	cases := []*model.Event{
		{Event: "x", Resource: model.Resource{model.LabelResourceID: "r"}},
		{WorkspaceID: "ws", Resource: model.Resource{model.LabelResourceID: "r"}},
		{WorkspaceID: "ws", Event: "x"},
		{WorkspaceID: "ws", Event: "x", Resource: model.Resource{model.LabelResourceID: "r"}, Related: []model.Resource{{"a": "b"}}},
	}
	for _, ev := range cases {
		_, err := u.Emit(ctx, &EmitInput{Event: ev})
		assert.ErrorIs(t, err, model.ErrEventInvalid)
	}
}

func TestEmitFiresReactiveAutomation(t *testing.T) {
	ctx := context.Background()
	u, repos, acts := newUseCase(t)
	auto := &model.Automation{
		WorkspaceID: "ws",
		Name:        "two-failures",
		Enabled:     true,
		Trigger: model.EventTrigger{
			Match:     map[string]string{model.LabelResourceID: model.ResourceFlowRun + "*"},
			Expect:    []string{"flowops.flow-run.Failed"},
			Posture:   model.PostureReactive,
			Threshold: 2,
			Within:    time.Minute,
		},
		Actions: []model.Action{{Type: model.ActionDeclareIncident}, {Type: model.ActionPauseDeployment}},
	}
	require.NoError(t, repos.Automation.Create(ctx, auto))

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	out, err := u.Emit(ctx, &EmitInput{Event: failedRun("a", at)})
	require.NoError(t, err)
	assert.Empty(t, out.Fired)
	assert.NotEmpty(t, out.Event.ID)
	assert.False(t, out.Event.Received.IsZero())

	acts.err = errors.New("boom")
	out, err = u.Emit(ctx, &EmitInput{Event: failedRun("b", at.Add(10*time.Second))})
	require.NoError(t, err, "action failures never fail ingestion")
	require.Len(t, out.Fired, 1)
	assert.Equal(t, 2, out.Fired[0].Count)
	assert.Len(t, out.ActionErrors, 2)
	require.Len(t, acts.calls, 2)
	assert.Equal(t, 1, acts.calls[0].depth)

	other := failedRun("c", at)
	other.WorkspaceID = "other"
	out, err = u.Emit(ctx, &EmitInput{Event: other})
	require.NoError(t, err)
	assert.Empty(t, out.Fired)
}

func TestEmitChainDepthIsBounded(t *testing.T) {
	ctx := context.Background()
	u, repos, acts := newUseCase(t)
	auto := &model.Automation{
		WorkspaceID: "ws",
		Name:        "echo",
		Enabled:     true,
		Trigger:     model.EventTrigger{Expect: []string{"ping"}, Posture: model.PostureReactive, Threshold: 1},
		Actions:     []model.Action{{Type: model.ActionResumeDeployment}},
	}
	require.NoError(t, repos.Automation.Create(ctx, auto))
	acts.onPerform = func(ctx context.Context, ev *model.Event) error {
		next := *ev
		next.ID = ""
		return u.Sink().Emit(ctx, &next)
	}

	_, err := u.Emit(ctx, &EmitInput{Event: &model.Event{WorkspaceID: "ws", Event: "ping", Resource: model.Resource{model.LabelResourceID: "x"}}})
	require.NoError(t, err)
	assert.Len(t, acts.calls, MaxDepth)
	events, err := repos.Event.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, MaxDepth+1)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	u, _, _ := newUseCase(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		_, err := u.Emit(ctx, &EmitInput{Event: failedRun(id, base.Add(time.Duration(i)*time.Minute))})
		require.NoError(t, err)
	}
	_, err := u.Emit(ctx, &EmitInput{Event: &model.Event{WorkspaceID: "ws", Event: "other", Resource: model.Resource{model.LabelResourceID: "x"}, Occurred: base}})
	require.NoError(t, err)

	out, err := u.List(ctx, &ListInput{WorkspaceID: "ws", Prefix: "flowops.flow-run.", Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Events, 2)
	assert.Equal(t, model.ResourceFlowRun+"c", out.Events[0].Resource.ID())
	assert.Equal(t, model.ResourceFlowRun+"b", out.Events[1].Resource.ID())

	out, err = u.List(ctx, &ListInput{WorkspaceID: "ws", ResourceID: model.ResourceFlowRun + "a"})
	require.NoError(t, err)
	require.Len(t, out.Events, 1)

	got, err := u.Get(ctx, &GetInput{WorkspaceID: "ws", ID: out.Events[0].ID})
	require.NoError(t, err)
	assert.Equal(t, out.Events[0].ID, got.Event.ID)
	_, err = u.Get(ctx, &GetInput{WorkspaceID: "other", ID: out.Events[0].ID})
	assert.ErrorIs(t, err, model.ErrEventNotFound)
}

func TestTickFiresProactiveAutomation(t *testing.T) {
	ctx := context.Background()
	u, repos, acts := newUseCase(t)
	auto := &model.Automation{
		WorkspaceID: "ws",
		Name:        "heartbeat",
		Enabled:     true,
		Trigger: model.EventTrigger{
			Expect:    []string{"heartbeat"},
			Posture:   model.PostureProactive,
			Threshold: 2,
			Within:    time.Minute,
		},
		Actions: []model.Action{{Type: model.ActionDeclareIncident}},
	}
	require.NoError(t, repos.Automation.Create(ctx, auto))
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, err := u.Emit(ctx, &EmitInput{Event: &model.Event{WorkspaceID: "ws", Event: "heartbeat", Occurred: at, Resource: model.Resource{model.LabelResourceID: "svc"}}})
	require.NoError(t, err)

	early := at.Add(30 * time.Second)
	out, err := u.Tick(ctx, &TickInput{Now: &early})
	require.NoError(t, err)
	assert.Empty(t, out.Fired)

	late := at.Add(2 * time.Minute)
	out, err = u.Tick(ctx, &TickInput{Now: &late})
	require.NoError(t, err)
	require.Len(t, out.Fired, 1)
	assert.Equal(t, 1, out.Fired[0].Count)
	assert.Len(t, acts.calls, 1)
}

func TestEmitCatchesUpWithStoredEvents(t *testing.T) {
	ctx := context.Background()
	first, repos, firstActs := newUseCase(t)
	secondActs := &fakeActions{}
	second := &UseCase{
		Repos:     &Repos{Event: repos.Event, Automation: repos.Automation},
		Evaluator: trigger.NewEvaluator(),
		Actions:   secondActs,
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first.Now = func() time.Time { return now }
	second.Now = first.Now
	auto := &model.Automation{
		WorkspaceID: "ws",
		Name:        "two-failures",
		Enabled:     true,
		Trigger: model.EventTrigger{
			Expect:    []string{"flowops.flow-run.Failed"},
			Posture:   model.PostureReactive,
			Threshold: 2,
			Within:    time.Minute,
		},
		Actions: []model.Action{{Type: model.ActionDeclareIncident}},
	}
	require.NoError(t, repos.Automation.Create(ctx, auto))

	out, err := first.Emit(ctx, &EmitInput{Event: failedRun("a", now)})
	require.NoError(t, err)
	assert.Empty(t, out.Fired)
	out, err = second.Emit(ctx, &EmitInput{Event: failedRun("b", now)})
	require.NoError(t, err)
	require.Len(t, out.Fired, 1)
	assert.Equal(t, 2, out.Fired[0].Count)
	assert.Len(t, secondActs.calls, 1)

	out, err = first.Emit(ctx, &EmitInput{Event: failedRun("c", now)})
	require.NoError(t, err)
	assert.Empty(t, out.Fired, "replayed firings are not dispatched again")
	assert.Empty(t, firstActs.calls)

	// Events older than the replay window are not replayed.
	now = now.Add(2 * DefaultReplayWindow)
	third := &UseCase{Repos: second.Repos, Evaluator: trigger.NewEvaluator(), Now: first.Now}
	out, err = third.Emit(ctx, &EmitInput{Event: failedRun("d", now)})
	require.NoError(t, err)
	assert.Empty(t, out.Fired)
}
