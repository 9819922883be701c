package deployment

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kompox/flowops/adapters/store/inmem"
	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/shell"
	"github.com/kompox/flowops/usecase/flowrun"
)

type fakeRunner struct {
	mu       sync.Mutex
	commands []string
	result   *shell.Result
}

func (r *fakeRunner) Run(_ context.Context, c *shell.Command) (*shell.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, c.String())
	if r.result != nil {
		return r.result, nil
	}
	return &shell.Result{Stdout: "ok\n"}, nil
}

type mapLocator map[string]string

func (m mapLocator) LookupFlow(name string) (string, error) {
	if ep, ok := m[name]; ok {
		return ep, nil
	}
	return "", model.ErrFlowNotFound
}

func newUseCase(t *testing.T) (*UseCase, *domain.Repositories, *fakeRunner) {
	t.Helper()
	repos := inmem.NewStore().Repositories()
	runner := &fakeRunner{}
	u := &UseCase{
		Repos: &Repos{Deployment: repos.Deployment, Flow: repos.Flow, WorkPool: repos.WorkPool},
		FlowRuns: &flowrun.UseCase{
			Repos: &flowrun.Repos{FlowRun: repos.FlowRun, Flow: repos.Flow, Deployment: repos.Deployment},
		},
		Steps:   NewSteps(runner),
		Locator: mapLocator{"etl": "flows/etl.py:etl"},
	}
	return u, repos, runner
}

func createFlow(t *testing.T, repos *domain.Repositories, ws, name string) *model.Flow {
	t.Helper()
	f := &model.Flow{WorkspaceID: ws, Name: name}
	require.NoError(t, repos.Flow.Create(context.Background(), f))
	return f
}

func TestCreateGetListDelete(t *testing.T) {
	ctx := context.Background()
	u, repos, _ := newUseCase(t)
	f := createFlow(t, repos, "ws", "etl")

	out, err := u.Create(ctx, &CreateInput{WorkspaceID: "ws", FlowID: f.ID, Name: "nightly", Tags: []string{"a", "a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Deployment.Tags)

	_, err = u.Create(ctx, &CreateInput{WorkspaceID: "ws", FlowID: f.ID, Name: "nightly"})
	assert.ErrorIs(t, err, model.ErrDeploymentConflict)
	_, err = u.Create(ctx, &CreateInput{WorkspaceID: "ws", FlowID: f.ID, Name: "a/b"})
	assert.ErrorIs(t, err, model.ErrDeploymentInvalid)
	_, err = u.Create(ctx, &CreateInput{WorkspaceID: "ws", FlowID: "missing", Name: "x"})
	assert.ErrorIs(t, err, model.ErrFlowNotFound)

	got, err := u.Get(ctx, &GetInput{WorkspaceID: "ws", Ref: "etl/nightly"})
	require.NoError(t, err)
	assert.Equal(t, out.Deployment.ID, got.Deployment.ID)

	list, err := u.List(ctx, &ListInput{WorkspaceID: "ws", Tag: "b"})
	require.NoError(t, err)
	assert.Len(t, list.Deployments, 1)
	list, err = u.List(ctx, &ListInput{WorkspaceID: "ws", ScheduledOnly: true})
	require.NoError(t, err)
	assert.Empty(t, list.Deployments)

	_, err = u.Delete(ctx, &DeleteInput{WorkspaceID: "ws", Ref: out.Deployment.ID})
	require.NoError(t, err)
	_, err = u.Get(ctx, &GetInput{WorkspaceID: "ws", Ref: "nightly"})
	assert.ErrorIs(t, err, model.ErrDeploymentNotFound)
}

func TestResolveAmbiguous(t *testing.T) {
	ctx := context.Background()
	u, repos, _ := newUseCase(t)
	a := createFlow(t, repos, "ws", "a")
	b := createFlow(t, repos, "ws", "b")
	for _, f := range []*model.Flow{a, b} {
		_, err := u.Create(ctx, &CreateInput{WorkspaceID: "ws", FlowID: f.ID, Name: "daily"})
		require.NoError(t, err)
	}
	_, err := u.Resolve(ctx, "ws", "daily")
	assert.ErrorIs(t, err, model.ErrDeploymentInvalid)
	d, err := u.Resolve(ctx, "ws", "b/daily")
	require.NoError(t, err)
	assert.Equal(t, b.ID, d.FlowID)
	_, err = u.Resolve(ctx, "other", "b/daily")
	assert.ErrorIs(t, err, model.ErrDeploymentNotFound)
}

func TestUpdatePauseAndSchedule(t *testing.T) {
	ctx := context.Background()
	u, repos, _ := newUseCase(t)
	f := createFlow(t, repos, "ws", "etl")
	_, err := u.Create(ctx, &CreateInput{WorkspaceID: "ws", FlowID: f.ID, Name: "hourly"})
	require.NoError(t, err)

	_, err = u.Update(ctx, &UpdateInput{WorkspaceID: "ws", Ref: "hourly", Schedule: &model.Schedule{Cron: "not a cron"}})
	assert.ErrorIs(t, err, model.ErrScheduleInvalid)

	desc := "every hour"
	up, err := u.Update(ctx, &UpdateInput{WorkspaceID: "ws", Ref: "hourly", Description: &desc, Schedule: &model.Schedule{Interval: time.Hour}})
	require.NoError(t, err)
	assert.Equal(t, "every hour", up.Deployment.Description)
	assert.True(t, up.Deployment.IsScheduled())

	p, err := u.Pause(ctx, &PauseInput{WorkspaceID: "ws", Ref: "hourly"})
	require.NoError(t, err)
	assert.True(t, p.Deployment.Paused)
	assert.False(t, p.Deployment.IsScheduled())
	p, err = u.Resume(ctx, &PauseInput{WorkspaceID: "ws", Ref: "hourly"})
	require.NoError(t, err)
	assert.False(t, p.Deployment.Paused)

	up, err = u.Update(ctx, &UpdateInput{WorkspaceID: "ws", Ref: "hourly", ClearSchedule: true})
	require.NoError(t, err)
	assert.Nil(t, up.Deployment.Schedule)
}

func TestCreatePinsRRuleStart(t *testing.T) {
	ctx := context.Background()
	u, repos, _ := newUseCase(t)
	f := createFlow(t, repos, "ws", "etl")
	out, err := u.Create(ctx, &CreateInput{WorkspaceID: "ws", FlowID: f.ID, Name: "daily", Schedule: &model.Schedule{RRule: "FREQ=DAILY;COUNT=2"}})
	require.NoError(t, err)
	assert.True(t, out.Deployment.Schedule.HasStart())
	assert.True(t, strings.HasPrefix(out.Deployment.Schedule.RRule, "DTSTART:"))
	assert.True(t, strings.HasSuffix(out.Deployment.Schedule.RRule, "\nRRULE:FREQ=DAILY;COUNT=2"))

	pinned := out.Deployment.Schedule.RRule
	desc := "twice"
	up, err := u.Update(ctx, &UpdateInput{WorkspaceID: "ws", Ref: "daily", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, pinned, up.Deployment.Schedule.RRule)
}

func TestRunCreatesScheduledFlowRun(t *testing.T) {
	ctx := context.Background()
	u, repos, _ := newUseCase(t)
	f := createFlow(t, repos, "ws", "etl")
	_, err := u.Create(ctx, &CreateInput{WorkspaceID: "ws", FlowID: f.ID, Name: "manual", Parameters: map[string]any{"n": 1}})
	require.NoError(t, err)

	out, err := u.Run(ctx, &RunInput{WorkspaceID: "ws", Ref: "etl/manual", Parameters: map[string]any{"m": 2}})
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, model.StateScheduled, out.FlowRun.State)
	assert.Equal(t, map[string]any{"n": 1, "m": 2}, out.FlowRun.Parameters)
}

func TestStepsRun(t *testing.T) {
	ctx := context.Background()
	runner := &fakeRunner{}
	s := NewSteps(runner)

	out, err := s.Run(ctx, map[string]any{"run_shell_script": map[string]any{"script": "echo ok"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", out["stdout"])

	out, err = s.Run(ctx, map[string]any{StepPrefix + "git_clone": map[string]any{
		"repository": "https://example.com/org/repo.git",
		"branch":     "main",
	}})
	require.NoError(t, err)
	assert.Equal(t, "repo", out["directory"])
	assert.Contains(t, runner.commands[1], "clone https://example.com/org/repo.git -b main --depth 1")

	_, err = s.Run(ctx, map[string]any{"nope": nil})
	assert.Error(t, err)
	_, err = s.Run(ctx, map[string]any{"a": nil, "b": nil})
	assert.Error(t, err)

	runner.result = &shell.Result{ExitCode: 2, Stderr: "boom"}
	_, err = s.Run(ctx, map[string]any{"run_shell_script": map[string]any{"script": "false"}})
	assert.Error(t, err)
}

func TestMergeDefaults(t *testing.T) {
	base := map[string]any{
		"name":      "d",
		"tags":      nil,
		"work_pool": map[string]any{"name": "k8s"},
	}
	got := MergeDefaults(base)
	assert.Equal(t, "d", got["name"])
	assert.Equal(t, []any{}, got["tags"])
	assert.Equal(t, map[string]any{"name": "k8s", "work_queue_name": nil, "job_variables": map[string]any{}}, got["work_pool"])
	assert.Equal(t, map[string]any{"name": "k8s"}, base["work_pool"], "input is not modified")
}

func TestDeploySingle(t *testing.T) {
	ctx := context.Background()
	u, repos, runner := newUseCase(t)
	require.NoError(t, repos.WorkPool.Create(ctx, &model.WorkPool{WorkspaceID: "ws", Name: "k8s", Type: model.WorkPoolTypeKubernetes}))

	def := map[string]any{
		"name":       "nightly",
		"entrypoint": "flows/etl.py:etl",
		"build": []any{
			map[string]any{"run_shell_script": map[string]any{"id": "b", "script": "make image"}},
		},
		"work_pool": map[string]any{
			"name":          "k8s",
			"job_variables": map[string]any{"image": "{{ stdout }}"},
		},
		"schedule": map[string]any{"cron": "0 3 * * *", "timezone": "UTC"},
	}
	out, err := u.Deploy(ctx, &DeployInput{
		WorkspaceID: "ws",
		Definition:  def,
		Options:     DeployOptions{Param: []string{"n=3", "s=hello"}, Variables: []string{"cpu=2"}},
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	res := out.Results[0]
	assert.True(t, res.Created)
	assert.Equal(t, "etl/nightly", res.FullName)
	assert.False(t, res.HintWarning)
	assert.Contains(t, res.WorkerHint, `"k8s" work pool`)

	d := res.Deployment
	assert.Equal(t, map[string]any{"n": float64(3), "s": "hello"}, d.Parameters)
	assert.Equal(t, map[string]any{"image": "ok", "cpu": "2"}, d.JobVariables)
	require.NotNil(t, d.Schedule)
	assert.Equal(t, "cron", d.Schedule.Kind())
	assert.Equal(t, []string{"sh -c make image"}, runner.commands)
	assert.Equal(t, "flows/etl.py:etl", d.Entrypoint)

	again, err := u.Deploy(ctx, &DeployInput{WorkspaceID: "ws", Definition: def})
	require.NoError(t, err)
	assert.False(t, again.Results[0].Created)
	assert.Equal(t, d.ID, again.Results[0].Deployment.ID)
}

func TestDeployValidation(t *testing.T) {
	ctx := context.Background()
	u, repos, _ := newUseCase(t)
	require.NoError(t, repos.WorkPool.Create(ctx, &model.WorkPool{WorkspaceID: "ws", Name: "agents", Type: model.WorkPoolTypeAgent}))
	params := `{"a":1}`

	cases := []struct {
		name string
		def  map[string]any
		opts DeployOptions
		want string
	}{
		{"anchor without interval", map[string]any{"name": "d", "flow_name": "etl"}, DeployOptions{IntervalAnchor: "2024-01-01"}, "anchor date"},
		{"two schedules", map[string]any{"name": "d", "flow_name": "etl"}, DeployOptions{Cron: "* * * * *", Interval: 60}, "only one schedule type"},
		{"no flow", map[string]any{"name": "d"}, DeployOptions{}, "entrypoint or flow name must be provided"},
		{"no name", map[string]any{"flow_name": "etl"}, DeployOptions{}, "deployment name must be provided"},
		{"both flow and entrypoint", map[string]any{"name": "d", "flow_name": "etl"}, DeployOptions{Entrypoint: "f.py:etl"}, "not both"},
		{"param and params", map[string]any{"name": "d", "flow_name": "etl"}, DeployOptions{Param: []string{"a=1"}, Params: &params}, "param or params"},
		{"agent pool", map[string]any{"name": "d", "flow_name": "etl", "work_pool": map[string]any{"name": "agents"}}, DeployOptions{}, "type 'agent'"},
		{"unknown flow", map[string]any{"name": "d", "flow_name": "nope"}, DeployOptions{}, "flow not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := u.Deploy(ctx, &DeployInput{WorkspaceID: "ws", Definition: tc.def, Options: tc.opts})
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(err.Error()), strings.ToLower(tc.want))
		})
	}
}

func TestDeployWarnings(t *testing.T) {
	ctx := context.Background()
	u, _, _ := newUseCase(t)
	out, err := u.Deploy(ctx, &DeployInput{
		WorkspaceID: "ws",
		Definition:  map[string]any{"name": "d", "flow_name": "etl", "work_pool": map[string]any{"name": "missing"}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Messages)
	assert.Equal(t, MessageWarning, out.Messages[0].Level)

	out, err = u.Deploy(ctx, &DeployInput{WorkspaceID: "ws", Definition: map[string]any{"name": "e", "flow_name": "etl"}})
	require.NoError(t, err)
	assert.True(t, out.Results[0].HintWarning)
}

func TestDeployMulti(t *testing.T) {
	ctx := context.Background()
	u, _, _ := newUseCase(t)
	def := map[string]any{
		"deployments": []any{
			map[string]any{"name": "a", "flow_name": "etl"},
			map[string]any{"name": "b", "flow_name": "etl", "schedule": map[string]any{"interval": 3600}},
			map[string]any{"flow_name": "etl"},
		},
	}

	_, err := u.Deploy(ctx, &DeployInput{WorkspaceID: "ws", Definition: def})
	assert.ErrorIs(t, err, model.ErrDeploymentInvalid)

	_, err = u.Deploy(ctx, &DeployInput{WorkspaceID: "ws", Definition: def, Options: DeployOptions{Names: []string{"zzz"}}})
	assert.ErrorIs(t, err, model.ErrDeploymentNotFound)

	one, err := u.Deploy(ctx, &DeployInput{WorkspaceID: "ws", Definition: def, Options: DeployOptions{Names: []string{"b"}, Version: "2"}})
	require.NoError(t, err)
	require.Len(t, one.Results, 1)
	assert.Equal(t, "2", one.Results[0].Deployment.Version)
	assert.Equal(t, time.Hour, one.Results[0].Deployment.Schedule.Interval)

	all, err := u.Deploy(ctx, &DeployInput{WorkspaceID: "ws", Definition: def, Options: DeployOptions{All: true, Version: "3"}})
	require.NoError(t, err)
	require.Len(t, all.Results, 2)
	var levels []string
	for _, m := range all.Messages {
		levels = append(levels, m.Level)
	}
	assert.Contains(t, levels, MessageWarning)
	assert.Contains(t, levels, MessagePanel)
	assert.Empty(t, all.Results[0].Deployment.Version, "options are ignored for several deployments")

	_, err = u.Deploy(ctx, &DeployInput{
		WorkspaceID: "ws",
		Definition:  map[string]any{"name": "x", "flow_name": "etl"},
		Options:     DeployOptions{Names: []string{"x", "y"}},
	})
	assert.ErrorIs(t, err, model.ErrDeploymentInvalid)
}
