package worker

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
	"github.com/kompox/flowops/internal/metrics"
	"github.com/kompox/flowops/usecase/flowrun"
	"github.com/kompox/flowops/usecase/workpool"
)

type fakeInfra struct {
	mu        sync.Mutex
	submitted []string
	codes     map[string]int
	fail      map[string]bool
}

func (f *fakeInfra) Submit(_ context.Context, _ *model.WorkPool, run *model.FlowRun, opts ...model.InfrastructureSubmitOption) (*model.InfrastructureResult, error) {
	var o model.InfrastructureSubmitOptions
	for _, opt := range opts {
		opt(&o)
	}
	f.mu.Lock()
	f.submitted = append(f.submitted, run.Name)
	code, fail := f.codes[run.Name], f.fail[run.Name]
	f.mu.Unlock()
	if fail {
		return nil, errors.New("cluster unreachable")
	}
	if o.Started != nil {
		o.Started("job-" + run.Name)
	}
	return &model.InfrastructureResult{Identifier: "job-" + run.Name, StatusCode: code}, nil
}

type fixture struct {
	w     *Worker
	repos *domain.Repositories
	runs  *flowrun.UseCase
	pools *workpool.UseCase
	infra *fakeInfra
	now   time.Time
	flow  *model.Flow
}

func newFixture(t *testing.T, limit int) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := inmem.NewStore().Repositories()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := &model.Flow{WorkspaceID: "ws", Name: "etl"}
	require.NoError(t, repos.Flow.Create(ctx, f))
	pools := &workpool.UseCase{Repos: &workpool.Repos{WorkPool: repos.WorkPool}}
	_, err := pools.Create(ctx, &workpool.CreateInput{WorkspaceID: "ws", Name: "local", Type: model.WorkPoolTypeProcess, ConcurrencyLimit: limit})
	require.NoError(t, err)
	runs := &flowrun.UseCase{
		Repos: &flowrun.Repos{FlowRun: repos.FlowRun, Flow: repos.Flow, Deployment: repos.Deployment},
		Now:   func() time.Time { return now },
	}
	infra := &fakeInfra{codes: map[string]int{}, fail: map[string]bool{}}
	w := &Worker{
		Repos:          &Repos{WorkPool: repos.WorkPool, FlowRun: repos.FlowRun},
		FlowRuns:       runs,
		Infrastructure: infra,
		Metrics:        metrics.New(),
		WorkspaceID:    "ws",
		Pool:           "local",
		Now:            func() time.Time { return now },
	}
	return &fixture{w: w, repos: repos, runs: runs, pools: pools, infra: infra, now: now, flow: f}
}

func (fx *fixture) schedule(t *testing.T, name, queue string, at time.Time) *model.FlowRun {
	t.Helper()
	out, err := fx.runs.Create(context.Background(), &flowrun.CreateInput{
		WorkspaceID:       "ws",
		FlowID:            fx.flow.ID,
		Name:              name,
		WorkPoolName:      "local",
		WorkQueueName:     queue,
		ExpectedStartTime: &at,
	})
	require.NoError(t, err)
	return out.FlowRun
}

func (fx *fixture) state(t *testing.T, id string) *model.FlowRun {
	t.Helper()
	r, err := fx.repos.FlowRun.Get(context.Background(), id)
	require.NoError(t, err)
	return r
}

func TestPollSubmitsAndRecordsFinalStates(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 0)
	ok := fx.schedule(t, "ok", "", fx.now.Add(-time.Minute))
	bad := fx.schedule(t, "bad", "", fx.now.Add(-time.Minute))
	crash := fx.schedule(t, "crash", "", fx.now.Add(-time.Minute))
	later := fx.schedule(t, "later", "", fx.now.Add(time.Hour))
	fx.infra.codes["bad"] = 2
	fx.infra.fail["crash"] = true

	out, err := fx.w.Poll(ctx)
	require.NoError(t, err)
	assert.Len(t, out.Submitted, 3)
	require.NoError(t, fx.w.Wait())

	r := fx.state(t, ok.ID)
	assert.Equal(t, model.StateCompleted, r.State)
	assert.Equal(t, "job-ok", r.InfrastructureID)
	assert.Equal(t, 1, r.RunCount)
	assert.Equal(t, model.StateFailed, fx.state(t, bad.ID).State)
	assert.Contains(t, fx.state(t, bad.ID).StateMessage, "status code 2")
	assert.Equal(t, model.StateCrashed, fx.state(t, crash.ID).State)
	assert.Equal(t, model.StateScheduled, fx.state(t, later.ID).State)
}

func TestPollHonorsLimitsAndPriorities(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 2)
	high, low := 1, 5
	_, err := fx.pools.QueueSet(ctx, &workpool.QueueSetInput{WorkspaceID: "ws", Ref: "local", Name: "urgent", Priority: &high})
	require.NoError(t, err)
	_, err = fx.pools.QueueSet(ctx, &workpool.QueueSetInput{WorkspaceID: "ws", Ref: "local", Name: "default", Priority: &low})
	require.NoError(t, err)
	_, err = fx.pools.QueueSet(ctx, &workpool.QueueSetInput{WorkspaceID: "ws", Ref: "local", Name: "held"})
	require.NoError(t, err)
	_, err = fx.pools.Pause(ctx, &workpool.PauseInput{WorkspaceID: "ws", Ref: "local", Queue: "held"})
	require.NoError(t, err)

	past := fx.now.Add(-time.Hour)
	fx.schedule(t, "d1", "default", past)
	fx.schedule(t, "d2", "default", past.Add(time.Minute))
	fx.schedule(t, "u1", "urgent", past.Add(2*time.Minute))
	fx.schedule(t, "h1", "held", past)

	out, err := fx.w.Poll(ctx)
	require.NoError(t, err)
	require.NoError(t, fx.w.Wait())
	require.Len(t, out.Submitted, 2)
	assert.ElementsMatch(t, []string{"u1", "d1"}, fx.infra.submitted)

	_, err = fx.pools.Pause(ctx, &workpool.PauseInput{WorkspaceID: "ws", Ref: "local"})
	require.NoError(t, err)
	out, err = fx.w.Poll(ctx)
	require.NoError(t, err)
	assert.Empty(t, out.Submitted)
	assert.Equal(t, "work pool is paused", out.Skipped)
}

func TestSelectRunsCountsActiveRuns(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pool := &model.WorkPool{
		Name:             "p",
		ConcurrencyLimit: 2,
		Queues:           []model.WorkQueue{{Name: "default", Priority: 1, ConcurrencyLimit: 1}},
	}
	runs := []*model.FlowRun{
		{ID: "a", WorkspaceID: "ws", WorkPoolName: "p", State: model.StateRunning},
		{ID: "b", WorkspaceID: "ws", WorkPoolName: "p", State: model.StateScheduled, ExpectedStartTime: now},
		{ID: "c", WorkspaceID: "other", WorkPoolName: "p", State: model.StateScheduled, ExpectedStartTime: now},
	}
	assert.Empty(t, selectRuns(pool, runs, "ws", now), "queue limit reached")

	pool.Queues[0].ConcurrencyLimit = 0
	got := selectRuns(pool, runs, "ws", now)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}
