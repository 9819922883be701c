package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kompox/flowops/adapters/store/inmem"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/usecase/flowrun"
)

func TestScheduleRuns(t *testing.T) {
	ctx := context.Background()
	repos := inmem.NewStore().Repositories()
	f := &model.Flow{WorkspaceID: "ws", Name: "etl"}
	require.NoError(t, repos.Flow.Create(ctx, f))
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hourly := &model.Deployment{WorkspaceID: "ws", FlowID: f.ID, Name: "hourly", Schedule: &model.Schedule{Interval: time.Hour, AnchorDate: &anchor}}
	paused := &model.Deployment{WorkspaceID: "ws", FlowID: f.ID, Name: "paused", Paused: true, Schedule: &model.Schedule{Interval: time.Hour}}
	manual := &model.Deployment{WorkspaceID: "ws", FlowID: f.ID, Name: "manual"}
	for _, d := range []*model.Deployment{hourly, paused, manual} {
		require.NoError(t, repos.Deployment.Create(ctx, d))
	}

	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	u := &UseCase{
		Repos:    &Repos{Deployment: repos.Deployment},
		FlowRuns: &flowrun.UseCase{Repos: &flowrun.Repos{FlowRun: repos.FlowRun, Flow: repos.Flow, Deployment: repos.Deployment}},
		Now:      func() time.Time { return now },
	}

	out, err := u.ScheduleRuns(ctx, &ScheduleRunsInput{Horizon: 3 * time.Hour, Max: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Deployments)
	require.Len(t, out.Created, 3)
	assert.Equal(t, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC), out.Created[0].ExpectedStartTime)
	assert.Equal(t, IdempotencyKey(hourly.ID, out.Created[0].ExpectedStartTime), out.Created[0].IdempotencyKey)
	assert.Contains(t, out.Created[0].Tags, AutoScheduledTag)

	again, err := u.ScheduleRuns(ctx, &ScheduleRunsInput{Horizon: 3 * time.Hour, Max: 10})
	require.NoError(t, err)
	assert.Empty(t, again.Created)

	capped, err := u.ScheduleRuns(ctx, &ScheduleRunsInput{Horizon: 24 * time.Hour, Max: 5})
	require.NoError(t, err)
	assert.Len(t, capped.Created, 2)

	runs, err := repos.FlowRun.List(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestScheduleRunsRRuleAcrossPasses(t *testing.T) {
	ctx := context.Background()
	repos := inmem.NewStore().Repositories()
	f := &model.Flow{WorkspaceID: "ws", Name: "etl"}
	require.NoError(t, repos.Flow.Create(ctx, f))

	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	pinned := &model.Schedule{RRule: "RRULE:FREQ=DAILY;COUNT=2"}
	require.NoError(t, pinned.PinStart(now))
	bare := &model.Schedule{RRule: "FREQ=HOURLY"}
	for name, s := range map[string]*model.Schedule{"daily": pinned, "hourly": bare} {
		require.NoError(t, repos.Deployment.Create(ctx, &model.Deployment{WorkspaceID: "ws", FlowID: f.ID, Name: name, Schedule: s}))
	}

	u := &UseCase{
		Repos:    &Repos{Deployment: repos.Deployment},
		FlowRuns: &flowrun.UseCase{Repos: &flowrun.Repos{FlowRun: repos.FlowRun, Flow: repos.Flow, Deployment: repos.Deployment}},
		Now:      func() time.Time { return now },
	}
	total := 0
	for i := 0; i < 5; i++ {
		at := now.Add(time.Duration(i) * time.Minute)
		out, err := u.ScheduleRuns(ctx, &ScheduleRunsInput{Now: &at, Horizon: 25 * time.Hour, Max: 3})
		require.NoError(t, err)
		total += len(out.Created)
	}

	runs, err := repos.FlowRun.List(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, total)
	// The daily rule has one occurrence left after 10:30. The hourly rule is capped at three.
	assert.Equal(t, 4, total)
}
