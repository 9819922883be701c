package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/logging"
	"github.com/kompox/flowops/usecase/flowrun"
)

// ScheduleRunsInput bounds one scheduling pass.
type ScheduleRunsInput struct {
	// WorkspaceID limits the pass to one workspace; empty schedules all.
	WorkspaceID string `json:"workspace_id,omitempty"`
	// Now defaults to the current time.
	Now *time.Time `json:"now,omitempty"`
	// Horizon defaults to DefaultHorizon.
	Horizon time.Duration `json:"horizon,omitempty"`
	// Max is the number of runs per deployment, defaults to DefaultMaxRuns.
	Max int `json:"max,omitempty"`
}

// ScheduleRunsOutput reports the runs created by the pass.
type ScheduleRunsOutput struct {
	Created     []*model.FlowRun `json:"created"`
	Deployments int              `json:"deployments"`
}

// IdempotencyKey is the key of the run of deploymentID expected at t.
func IdempotencyKey(deploymentID string, t time.Time) string {
	return fmt.Sprintf("scheduled-%s-%d", deploymentID, t.Unix())
}

// ScheduleRuns creates SCHEDULED runs for every occurrence in (now, now+horizon]
// of active scheduled deployments. Existing occurrences are not duplicated.
func (u *UseCase) ScheduleRuns(ctx context.Context, in *ScheduleRunsInput) (*ScheduleRunsOutput, error) {
	if in == nil {
		in = &ScheduleRunsInput{}
	}
	if u.FlowRuns == nil {
		return nil, fmt.Errorf("flow run use case is not configured")
	}
	now := u.now()
	if in.Now != nil {
		now = in.Now.UTC()
	}
	horizon := in.Horizon
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	max := in.Max
	if max <= 0 {
		max = DefaultMaxRuns
	}
	end := now.Add(horizon)
	logger := logging.FromContext(ctx)

	items, err := u.Repos.Deployment.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &ScheduleRunsOutput{Created: []*model.FlowRun{}}
	for _, d := range items {
		if in.WorkspaceID != "" && d.WorkspaceID != in.WorkspaceID {
			continue
		}
		if !d.IsScheduled() {
			continue
		}
		out.Deployments++
		times, err := d.Schedule.Next(now, max)
		if err != nil {
			logger.Warn(ctx, "skipping deployment with invalid schedule", "deployment", d.ID, "err", err)
			continue
		}
		for _, t := range times {
			if t.After(end) {
				break
			}
			start := t
			res, err := u.FlowRuns.Create(ctx, &flowrun.CreateInput{
				WorkspaceID:       d.WorkspaceID,
				DeploymentID:      d.ID,
				ExpectedStartTime: &start,
				Tags:              []string{AutoScheduledTag},
				IdempotencyKey:    IdempotencyKey(d.ID, t),
			})
			if err != nil {
				return out, fmt.Errorf("schedule deployment %s: %w", d.ID, err)
			}
			if res.Created {
				out.Created = append(out.Created, res.FlowRun)
			}
		}
	}
	if len(out.Created) > 0 {
		logger.Info(ctx, "scheduled flow runs", "count", len(out.Created), "deployments", out.Deployments)
	}
	return out, nil
}

// Run schedules runs every interval until ctx is done. Pass errors are logged.
func (u *UseCase) Run(ctx context.Context, interval time.Duration, in *ScheduleRunsInput) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := logging.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := u.ScheduleRuns(ctx, in); err != nil {
			logger.Error(ctx, "scheduling pass failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
