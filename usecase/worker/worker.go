// Package worker picks up scheduled flow runs of a work pool and submits
// them to the pool's infrastructure.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/logging"
	"github.com/kompox/flowops/internal/metrics"
	"github.com/kompox/flowops/usecase/flowrun"
	"github.com/kompox/flowops/usecase/workpool"
)

// Defaults of a worker.
const (
	DefaultPollInterval = 10 * time.Second
	DefaultLimit        = 10
)

// Repos holds repositories needed by a worker.
type Repos struct {
	WorkPool domain.WorkPoolRepository
	FlowRun  domain.FlowRunRepository
}

// Worker serves one work pool of a workspace.
type Worker struct {
	Repos          *Repos
	FlowRuns       *flowrun.UseCase
	Infrastructure model.InfrastructurePort
	Metrics        *metrics.Metrics
	WorkspaceID    string
	// Pool is the work pool name or ID.
	Pool string
	// Limit bounds concurrent submissions of this worker, DefaultLimit when 0.
	Limit int
	Now   func() time.Time

	once  sync.Once
	sem   *semaphore.Weighted
	group errgroup.Group
}

func (w *Worker) init() {
	w.once.Do(func() {
		limit := w.Limit
		if limit <= 0 {
			limit = DefaultLimit
		}
		w.sem = semaphore.NewWeighted(int64(limit))
	})
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now().UTC()
	}
	return time.Now().UTC()
}

// PollOutput reports one poll.
type PollOutput struct {
	// Submitted lists the runs moved to PENDING and handed to infrastructure.
	Submitted []string `json:"submitted"`
	// Skipped explains why nothing was picked up, when known.
	Skipped string `json:"skipped,omitempty"`
}

// Poll picks due SCHEDULED runs of the pool and submits them in the
// background. Use Wait to wait for their completion.
func (w *Worker) Poll(ctx context.Context) (*PollOutput, error) {
	w.init()
	if w.Infrastructure == nil || w.FlowRuns == nil {
		return nil, fmt.Errorf("worker is not configured with infrastructure and flow runs")
	}
	pools := &workpool.UseCase{Repos: &workpool.Repos{WorkPool: w.Repos.WorkPool}}
	pool, err := pools.Resolve(ctx, w.WorkspaceID, w.Pool)
	if err != nil {
		return nil, err
	}
	out := &PollOutput{Submitted: []string{}}
	if pool.Paused {
		out.Skipped = "work pool is paused"
		return out, nil
	}
	runs, err := w.Repos.FlowRun.List(ctx)
	if err != nil {
		return nil, err
	}
	picked := selectRuns(pool, runs, w.WorkspaceID, w.now())
	logger := logging.FromContext(ctx)
	for _, r := range picked {
		res, err := w.FlowRuns.SetState(ctx, &flowrun.SetStateInput{
			WorkspaceID: w.WorkspaceID,
			FlowRunID:   r.ID,
			State:       model.StatePending,
		})
		if err != nil {
			logger.Warn(ctx, "flow run not picked up", "flowRun", r.ID, "err", err)
			continue
		}
		run := res.FlowRun
		out.Submitted = append(out.Submitted, run.ID)
		p := *pool
		w.group.Go(func() error {
			if err := w.sem.Acquire(ctx, 1); err != nil {
				w.finish(ctx, run.ID, model.StateCrashed, "Worker stopped before submission: "+err.Error())
				return nil
			}
			defer w.sem.Release(1)
			w.submit(ctx, &p, run)
			return nil
		})
	}
	if len(picked) == 0 {
		out.Skipped = "no flow runs due"
	}
	return out, nil
}

// Wait blocks until every submission started by Poll has finished.
func (w *Worker) Wait() error {
	return w.group.Wait()
}

// Run polls every interval until ctx is done, then waits for submissions.
func (w *Worker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := logging.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		out, err := w.Poll(ctx)
		switch {
		case err != nil:
			logger.Error(ctx, "poll failed", "pool", w.Pool, "err", err)
		case len(out.Submitted) > 0:
			logger.Info(ctx, "submitted flow runs", "pool", w.Pool, "count", len(out.Submitted))
		}
		select {
		case <-ctx.Done():
			return w.Wait()
		case <-ticker.C:
		}
	}
}

// submit hands run to infrastructure and records the final state.
func (w *Worker) submit(ctx context.Context, pool *model.WorkPool, run *model.FlowRun) {
	defer w.Metrics.WorkerTrack(pool.Name)()
	ctx, end := logging.Span(ctx, "WORKER", "submit", run.ID, "pool", pool.Name)

	var mu sync.Mutex
	started := false
	markRunning := func(identifier string) {
		mu.Lock()
		defer mu.Unlock()
		if started {
			return
		}
		started = true
		if _, err := w.FlowRuns.SetState(ctx, &flowrun.SetStateInput{
			WorkspaceID:      w.WorkspaceID,
			FlowRunID:        run.ID,
			State:            model.StateRunning,
			InfrastructureID: identifier,
		}); err != nil {
			logging.FromContext(ctx).Warn(ctx, "flow run not marked running", "flowRun", run.ID, "err", err)
		}
	}

	res, err := w.Infrastructure.Submit(ctx, pool, run, model.WithStartedCallback(markRunning))
	w.Metrics.WorkerSubmitted(pool.Name, err)
	end(err)
	if err != nil {
		w.finish(ctx, run.ID, model.StateCrashed, "Flow run could not be submitted to infrastructure: "+err.Error())
		return
	}
	markRunning(res.Identifier)
	if res.StatusCode == 0 {
		w.finish(ctx, run.ID, model.StateCompleted, "")
		return
	}
	w.finish(ctx, run.ID, model.StateFailed, fmt.Sprintf("Flow run infrastructure exited with non-zero status code %d.", res.StatusCode))
}

func (w *Worker) finish(ctx context.Context, runID string, state model.StateType, msg string) {
	if _, err := w.FlowRuns.SetState(ctx, &flowrun.SetStateInput{
		WorkspaceID: w.WorkspaceID,
		FlowRunID:   runID,
		State:       state,
		Message:     msg,
	}); err != nil {
		logging.FromContext(ctx).Warn(ctx, "final flow run state not recorded", "flowRun", runID, "state", state, "err", err)
	}
}
