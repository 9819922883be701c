package worker

import (
	"sort"
	"time"

	"github.com/kompox/flowops/domain/model"
)

// selectRuns returns due SCHEDULED runs of pool ordered by queue priority
// then expected start, within the pool and queue concurrency limits. Runs
// of paused or unknown queues are left alone.
func selectRuns(pool *model.WorkPool, runs []*model.FlowRun, workspaceID string, now time.Time) []*model.FlowRun {
	active := 0
	activeByQueue := map[string]int{}
	var due []*model.FlowRun
	for _, r := range runs {
		if r.WorkspaceID != workspaceID || r.WorkPoolName != pool.Name {
			continue
		}
		switch r.State {
		case model.StatePending, model.StateRunning:
			active++
			activeByQueue[queueName(r)]++
		case model.StateScheduled:
			if !r.ExpectedStartTime.After(now) {
				due = append(due, r)
			}
		}
	}

	priority := func(r *model.FlowRun) int {
		if q := pool.Queue(queueName(r)); q != nil {
			return q.Priority
		}
		return 0
	}
	sort.SliceStable(due, func(i, j int) bool {
		pi, pj := priority(due[i]), priority(due[j])
		if pi != pj {
			return pi < pj
		}
		return due[i].ExpectedStartTime.Before(due[j].ExpectedStartTime)
	})

	var out []*model.FlowRun
	for _, r := range due {
		if pool.ConcurrencyLimit > 0 && active >= pool.ConcurrencyLimit {
			break
		}
		name := queueName(r)
		q := pool.Queue(name)
		if q == nil || q.Paused {
			continue
		}
		if q.ConcurrencyLimit > 0 && activeByQueue[name] >= q.ConcurrencyLimit {
			continue
		}
		out = append(out, r)
		active++
		activeByQueue[name]++
	}
	return out
}

func queueName(r *model.FlowRun) string {
	if r.WorkQueueName == "" {
		return model.DefaultWorkQueueName
	}
	return r.WorkQueueName
}
