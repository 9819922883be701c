package event

import (
	"context"
	"sort"
	"time"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/logging"
)

// DefaultReplayWindow is how far back catch up looks when no automation has
// a longer Within window.
const DefaultReplayWindow = time.Hour

// replayWindow is the longest Within of the automations, at least DefaultReplayWindow.
func replayWindow(autos []*model.Automation) time.Duration {
	w := DefaultReplayWindow
	for _, a := range autos {
		if a != nil && a.Trigger.Within > w {
			w = a.Trigger.Within
		}
	}
	return w
}

// catchUp feeds the evaluator with stored events it has not seen, so trigger
// state follows events ingested by other processes sharing the store. Those
// events were dispatched by the process that ingested them, so firings from
// replay are discarded.
func (u *UseCase) catchUp(ctx context.Context, now time.Time, autos []*model.Automation) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.seen == nil {
		u.seen = map[string]time.Time{}
	}
	cut := now.Add(-replayWindow(autos))
	for id, received := range u.seen {
		if received.Before(cut) {
			delete(u.seen, id)
		}
	}
	items, err := u.Repos.Event.List(ctx)
	if err != nil {
		return err
	}
	var pending []*model.Event
	for _, ev := range items {
		if ev.Received.Before(cut) || ev.Received.After(now) {
			continue
		}
		if _, ok := u.seen[ev.ID]; ok {
			continue
		}
		pending = append(pending, ev)
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if !pending[i].Received.Equal(pending[j].Received) {
			return pending[i].Received.Before(pending[j].Received)
		}
		return pending[i].Occurred.Before(pending[j].Occurred)
	})
	for _, ev := range pending {
		u.seen[ev.ID] = ev.Received
		u.Evaluator.Evaluate(ev, autos)
	}
	if len(pending) > 0 {
		logging.FromContext(ctx).Debug(ctx, "replayed stored events", "count", len(pending))
	}
	return nil
}

// markSeen records an event evaluated by this process.
func (u *UseCase) markSeen(ev *model.Event) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.seen == nil {
		u.seen = map[string]time.Time{}
	}
	u.seen[ev.ID] = ev.Received
}
