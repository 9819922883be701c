// Package trigger evaluates automation triggers against ingested events.
//
// An Evaluator keeps one bucket per automation and combination of ForEach
// label values. Reactive triggers fire from Evaluate once Threshold matching
// events were seen within the Within window. Proactive triggers count
// matching events and fire from Tick when a window elapses with fewer than
// Threshold events.
package trigger

import (
	"strings"
	"sync"
	"time"

	"github.com/kompox/flowops/domain/model"
)

// Firing is an automation whose trigger condition was met.
type Firing struct {
	Automation *model.Automation
	// Event is the event completing a reactive trigger, or the event that
	// opened the window of a proactive trigger.
	Event *model.Event
	// Bucket identifies the ForEach label values, empty without ForEach.
	Bucket string
	// Count is the number of matching events seen in the window.
	Count int
}

type bucket struct {
	armed       bool
	count       int
	windowStart time.Time
	opener      *model.Event
}

// Evaluator is safe for concurrent use.
type Evaluator struct {
	mu      sync.Mutex
	buckets map[string]map[string]*bucket // automation id -> bucket key -> state
}

// NewEvaluator returns an empty evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{buckets: map[string]map[string]*bucket{}}
}

// Matches reports whether ev concerns the trigger's resources. It does not
// look at the event name.
func Matches(t *model.EventTrigger, ev *model.Event) bool {
	if !model.MatchLabels(t.Match, ev.Resource) {
		return false
	}
	if len(t.MatchRelated) == 0 {
		return true
	}
	for _, r := range ev.Related {
		if model.MatchLabels(t.MatchRelated, r) {
			return true
		}
	}
	return false
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if model.MatchPattern(p, name) {
			return true
		}
	}
	return false
}

// BucketKey joins the values of the ForEach labels of ev.
func BucketKey(t *model.EventTrigger, ev *model.Event) string {
	if len(t.ForEach) == 0 {
		return ""
	}
	vals := make([]string, len(t.ForEach))
	for i, k := range t.ForEach {
		vals[i] = ev.Resource[k]
	}
	return strings.Join(vals, ",")
}

// Evaluate updates trigger state with ev and returns the reactive firings it completes.
func (e *Evaluator) Evaluate(ev *model.Event, automations []*model.Automation) []Firing {
	e.mu.Lock()
	defer e.mu.Unlock()

	at := ev.Occurred
	var out []Firing
	for _, a := range automations {
		if a == nil || !a.Enabled || a.WorkspaceID != ev.WorkspaceID {
			continue
		}
		t := &a.Trigger
		if !Matches(t, ev) {
			continue
		}
		key := BucketKey(t, ev)
		b := e.get(a.ID, key)

		if len(t.After) > 0 && matchAny(t.After, ev.Event) {
			if b == nil {
				b = e.put(a.ID, key)
			}
			if !b.armed {
				b.armed = true
				b.count = 0
				b.windowStart = at
				b.opener = ev
			}
		}
		if len(t.Expect) > 0 && !matchAny(t.Expect, ev.Event) {
			continue
		}
		if len(t.After) > 0 && (b == nil || !b.armed) {
			continue
		}
		if b == nil {
			b = e.put(a.ID, key)
			b.armed = true
			b.windowStart = at
			b.opener = ev
		}

		switch t.Posture {
		case model.PostureReactive:
			if b.count > 0 && t.Within > 0 && at.Sub(b.windowStart) > t.Within {
				b.count = 0
			}
			if b.count == 0 {
				b.windowStart = at
			}
			b.count++
			if b.count >= t.Threshold {
				out = append(out, Firing{Automation: a, Event: ev, Bucket: key, Count: b.count})
				e.drop(a.ID, key)
			}
		case model.PostureProactive:
			b.count++
		}
	}
	return out
}

// Tick closes elapsed proactive windows and returns those that saw fewer than
// Threshold events. Windows that met the threshold roll over when the trigger
// has no After events and close otherwise. Reactive buckets whose window
// expired before reaching Threshold are dropped.
func (e *Evaluator) Tick(now time.Time, automations []*model.Automation) []Firing {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []Firing
	for _, a := range automations {
		if a == nil || !a.Enabled {
			continue
		}
		t := &a.Trigger
		if t.Posture == model.PostureReactive {
			if t.Within <= 0 {
				continue
			}
			for key, b := range e.buckets[a.ID] {
				if now.Sub(b.windowStart) > t.Within {
					e.drop(a.ID, key)
				}
			}
			continue
		}
		if t.Posture != model.PostureProactive {
			continue
		}
		for key, b := range e.buckets[a.ID] {
			if !b.armed || now.Sub(b.windowStart) < t.Within {
				continue
			}
			if b.count < t.Threshold {
				out = append(out, Firing{Automation: a, Event: b.opener, Bucket: key, Count: b.count})
				e.drop(a.ID, key)
				continue
			}
			if len(t.After) > 0 {
				e.drop(a.ID, key)
				continue
			}
			b.count = 0
			b.windowStart = now
		}
	}
	return out
}

// Forget drops all state of an automation.
func (e *Evaluator) Forget(automationID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.buckets, automationID)
}

// Pending returns the number of open buckets of an automation.
func (e *Evaluator) Pending(automationID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.buckets[automationID])
}

func (e *Evaluator) get(id, key string) *bucket {
	return e.buckets[id][key]
}

func (e *Evaluator) put(id, key string) *bucket {
	m := e.buckets[id]
	if m == nil {
		m = map[string]*bucket{}
		e.buckets[id] = m
	}
	b := &bucket{}
	m[key] = b
	return b
}

func (e *Evaluator) drop(id, key string) {
	delete(e.buckets[id], key)
	if len(e.buckets[id]) == 0 {
		delete(e.buckets, id)
	}
}
