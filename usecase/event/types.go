package event

import (
	"context"
	"sync"
	"time"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/domain/trigger"
	"github.com/kompox/flowops/internal/metrics"
)

// MaxDepth bounds chains of events emitted by actions of automations.
const MaxDepth = 8

// Repos holds repositories needed for event use cases.
type Repos struct {
	Event      domain.EventRepository
	Automation domain.AutomationRepository
}

// UseCase ingests events, evaluates automation triggers and dispatches actions.
type UseCase struct {
	Repos     *Repos
	Evaluator *trigger.Evaluator
	// Actions performs actions of fired automations. Nil disables dispatch.
	Actions model.ActionPort
	Metrics *metrics.Metrics
	Now     func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time // event id -> received, within the replay window
}

func (u *UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now().UTC()
	}
	return time.Now().UTC()
}

type depthKey struct{}

// Depth returns the number of automation actions that led to ctx.
func Depth(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

func withDepth(ctx context.Context, d int) context.Context {
	return context.WithValue(ctx, depthKey{}, d)
}

// Sink adapts the use case to model.EventSink for components that emit
// events as a side effect.
func (u *UseCase) Sink() model.EventSink { return sink{u} }

type sink struct{ u *UseCase }

func (s sink) Emit(ctx context.Context, ev *model.Event) error {
	_, err := s.u.Emit(ctx, &EmitInput{Event: ev})
	return err
}
