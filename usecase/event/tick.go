package event

import (
	"context"
	"time"

	"github.com/kompox/flowops/internal/logging"
)

// TickInput drives proactive triggers.
type TickInput struct {
	// Now defaults to the current time.
	Now *time.Time `json:"now,omitempty"`
}

// Tick fires proactive automations whose windows elapsed without enough events.
func (u *UseCase) Tick(ctx context.Context, in *TickInput) (*EmitOutput, error) {
	out := &EmitOutput{Fired: []Fired{}}
	if u.Evaluator == nil {
		return out, nil
	}
	now := u.now()
	if in != nil && in.Now != nil {
		now = in.Now.UTC()
	}
	autos, err := u.automations(ctx, "")
	if err != nil {
		return nil, err
	}
	if err := u.catchUp(ctx, now, autos); err != nil {
		return nil, err
	}
	firings := u.Evaluator.Tick(now, autos)
	if merr := u.dispatch(withDepth(ctx, Depth(ctx)+1), firings, out); merr != nil {
		logging.FromContext(ctx).Warn(ctx, "automation actions failed", "err", merr)
	}
	return out, nil
}
