package event

import (
	"context"
	"sort"
	"strings"

	"github.com/kompox/flowops/domain/model"
)

// ListInput filters events.
type ListInput struct {
	WorkspaceID string `json:"workspace_id"`
	// Prefix matches the start of the event name.
	Prefix string `json:"prefix,omitempty"`
	// ResourceID matches the primary or a related resource id.
	ResourceID string `json:"resource_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// ListOutput wraps events, newest first.
type ListOutput struct {
	Events []*model.Event `json:"events"`
}

// List returns events of a workspace, newest first.
func (u *UseCase) List(ctx context.Context, in *ListInput) (*ListOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrEventInvalid
	}
	items, err := u.Repos.Event.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Event, 0, len(items))
	for _, ev := range items {
		if ev.WorkspaceID != in.WorkspaceID {
			continue
		}
		if in.Prefix != "" && !strings.HasPrefix(ev.Event, in.Prefix) {
			continue
		}
		if in.ResourceID != "" && !hasResource(ev, in.ResourceID) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Occurred.After(out[j].Occurred)
	})
	if in.Limit > 0 && len(out) > in.Limit {
		out = out[:in.Limit]
	}
	return &ListOutput{Events: out}, nil
}

func hasResource(ev *model.Event, id string) bool {
	if ev.Resource.ID() == id {
		return true
	}
	for _, r := range ev.Related {
		if r.ID() == id {
			return true
		}
	}
	return false
}

// GetInput identifies an event.
type GetInput struct {
	WorkspaceID string `json:"workspace_id"`
	ID          string `json:"id"`
}

// GetOutput wraps the event.
type GetOutput struct {
	Event *model.Event `json:"event"`
}

// Get returns an event of the workspace.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil || in.ID == "" {
		return nil, model.ErrEventInvalid
	}
	ev, err := u.Repos.Event.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if ev.WorkspaceID != in.WorkspaceID {
		return nil, model.ErrEventNotFound
	}
	return &GetOutput{Event: ev}, nil
}
