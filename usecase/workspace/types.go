package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/naming"
)

// Repos holds repositories needed for workspace use cases.
type Repos struct {
	Workspace domain.WorkspaceRepository
}

// UseCase wires repositories needed for workspace use cases.
type UseCase struct {
	Repos *Repos
}

// handleFor derives the workspace handle from its name.
func handleFor(name string) (string, error) {
	h := naming.Slugify(name, naming.MaxNameSlugLength)
	if err := naming.ValidateHandle(h); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrWorkspaceInvalid, err)
	}
	return h, nil
}

// ensureUnique fails when another workspace already uses name or handle.
func (u *UseCase) ensureUnique(ctx context.Context, selfID, name, handle string) error {
	items, err := u.Repos.Workspace.List(ctx)
	if err != nil {
		return err
	}
	for _, w := range items {
		if w.ID == selfID {
			continue
		}
		if w.Name == name || w.Handle == handle {
			return fmt.Errorf("%w: workspace %q already exists", model.ErrWorkspaceConflict, w.Name)
		}
	}
	return nil
}

func now() time.Time { return time.Now().UTC() }
