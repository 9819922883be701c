package artifact

import (
	"time"

	"github.com/kompox/flowops/domain"
)

// Repos holds repositories needed for artifact use cases.
type Repos struct {
	Artifact domain.ArtifactRepository
}

// UseCase wires repositories needed for artifact use cases.
type UseCase struct {
	Repos *Repos
	Now   func() time.Time
}

func (u *UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now().UTC()
	}
	return time.Now().UTC()
}
