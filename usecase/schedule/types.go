package schedule

import (
	"time"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/usecase/flowrun"
)

// Defaults of the scheduler loop.
const (
	DefaultHorizon  = 100 * 24 * time.Hour
	DefaultMaxRuns  = 100
	DefaultInterval = 60 * time.Second
)

// AutoScheduledTag marks runs created by the scheduler.
const AutoScheduledTag = "auto-scheduled"

// Repos holds repositories needed for scheduling.
type Repos struct {
	Deployment domain.DeploymentRepository
}

// UseCase creates scheduled flow runs for deployments with schedules.
type UseCase struct {
	Repos    *Repos
	FlowRuns *flowrun.UseCase
	Now      func() time.Time
}

func (u *UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now().UTC()
	}
	return time.Now().UTC()
}
