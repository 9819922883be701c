// Package services builds the use cases of a flowops process over one set of
// repositories, with the event, action and incident flows connected.
package services

import (
	"time"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/domain/trigger"
	"github.com/kompox/flowops/internal/metrics"
	"github.com/kompox/flowops/internal/shell"
	"github.com/kompox/flowops/usecase/action"
	"github.com/kompox/flowops/usecase/artifact"
	"github.com/kompox/flowops/usecase/automation"
	"github.com/kompox/flowops/usecase/deployment"
	"github.com/kompox/flowops/usecase/event"
	"github.com/kompox/flowops/usecase/flow"
	"github.com/kompox/flowops/usecase/flowrun"
	"github.com/kompox/flowops/usecase/incident"
	"github.com/kompox/flowops/usecase/schedule"
	"github.com/kompox/flowops/usecase/workpool"
	"github.com/kompox/flowops/usecase/workspace"
	"github.com/kompox/flowops/usecase/worker"
)

// Options configures New. Zero values are usable.
type Options struct {
	Metrics *metrics.Metrics
	// Infrastructure runs flow runs for workers.
	Infrastructure model.InfrastructurePort
	// Runner executes deploy steps. Defaults to shell.ExecRunner.
	Runner shell.Runner
	// Locator resolves registered flow names for deploy.
	Locator deployment.FlowLocator
	Now     func() time.Time
}

// Services holds connected use cases.
type Services struct {
	Repos       *domain.Repositories
	Metrics     *metrics.Metrics
	Evaluator   *trigger.Evaluator
	Workspaces  *workspace.UseCase
	Flows       *flow.UseCase
	Deployments *deployment.UseCase
	WorkPools   *workpool.UseCase
	FlowRuns    *flowrun.UseCase
	Events      *event.UseCase
	Automations *automation.UseCase
	Incidents   *incident.UseCase
	Artifacts   *artifact.UseCase
	Scheduler   *schedule.UseCase
	Actions     *action.Dispatcher

	infra model.InfrastructurePort
}

// New connects the use cases: flow run state changes, incidents and action
// results are emitted as events, and fired automations run through the
// action dispatcher.
func New(repos *domain.Repositories, opts Options) *Services {
	runner := opts.Runner
	if runner == nil {
		runner = shell.ExecRunner{}
	}
	s := &Services{Repos: repos, Metrics: opts.Metrics, Evaluator: trigger.NewEvaluator(), infra: opts.Infrastructure}
	s.Events = &event.UseCase{
		Repos:     &event.Repos{Event: repos.Event, Automation: repos.Automation},
		Evaluator: s.Evaluator,
		Metrics:   opts.Metrics,
		Now:       opts.Now,
	}
	sink := s.Events.Sink()
	s.Workspaces = &workspace.UseCase{Repos: &workspace.Repos{Workspace: repos.Workspace}}
	s.Flows = &flow.UseCase{Repos: &flow.Repos{Flow: repos.Flow}}
	s.WorkPools = &workpool.UseCase{Repos: &workpool.Repos{WorkPool: repos.WorkPool}}
	s.FlowRuns = &flowrun.UseCase{
		Repos:   &flowrun.Repos{FlowRun: repos.FlowRun, Flow: repos.Flow, Deployment: repos.Deployment},
		Events:  sink,
		Metrics: opts.Metrics,
		Now:     opts.Now,
	}
	s.Deployments = &deployment.UseCase{
		Repos:    &deployment.Repos{Deployment: repos.Deployment, Flow: repos.Flow, WorkPool: repos.WorkPool},
		FlowRuns: s.FlowRuns,
		Steps:    deployment.NewSteps(runner),
		Locator:  opts.Locator,
	}
	s.Automations = &automation.UseCase{
		Repos:     &automation.Repos{Automation: repos.Automation, Deployment: repos.Deployment},
		Evaluator: s.Evaluator,
		Now:       opts.Now,
	}
	s.Incidents = &incident.UseCase{Repos: &incident.Repos{Incident: repos.Incident}, Events: sink, Now: opts.Now}
	s.Artifacts = &artifact.UseCase{Repos: &artifact.Repos{Artifact: repos.Artifact}, Now: opts.Now}
	s.Scheduler = &schedule.UseCase{Repos: &schedule.Repos{Deployment: repos.Deployment}, FlowRuns: s.FlowRuns, Now: opts.Now}
	s.Actions = &action.Dispatcher{
		Deployments: s.Deployments,
		FlowRuns:    s.FlowRuns,
		Automations: s.Automations,
		Incidents:   s.Incidents,
		Events:      sink,
		Now:         opts.Now,
	}
	s.Events.Actions = s.Actions
	return s
}

// Worker returns a worker for one pool of a workspace.
func (s *Services) Worker(workspaceID, pool string, limit int) *worker.Worker {
	return &worker.Worker{
		Repos:          &worker.Repos{WorkPool: s.Repos.WorkPool, FlowRun: s.Repos.FlowRun},
		FlowRuns:       s.FlowRuns,
		Infrastructure: s.infra,
		Metrics:        s.Metrics,
		WorkspaceID:    workspaceID,
		Pool:           pool,
		Limit:          limit,
	}
}
