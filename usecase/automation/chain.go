package automation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yourbasic/graph"

	"github.com/kompox/flowops/domain/model"
)

// flowRunEvents are the names of flow run state events.
var flowRunEvents = func() []string {
	states := []model.StateType{
		model.StateScheduled, model.StatePending, model.StateRunning, model.StatePaused,
		model.StateCancelling, model.StateCompleted, model.StateFailed, model.StateCrashed,
		model.StateCancelled,
	}
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = model.ResourceFlowRun + s.Name()
	}
	return out
}()

// checkChain rejects a set of automations whose run-deployment actions form a
// cycle: deployment A's runs trigger a run of B whose runs trigger a run of A.
func (u *UseCase) checkChain(ctx context.Context, workspaceID string, autos []*model.Automation) error {
	var deploymentIDs []string
	if u.Repos.Deployment != nil {
		items, err := u.Repos.Deployment.List(ctx)
		if err != nil {
			return err
		}
		for _, d := range items {
			if d.WorkspaceID == workspaceID {
				deploymentIDs = append(deploymentIDs, d.ID)
			}
		}
	}

	index := map[string]int{}
	var names []string
	vertex := func(id string) int {
		if i, ok := index[id]; ok {
			return i
		}
		index[id] = len(names)
		names = append(names, id)
		return index[id]
	}
	type edge struct{ from, to int }
	var edges []edge
	for _, a := range autos {
		if !a.Enabled {
			continue
		}
		sources := watchedDeployments(&a.Trigger, deploymentIDs)
		if len(sources) == 0 {
			continue
		}
		for _, act := range a.Actions {
			if act.Type != model.ActionRunDeployment {
				continue
			}
			targets := []string{act.DeploymentID}
			if act.DeploymentID == "" {
				targets = sources
			}
			for _, src := range sources {
				for _, dst := range targets {
					edges = append(edges, edge{vertex(src), vertex(dst)})
				}
			}
		}
	}
	if len(edges) == 0 {
		return nil
	}
	g := graph.New(len(names))
	for _, e := range edges {
		g.Add(e.from, e.to)
	}
	if graph.Acyclic(g) {
		return nil
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return fmt.Errorf("%w: deployments %s", model.ErrAutomationCycle, strings.Join(sorted, ", "))
}

// watchedDeployments returns the deployments whose flow run events satisfy
// the trigger, judged by the deployment related resource match.
func watchedDeployments(t *model.EventTrigger, deploymentIDs []string) []string {
	if !watchesFlowRuns(t) {
		return nil
	}
	pattern, ok := t.MatchRelated[model.LabelResourceID]
	if !ok || !strings.HasPrefix(pattern, model.ResourceDeployment) && pattern != "*" {
		return nil
	}
	if !strings.HasSuffix(pattern, "*") {
		return []string{strings.TrimPrefix(pattern, model.ResourceDeployment)}
	}
	var out []string
	for _, id := range deploymentIDs {
		if model.MatchPattern(pattern, model.ResourceDeployment+id) {
			out = append(out, id)
		}
	}
	return out
}

func watchesFlowRuns(t *model.EventTrigger) bool {
	if len(t.Expect) == 0 {
		return true
	}
	for _, p := range t.Expect {
		for _, name := range flowRunEvents {
			if model.MatchPattern(p, name) {
				return true
			}
		}
	}
	return false
}
