package trigger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kompox/flowops/domain/model"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func runEvent(name, runID, deploymentID string, at time.Time) *model.Event {
	return &model.Event{
		WorkspaceID: "ws",
		Event:       name,
		Occurred:    at,
		Received:    at,
		Resource: model.Resource{
			model.LabelResourceID:   model.ResourceFlowRun + runID,
			model.LabelResourceName: runID,
		},
		Related: []model.Resource{{
			model.LabelResourceID:   model.ResourceDeployment + deploymentID,
			model.LabelResourceRole: "deployment",
		}},
	}
}

func automation(id string, tr model.EventTrigger) *model.Automation {
	return &model.Automation{ID: id, WorkspaceID: "ws", Name: id, Enabled: true, Trigger: tr,
		Actions: []model.Action{{Type: model.ActionDeclareIncident}}}
}

func TestReactiveThresholdOne(t *testing.T) {
	e := NewEvaluator()
	a := automation("a1", model.EventTrigger{
		Match:     map[string]string{model.LabelResourceID: model.ResourceFlowRun + "*"},
		Expect:    []string{"flowops.flow-run.Failed"},
		Posture:   model.PostureReactive,
		Threshold: 1,
	})
	autos := []*model.Automation{a}

	assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Completed", "r1", "d1", t0), autos))

	f := e.Evaluate(runEvent("flowops.flow-run.Failed", "r1", "d1", t0), autos)
	require.Len(t, f, 1)
	assert.Equal(t, "a1", f[0].Automation.ID)
	assert.Equal(t, 1, f[0].Count)
	assert.Equal(t, 0, e.Pending("a1"), "bucket resets after firing")
}

func TestReactiveWindowAndForEach(t *testing.T) {
	e := NewEvaluator()
	a := automation("a1", model.EventTrigger{
		Expect:    []string{"flowops.flow-run.Failed"},
		ForEach:   []string{model.LabelResourceName},
		Posture:   model.PostureReactive,
		Threshold: 2,
		Within:    10 * time.Minute,
	})
	autos := []*model.Automation{a}

	assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Failed", "r1", "d1", t0), autos))
	// a different bucket does not contribute
	assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Failed", "r2", "d1", t0.Add(time.Minute)), autos))
	assert.Equal(t, 2, e.Pending("a1"))

	// outside the window: restarts counting
	assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Failed", "r1", "d1", t0.Add(20*time.Minute)), autos))
	f := e.Evaluate(runEvent("flowops.flow-run.Failed", "r1", "d1", t0.Add(25*time.Minute)), autos)
	require.Len(t, f, 1)
	assert.Equal(t, "r1", f[0].Bucket)
	assert.Equal(t, 2, f[0].Count)
}

func TestTickDropsExpiredReactiveBuckets(t *testing.T) {
	e := NewEvaluator()
	a := automation("a1", model.EventTrigger{
		Expect:    []string{"flowops.flow-run.Failed"},
		ForEach:   []string{model.LabelResourceName},
		Posture:   model.PostureReactive,
		Threshold: 2,
		Within:    time.Minute,
	})
	autos := []*model.Automation{a}
	for i := 0; i < 1000; i++ {
		assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Failed", fmt.Sprintf("r%d", i), "d1", t0), autos))
	}
	require.Equal(t, 1000, e.Pending("a1"))

	assert.Empty(t, e.Tick(t0.Add(30*time.Second), autos))
	assert.Equal(t, 1000, e.Pending("a1"), "open windows are kept")

	assert.Empty(t, e.Tick(t0.Add(2000*time.Hour), autos))
	assert.Equal(t, 0, e.Pending("a1"))
}

func TestReactiveAfterGate(t *testing.T) {
	e := NewEvaluator()
	a := automation("a1", model.EventTrigger{
		After:     []string{"flowops.flow-run.Pending"},
		Expect:    []string{"flowops.flow-run.Crashed"},
		ForEach:   []string{model.LabelResourceID},
		Posture:   model.PostureReactive,
		Threshold: 1,
	})
	autos := []*model.Automation{a}

	assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Crashed", "r1", "d1", t0), autos), "not armed yet")
	assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Pending", "r1", "d1", t0), autos))
	assert.Len(t, e.Evaluate(runEvent("flowops.flow-run.Crashed", "r1", "d1", t0.Add(time.Second)), autos), 1)
	assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Crashed", "r1", "d1", t0.Add(2*time.Second)), autos), "requires a new after event")
}

func TestMatchRelatedAndDisabled(t *testing.T) {
	e := NewEvaluator()
	a := automation("a1", model.EventTrigger{
		MatchRelated: map[string]string{model.LabelResourceID: model.ResourceDeployment + "d1"},
		Expect:       []string{"flowops.flow-run.*"},
		Posture:      model.PostureReactive,
		Threshold:    1,
	})
	autos := []*model.Automation{a}

	assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Failed", "r1", "d2", t0), autos))
	assert.Len(t, e.Evaluate(runEvent("flowops.flow-run.Failed", "r1", "d1", t0), autos), 1)

	a.Enabled = false
	assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Failed", "r1", "d1", t0), autos))

	other := runEvent("flowops.flow-run.Failed", "r1", "d1", t0)
	other.WorkspaceID = "elsewhere"
	a.Enabled = true
	assert.Empty(t, e.Evaluate(other, autos), "workspaces are isolated")
}

func TestProactiveFiresOnAbsence(t *testing.T) {
	e := NewEvaluator()
	a := automation("a1", model.EventTrigger{
		After:     []string{"flowops.flow-run.Running"},
		Expect:    []string{"flowops.flow-run.Completed"},
		ForEach:   []string{model.LabelResourceID},
		Posture:   model.PostureProactive,
		Threshold: 1,
		Within:    30 * time.Minute,
	})
	autos := []*model.Automation{a}

	// r1 starts and completes in time; r2 starts and never completes
	assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Running", "r1", "d1", t0), autos))
	assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Running", "r2", "d1", t0), autos))
	assert.Empty(t, e.Evaluate(runEvent("flowops.flow-run.Completed", "r1", "d1", t0.Add(10*time.Minute)), autos))

	assert.Empty(t, e.Tick(t0.Add(29*time.Minute), autos), "window still open")

	f := e.Tick(t0.Add(31*time.Minute), autos)
	require.Len(t, f, 1)
	assert.Equal(t, model.ResourceFlowRun+"r2", f[0].Bucket)
	assert.Equal(t, "flowops.flow-run.Running", f[0].Event.Event)
	assert.Equal(t, 0, e.Pending("a1"), "both windows closed")
}

func TestProactiveWithoutAfterRollsOver(t *testing.T) {
	e := NewEvaluator()
	a := automation("a1", model.EventTrigger{
		Expect:    []string{"heartbeat"},
		Posture:   model.PostureProactive,
		Threshold: 1,
		Within:    time.Minute,
	})
	autos := []*model.Automation{a}
	hb := func(at time.Time) *model.Event {
		return &model.Event{WorkspaceID: "ws", Event: "heartbeat", Occurred: at, Resource: model.Resource{model.LabelResourceID: "agent.1"}}
	}

	assert.Empty(t, e.Evaluate(hb(t0), autos))
	assert.Empty(t, e.Tick(t0.Add(time.Minute), autos), "threshold met, window rolls over")
	assert.Equal(t, 1, e.Pending("a1"))
	f := e.Tick(t0.Add(2*time.Minute), autos)
	require.Len(t, f, 1)
	assert.Equal(t, 0, f[0].Count)
}

func TestForget(t *testing.T) {
	e := NewEvaluator()
	a := automation("a1", model.EventTrigger{Posture: model.PostureReactive, Threshold: 5})
	e.Evaluate(runEvent("x", "r1", "d1", t0), []*model.Automation{a})
	require.Equal(t, 1, e.Pending("a1"))
	e.Forget("a1")
	assert.Equal(t, 0, e.Pending("a1"))
}

func TestBucketKey(t *testing.T) {
	tr := &model.EventTrigger{ForEach: []string{model.LabelResourceID, model.LabelResourceName}}
	ev := runEvent("x", "r1", "d1", t0)
	assert.Equal(t, model.ResourceFlowRun+"r1,r1", BucketKey(tr, ev))
	assert.Equal(t, "", BucketKey(&model.EventTrigger{}, ev))
}
