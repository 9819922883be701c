package rdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/domain/model"
)

func newTestRepos(t *testing.T) *domain.Repositories {
	t.Helper()
	db, err := OpenFromURL("sqlite:" + filepath.Join(t.TempDir(), "flowops.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if d := Dialect(db); d != "sqlite" {
		t.Fatalf("dialect = %q", d)
	}
	return NewRepositories(db)
}

func TestOpenFromURLUnsupported(t *testing.T) {
	if _, err := OpenFromURL("postgres://localhost/db"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

func TestWorkPoolRoundTripKeepsZeroValues(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p := &model.WorkPool{
		WorkspaceID: "ws-1",
		Name:        "k8s",
		Type:        model.WorkPoolTypeKubernetes,
		Paused:      true,
		Queues:      []model.WorkQueue{{Name: model.DefaultWorkQueueName, Priority: 1}},
		BaseJobTemplate: map[string]any{
			"namespace": "flows",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repos.WorkPool.Create(ctx, p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected generated ID")
	}

	p.Paused = false
	p.Queues = append(p.Queues, model.WorkQueue{Name: "high", Priority: 0})
	if err := repos.WorkPool.Update(ctx, p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := repos.WorkPool.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Paused {
		t.Errorf("Paused = true, want false after update")
	}
	if len(got.Queues) != 2 || got.Queue("high") == nil {
		t.Errorf("queues = %+v", got.Queues)
	}
	if got.BaseJobTemplate["namespace"] != "flows" {
		t.Errorf("base job template = %v", got.BaseJobTemplate)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
}

func TestDeploymentScheduleRoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	now := time.Now().UTC()

	d := &model.Deployment{
		WorkspaceID: "ws-1",
		FlowID:      "flow-1",
		Name:        "nightly",
		Tags:        []string{"etl"},
		Parameters:  map[string]any{"limit": float64(10)},
		Schedule:    &model.Schedule{Cron: "0 3 * * *", Timezone: "UTC"},
		PullSteps:   []map[string]any{{"set_working_directory": map[string]any{"directory": "/opt/flows"}}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repos.Deployment.Create(ctx, d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := repos.Deployment.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Schedule == nil || got.Schedule.Cron != "0 3 * * *" {
		t.Errorf("schedule = %+v", got.Schedule)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "etl" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Parameters["limit"] != float64(10) {
		t.Errorf("parameters = %v", got.Parameters)
	}
	if len(got.PullSteps) != 1 {
		t.Errorf("pull steps = %v", got.PullSteps)
	}

	got.Schedule = nil
	if err := repos.Deployment.Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	again, _ := repos.Deployment.Get(ctx, d.ID)
	if again.Schedule != nil {
		t.Errorf("schedule should be cleared, got %+v", again.Schedule)
	}
}

func TestEventsListedByReceived(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"second", "first"} {
		e := &model.Event{
			WorkspaceID: "ws-1",
			Event:       "flowops.flow-run." + name,
			Occurred:    base,
			Received:    base.Add(time.Duration(1-i) * time.Minute),
			Resource:    model.Resource{model.LabelResourceID: "flowops.flow-run.r1"},
			Related:     []model.Resource{{model.LabelResourceID: "flowops.flow.f1", model.LabelResourceRole: "flow"}},
		}
		if err := repos.Event.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	list, err := repos.Event.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Event != "flowops.flow-run.first" {
		t.Fatalf("unexpected order: %v", list)
	}
	if list[0].Related[0].Role() != "flow" {
		t.Errorf("related = %v", list[0].Related)
	}
}

func TestNotFoundErrors(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	if _, err := repos.FlowRun.Get(ctx, "missing"); !errors.Is(err, model.ErrFlowRunNotFound) {
		t.Errorf("Get: expected ErrFlowRunNotFound, got %v", err)
	}
	if err := repos.Automation.Update(ctx, &model.Automation{ID: "missing"}); !errors.Is(err, model.ErrAutomationNotFound) {
		t.Errorf("Update: expected ErrAutomationNotFound, got %v", err)
	}
	if err := repos.Incident.Delete(ctx, "missing"); !errors.Is(err, model.ErrIncidentNotFound) {
		t.Errorf("Delete: expected ErrIncidentNotFound, got %v", err)
	}
}

func TestFlowRunStateFields(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	now := time.Now().UTC().Truncate(time.Second)

	r := &model.FlowRun{WorkspaceID: "ws-1", FlowID: "flow-1", Name: "brave-otter", State: model.StateScheduled, ExpectedStartTime: now, CreatedAt: now, UpdatedAt: now}
	if err := repos.FlowRun.Create(ctx, r); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := r.ApplyState(model.StatePending, "", false, now); err != nil {
		t.Fatal(err)
	}
	if err := r.ApplyState(model.StateRunning, "", false, now); err != nil {
		t.Fatal(err)
	}
	if err := repos.FlowRun.Update(ctx, r); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := repos.FlowRun.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.State != model.StateRunning || got.StartTime == nil || got.RunCount != 1 {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.EndTime != nil {
		t.Errorf("EndTime should be nil, got %v", got.EndTime)
	}
}
