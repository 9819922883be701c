package kube

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kompox/flowops/internal/naming"
)

func container(t *testing.T, m Manifest) map[string]any {
	t.Helper()
	spec := m["spec"].(map[string]any)["template"].(map[string]any)["spec"].(map[string]any)
	return spec["containers"].([]any)[0].(map[string]any)
}

func TestBuildJob_Shortcuts(t *testing.T) {
	cfg := DefaultJobConfig()
	cfg.Name = "My Flow Run!"
	cfg.Namespace = "flows"
	cfg.Image = "example/flow:1"
	cfg.ImagePullPolicy = PullAlways
	cfg.ServiceAccountName = "runner"
	cfg.Command = []string{"python", "-m", "flow"}
	cfg.Labels = map[string]string{"flowops.io/flow-run-name": "Brave Otter"}
	cfg.BaseEnv = map[string]string{"FLOWOPS__FLOW_RUN_ID": "run-1", "A": "base"}
	cfg.Env = map[string]string{"A": "user"}

	m, err := cfg.BuildJob()
	if err != nil {
		t.Fatalf("BuildJob: %v", err)
	}
	meta := m["metadata"].(map[string]any)
	if meta["namespace"] != "flows" {
		t.Errorf("namespace = %v", meta["namespace"])
	}
	if meta["generateName"] != "my-flow-run" {
		t.Errorf("generateName = %v", meta["generateName"])
	}
	if diff := cmp.Diff(map[string]any{"flowops.io/flow-run-name": "brave-otter"}, meta["labels"]); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	c := container(t, m)
	if c["image"] != "example/flow:1" || c["imagePullPolicy"] != PullAlways {
		t.Errorf("container = %v", c)
	}
	wantEnv := []any{
		map[string]any{"name": "A", "value": "user"},
		map[string]any{"name": "FLOWOPS__FLOW_RUN_ID", "value": "run-1"},
	}
	if diff := cmp.Diff(wantEnv, c["env"]); diff != "" {
		t.Errorf("env mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"python", "-m", "flow"}, c["command"]); diff != "" {
		t.Errorf("command mismatch (-want +got):\n%s", diff)
	}
	spec := m["spec"].(map[string]any)["template"].(map[string]any)["spec"].(map[string]any)
	if spec["serviceAccountName"] != "runner" {
		t.Errorf("serviceAccountName = %v", spec["serviceAccountName"])
	}
}

func TestBuildJob_LabelKeys(t *testing.T) {
	cfg := DefaultJobConfig()
	cfg.Labels = map[string]string{
		"FlowOps.IO/Flow Run Name":             "Brave Otter",
		"team owner":                           "data",
		"flowops.io/" + strings.Repeat("k", 80): "v",
	}
	m, err := cfg.BuildJob()
	if err != nil {
		t.Fatalf("BuildJob: %v", err)
	}
	want := map[string]any{
		"flowops.io/flow-run-name":             "brave-otter",
		"team-owner":                           "data",
		"flowops.io/" + strings.Repeat("k", 63): "v",
	}
	if diff := cmp.Diff(want, m["metadata"].(map[string]any)["labels"]); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildJob_Customizations(t *testing.T) {
	cfg := DefaultJobConfig()
	cfg.Customizations = []map[string]any{
		{"op": "add", "path": "/spec/backoffLimit", "value": 0},
		{"op": "replace", "path": "/metadata/namespace", "value": "override"},
	}
	m, err := cfg.BuildJob()
	if err != nil {
		t.Fatalf("BuildJob: %v", err)
	}
	if got := m["spec"].(map[string]any)["backoffLimit"]; got != float64(0) {
		t.Errorf("backoffLimit = %v", got)
	}
	if got := m["metadata"].(map[string]any)["namespace"]; got != "override" {
		t.Errorf("namespace = %v", got)
	}

	cfg.Customizations = []map[string]any{{"op": "remove", "path": "/nope"}}
	if _, err := cfg.BuildJob(); err == nil {
		t.Fatal("expected error for a patch on a missing path")
	}
}

func TestBuildJob_RejectsInvalidTemplate(t *testing.T) {
	cfg := DefaultJobConfig()
	cfg.Job = Manifest{"apiVersion": "batch/v1", "kind": "Job"}
	if _, err := cfg.BuildJob(); err == nil || !strings.Contains(err.Error(), "missing required attributes") {
		t.Fatalf("expected validation error, got %v", err)
	}
	cfg = DefaultJobConfig()
	cfg.ImagePullPolicy = "Sometimes"
	if _, err := cfg.BuildJob(); err == nil {
		t.Fatal("expected pull policy error")
	}
}

func TestGenerateName_Hash(t *testing.T) {
	cfg := JobConfig{Command: []string{"run"}, Env: map[string]string{"B": "2", "A": "1"}}
	want := "flowops-job-" + naming.StableHash("run", "A", "B", "1", "2")
	if got := cfg.GenerateName(); got != want {
		t.Fatalf("GenerateName = %q, want %q", got, want)
	}
	if len(want) > naming.MaxNameSlugLength {
		t.Fatalf("generated name too long: %d", len(want))
	}
}

func TestEnvironment_APIURLRewrite(t *testing.T) {
	tests := []struct {
		name string
		cfg  JobConfig
		want string
	}{
		{
			name: "base localhost rewritten",
			cfg:  JobConfig{APIDNSName: "host.docker.internal", BaseEnv: map[string]string{APIURLEnv: "http://localhost:4200/api"}},
			want: "http://host.docker.internal:4200/api",
		},
		{
			name: "loopback rewritten",
			cfg:  JobConfig{APIDNSName: "api.svc", BaseEnv: map[string]string{APIURLEnv: "http://127.0.0.1:4200/api"}},
			want: "http://api.svc:4200/api",
		},
		{
			name: "user value kept",
			cfg: JobConfig{
				APIDNSName: "api.svc",
				BaseEnv:    map[string]string{APIURLEnv: "http://localhost:4200/api"},
				Env:        map[string]string{APIURLEnv: "http://localhost:9999/api"},
			},
			want: "http://localhost:9999/api",
		},
		{
			name: "no dns name",
			cfg:  JobConfig{BaseEnv: map[string]string{APIURLEnv: "http://localhost:4200/api"}},
			want: "http://localhost:4200/api",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Environment()[APIURLEnv]; got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	cfg := DefaultJobConfig()
	cfg.Name = "preview"
	out, err := cfg.Preview()
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	for _, want := range []string{"kind: Job", "generateName: preview", "image: " + DefaultJobImage, "restartPolicy: Never"} {
		if !strings.Contains(out, want) {
			t.Errorf("preview missing %q:\n%s", want, out)
		}
	}
}
