package model

import "testing"

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern, value string
		want           bool
	}{
		{"*", "anything", true},
		{"flowops.flow-run.*", "flowops.flow-run.123", true},
		{"flowops.flow-run.*", "flowops.deployment.1", false},
		{"exact", "exact", true},
		{"exact", "exactly", false},
	}
	for _, tt := range tests {
		if got := MatchPattern(tt.pattern, tt.value); got != tt.want {
			t.Errorf("MatchPattern(%q, %q) = %v, want %v", tt.pattern, tt.value, got, tt.want)
		}
	}
}

func TestMatchLabels(t *testing.T) {
	labels := Resource{LabelResourceID: "flowops.flow-run.1", "env": "prod"}
	if !MatchLabels(map[string]string{"env": "prod", LabelResourceID: "flowops.flow-run.*"}, labels) {
		t.Error("expected match")
	}
	if MatchLabels(map[string]string{"team": "*"}, labels) {
		t.Error("missing label must not match")
	}
	if !MatchLabels(nil, labels) {
		t.Error("empty match should match everything")
	}
}

func TestEventResourceIDWithPrefix(t *testing.T) {
	ev := &Event{
		Resource: Resource{LabelResourceID: ResourceFlowRun + "run-1"},
		Related: []Resource{
			{LabelResourceID: ResourceDeployment + "dep-1", LabelResourceRole: "deployment"},
		},
	}
	if id, ok := ev.ResourceIDWithPrefix(ResourceFlowRun); !ok || id != "run-1" {
		t.Errorf("flow run id = %q, %v", id, ok)
	}
	if id, ok := ev.ResourceIDWithPrefix(ResourceDeployment); !ok || id != "dep-1" {
		t.Errorf("deployment id = %q, %v", id, ok)
	}
	if _, ok := ev.ResourceIDWithPrefix(ResourceWorkPool); ok {
		t.Error("unexpected work pool match")
	}
	if r := ev.RelatedByRole("deployment"); r.ID() != ResourceDeployment+"dep-1" {
		t.Errorf("RelatedByRole() = %v", r)
	}
}
