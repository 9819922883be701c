package naming

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "plain", in: "my-flow", max: 45, want: "my-flow"},
		{name: "uppercase and spaces", in: "My Flow Run", max: 45, want: "my-flow-run"},
		{name: "underscores and dots", in: "etl_job.v2", max: 45, want: "etl-job-v2"},
		{name: "collapse and trim", in: "--a!!b--", max: 45, want: "a-b"},
		{name: "truncate", in: strings.Repeat("a", 50), max: 45, want: strings.Repeat("a", 45)},
		{name: "truncate trims trailing dash", in: strings.Repeat("a", 44) + " b", max: 45, want: strings.Repeat("a", 44)},
		{name: "no cap", in: strings.Repeat("b", 70), max: 0, want: strings.Repeat("b", 70)},
		{name: "empty after slug", in: "!!!", max: 45, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in, tc.max); got != tc.want {
				t.Fatalf("Slugify(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
		})
	}
}

func TestLabelKey(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "valid", in: "flowops.io/flow-run-name", want: "flowops.io/flow-run-name"},
		{name: "no prefix", in: "app_name", want: "app_name"},
		{name: "case and spaces", in: "FlowOps.IO/Flow Run Name", want: "flowops.io/flow-run-name"},
		{name: "bad prefix characters", in: "my prefix!/x", want: "my-prefix/x"},
		{name: "empty prefix", in: "/name", want: "name"},
		{name: "long name", in: "flowops.io/" + strings.Repeat("n", 70), want: "flowops.io/" + strings.Repeat("n", 63)},
		{name: "long prefix", in: strings.Repeat("p", 300) + "/x", want: strings.Repeat("p", 253) + "/x"},
		{name: "trims edges", in: ".team./_owner_", want: "team/owner"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LabelKey(tc.in); got != tc.want {
				t.Fatalf("LabelKey(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStableHash(t *testing.T) {
	a := StableHash("python", "-m", "flowops.engine", "K", "V")
	b := StableHash("python", "-m", "flowops.engine", "K", "V")
	if a != b {
		t.Fatalf("hash not stable: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
	if a == StableHash("python", "-m", "flowops.engine", "K", "W") {
		t.Fatalf("hash should depend on values")
	}
	// md5("") is well known.
	if got := StableHash(); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("StableHash() = %s", got)
	}
}

func TestShortHashLength(t *testing.T) {
	if h := ShortHash("some-id", 6); len(h) != 6 {
		t.Fatalf("expected hash length 6, got %d", len(h))
	}
	if h := ShortHash("some-id", 100); len(h) != 40 {
		t.Fatalf("expected clamped length 40, got %d", len(h))
	}
}

func TestNewRunName(t *testing.T) {
	name := NewRunName()
	if strings.Count(name, "-") < 1 {
		t.Fatalf("expected adjective-animal name, got %q", name)
	}
	if err := validateDNS1123Label(name, 63, "run name"); err != nil {
		t.Fatalf("run name should be a DNS label: %v", err)
	}
}

func TestFullDeploymentName(t *testing.T) {
	if got := FullDeploymentName("etl", "nightly"); got != "etl/nightly" {
		t.Fatalf("got %q", got)
	}
}
