package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kompox/flowops/domain"
	"github.com/kompox/flowops/internal/version"
)

// runCLI executes the root command against a fresh in-memory store and
// returns its standard output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db-url", "memory:", "--log-output", "none"}, args...))
	root.SetContext(context.Background())
	err := root.Execute()
	return out.String(), err
}

func setupCLI(t *testing.T) {
	t.Helper()
	t.Setenv("FLOWOPS_HOME", t.TempDir())
	reposCacheMu.Lock()
	reposCache = map[string]*domain.Repositories{}
	reposCacheMu.Unlock()
}

func TestVersionCommand(t *testing.T) {
	setupCLI(t)
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version.APIVersion)
	assert.Contains(t, out, "server")
}

func TestWorkspaceAndWorkPoolCommands(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "workspace", "create", "team-a", "--description", "Team A")
	require.NoError(t, err)
	out, err := runCLI(t, "workspace", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "team-a")

	_, err = runCLI(t, "--workspace", "team-a", "work-pool", "create", "local", "--type", "process")
	require.NoError(t, err)
	_, err = runCLI(t, "--workspace", "team-a", "work-pool", "queue", "set", "local", "high", "--priority", "1")
	require.NoError(t, err)
	out, err = runCLI(t, "--workspace", "team-a", "work-pool", "inspect", "local")
	require.NoError(t, err)
	assert.Contains(t, out, "local (process)")
	assert.Contains(t, out, "high priority=1")

	// Pools are scoped to their workspace.
	out, err = runCLI(t, "work-pool", "ls")
	require.NoError(t, err)
	assert.NotContains(t, out, "local")

	_, err = runCLI(t, "--workspace", "team-a", "work-pool", "inspect", "missing")
	require.Error(t, err)
}

func TestEventFiresAutomation(t *testing.T) {
	setupCLI(t)
	spec := filepath.Join(t.TempDir(), "automation.yml")
	require.NoError(t, os.WriteFile(spec, []byte(`name: page-on-failure
trigger:
  posture: Reactive
  expect: ["flowops.flow-run.Failed"]
  threshold: 1
  within: 1m
actions:
  - type: declare-incident
    title: "ETL failed on {{ .event.Event }}"
    severity: high
`), 0o644))

	_, err := runCLI(t, "automation", "create", "-f", spec)
	require.NoError(t, err)
	out, err := runCLI(t, "automation", "inspect", "page-on-failure")
	require.NoError(t, err)
	assert.Contains(t, out, "trigger Reactive threshold=1")
	assert.Contains(t, out, "declare-incident")

	out, err = runCLI(t, "event", "emit", "flowops.flow-run.Failed", "--resource", "flowops.resource.id=flowops.flow-run.abc")
	require.NoError(t, err)
	assert.Contains(t, out, "fired page-on-failure")

	out, err = runCLI(t, "incident", "ls", "--status", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "ETL failed on flowops.flow-run.Failed")
	assert.Contains(t, out, "high")
}

func TestAutomationSpecRejectsBadDuration(t *testing.T) {
	_, err := triggerSpec{Within: "soon"}.trigger()
	require.Error(t, err)

	tr, err := triggerSpec{Expect: []string{"x"}}.trigger()
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Threshold)
	assert.EqualValues(t, "Reactive", tr.Posture)
}
