package project

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := New(fs, "/proj")

	_, err := p.LoadProject()
	assert.ErrorIs(t, err, ErrNoProjectFile)
	def, found, err := p.LoadDeployment()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, def)

	require.NoError(t, afero.WriteFile(fs, "/proj/flowops.yml", []byte("name: demo\nbuild:\n  - flowops.steps.run_shell_script:\n      script: make\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/deployment.yml", []byte("name: nightly\nwork_pool:\n  name: k8s\n"), 0o644))
	proj, err := p.LoadProject()
	require.NoError(t, err)
	assert.Equal(t, "demo", proj["name"])
	assert.Len(t, proj["build"], 1)
	def, found, err = p.LoadDeployment()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]any{"name": "k8s"}, def["work_pool"])

	require.NoError(t, afero.WriteFile(fs, "/proj/deployment.yml", []byte("name: [\n"), 0o644))
	_, _, err = p.LoadDeployment()
	assert.Error(t, err)
}

func TestFlowRegistry(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := New(fs, "/proj/sub")
	require.NoError(t, fs.MkdirAll("/proj/sub", 0o755))

	_, err := p.LookupFlow("etl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .flowops directory")

	require.NoError(t, fs.MkdirAll("/proj/.flowops", 0o755))
	_, err = p.LookupFlow("etl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `flow "etl" cannot be found`)

	require.NoError(t, p.RegisterFlow("etl", "flows/etl.py:etl"))
	ok, _ := afero.Exists(fs, filepath.Join("/proj", StateDirName, FlowsFileName))
	assert.True(t, ok, "registry found in a parent directory")

	ep, err := p.LookupFlow("etl")
	require.NoError(t, err)
	assert.Equal(t, "flows/etl.py:etl", ep)
	_, err = p.LookupFlow("other")
	assert.Error(t, err)

	names, err := p.Flows()
	require.NoError(t, err)
	assert.Equal(t, []string{"etl"}, names)
}

func TestInit(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := New(fs, "/work/demo")
	created, err := p.Init(InitInput{Deployment: map[string]any{"name": nil}})
	require.NoError(t, err)
	assert.Len(t, created, 3)

	proj, err := p.LoadProject()
	require.NoError(t, err)
	assert.Equal(t, "demo", proj["name"])

	created, err = p.Init(InitInput{Name: "other"})
	require.NoError(t, err)
	assert.Empty(t, created, "existing files are kept")

	require.NoError(t, p.RegisterFlow("etl", "etl.py:etl"))
	_, err = p.Init(InitInput{Name: "other", Overwrite: true})
	require.NoError(t, err)
	_, err = p.LookupFlow("etl")
	assert.Error(t, err, "overwrite resets the registry")
}
