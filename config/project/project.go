// Package project reads and writes the files of a flowops project directory:
// flowops.yml, deployment.yml and the .flowops/flows.json flow registry.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	ProjectFileName    = "flowops.yml"
	DeploymentFileName = "deployment.yml"
	StateDirName       = ".flowops"
	FlowsFileName      = "flows.json"
)

// ErrNoProjectFile is returned when flowops.yml is absent.
var ErrNoProjectFile = errors.New("no " + ProjectFileName + " found; run `flowops project init` to create one")

// Project is a project directory on a filesystem.
type Project struct {
	Fs  afero.Fs
	Dir string
}

// New returns the project rooted at dir. A nil fs means the OS filesystem.
func New(fs afero.Fs, dir string) *Project {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir == "" {
		dir = "."
	}
	return &Project{Fs: fs, Dir: dir}
}

func (p *Project) path(name string) string { return filepath.Join(p.Dir, name) }

// LoadProject reads flowops.yml.
func (p *Project) LoadProject() (map[string]any, error) {
	m, found, err := p.readYAML(ProjectFileName)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoProjectFile
	}
	return m, nil
}

// LoadDeployment reads deployment.yml. found is false when the file is absent,
// in which case an empty definition is returned.
func (p *Project) LoadDeployment() (def map[string]any, found bool, err error) {
	return p.readYAML(DeploymentFileName)
}

func (p *Project) readYAML(name string) (map[string]any, bool, error) {
	path := p.path(name)
	data, err := afero.ReadFile(p.Fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	m := map[string]any{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, true, fmt.Errorf("failed to unmarshal YAML %s: %w", path, err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, true, nil
}

// InitInput configures Init.
type InitInput struct {
	Name string
	// Deployment is written as deployment.yml.
	Deployment map[string]any
	// Overwrite replaces existing files.
	Overwrite bool
}

// Init writes flowops.yml, deployment.yml and an empty flow registry.
// It returns the files it created.
func (p *Project) Init(in InitInput) ([]string, error) {
	name := in.Name
	if name == "" {
		abs, err := filepath.Abs(p.Dir)
		if err != nil {
			return nil, err
		}
		name = filepath.Base(abs)
	}
	files := []struct {
		name string
		body any
	}{
		{ProjectFileName, map[string]any{"name": name, "build": nil, "push": nil, "pull": nil}},
		{DeploymentFileName, in.Deployment},
	}
	var created []string
	if err := p.Fs.MkdirAll(p.Dir, 0o755); err != nil {
		return nil, err
	}
	for _, f := range files {
		path := p.path(f.name)
		if ok, _ := afero.Exists(p.Fs, path); ok && !in.Overwrite {
			continue
		}
		data, err := yaml.Marshal(f.body)
		if err != nil {
			return created, err
		}
		if err := afero.WriteFile(p.Fs, path, data, 0o644); err != nil {
			return created, err
		}
		created = append(created, path)
	}
	flows := p.path(filepath.Join(StateDirName, FlowsFileName))
	if ok, _ := afero.Exists(p.Fs, flows); !ok || in.Overwrite {
		if err := writeFlows(p.Fs, flows, map[string]string{}); err != nil {
			return created, err
		}
		created = append(created, flows)
	}
	return created, nil
}

// FindStateDir returns the nearest .flowops directory at or above the project
// directory, or "" when there is none.
func (p *Project) FindStateDir() string {
	abs, err := filepath.Abs(p.Dir)
	if err != nil {
		abs = p.Dir
	}
	for dir := abs; ; dir = filepath.Dir(dir) {
		cand := filepath.Join(dir, StateDirName)
		if ok, _ := afero.DirExists(p.Fs, cand); ok {
			return cand
		}
		if filepath.Dir(dir) == dir {
			return ""
		}
	}
}

func flowNotFound(name string) error {
	return fmt.Errorf("flow %q cannot be found; run\n    flowops project register-flow ./path/to/file.py:flow_fn_name\nto register its location", name)
}

// LookupFlow returns the entrypoint registered for a flow name.
func (p *Project) LookupFlow(name string) (string, error) {
	dir := p.FindStateDir()
	if dir == "" {
		return "", fmt.Errorf("no %s directory could be found; run `flowops project init` to create one", StateDirName)
	}
	flows, found, err := readFlows(p.Fs, filepath.Join(dir, FlowsFileName))
	if err != nil {
		return "", err
	}
	if !found {
		return "", flowNotFound(name)
	}
	ep, ok := flows[name]
	if !ok {
		return "", flowNotFound(name)
	}
	return ep, nil
}

// RegisterFlow records the entrypoint of a flow, creating the registry when needed.
func (p *Project) RegisterFlow(name, entrypoint string) error {
	dir := p.FindStateDir()
	if dir == "" {
		dir = p.path(StateDirName)
	}
	path := filepath.Join(dir, FlowsFileName)
	flows, _, err := readFlows(p.Fs, path)
	if err != nil {
		return err
	}
	flows[name] = entrypoint
	return writeFlows(p.Fs, path, flows)
}

// Flows returns the registered flow names, sorted.
func (p *Project) Flows() ([]string, error) {
	dir := p.FindStateDir()
	if dir == "" {
		return nil, nil
	}
	flows, _, err := readFlows(p.Fs, filepath.Join(dir, FlowsFileName))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(flows))
	for k := range flows {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}

func readFlows(fs afero.Fs, path string) (map[string]string, bool, error) {
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	flows := map[string]string{}
	if err := json.Unmarshal(data, &flows); err != nil {
		return nil, true, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return flows, true, nil
}

func writeFlows(fs afero.Fs, path string, flows map[string]string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(flows, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, append(data, '\n'), 0o644)
}
