package deployment

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/kompox/flowops/internal/shell"
)

// StepPrefix is the namespace of the built-in steps. Steps may be referenced
// by their full name or by the short name after the prefix.
const StepPrefix = "flowops.deployments.steps."

// StepFunc runs one step with its inputs and returns its outputs.
type StepFunc func(ctx context.Context, inputs map[string]any) (map[string]any, error)

// Steps is the registry of build, push and pull steps.
type Steps struct {
	runner shell.Runner
	funcs  map[string]StepFunc
}

// NewSteps returns a registry with the built-in steps. A nil runner uses shell.ExecRunner.
func NewSteps(runner shell.Runner) *Steps {
	if runner == nil {
		runner = shell.ExecRunner{}
	}
	s := &Steps{runner: runner, funcs: map[string]StepFunc{}}
	s.Register(StepPrefix+"run_shell_script", s.runShellScript)
	s.Register(StepPrefix+"git_clone", s.gitClone)
	s.Register(StepPrefix+"set_working_directory", setWorkingDirectory)
	return s
}

// Register adds or replaces a step.
func (s *Steps) Register(name string, fn StepFunc) {
	s.funcs[name] = fn
}

// Names lists the registered steps.
func (s *Steps) Names() []string {
	out := make([]string, 0, len(s.funcs))
	for k := range s.funcs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Run executes a step given as a single-key map {name: inputs}.
func (s *Steps) Run(ctx context.Context, step map[string]any) (map[string]any, error) {
	if len(step) != 1 {
		return nil, fmt.Errorf("a step must have exactly one key naming the step, got %d", len(step))
	}
	for name, raw := range step {
		fn, ok := s.funcs[name]
		if !ok {
			fn, ok = s.funcs[StepPrefix+name]
		}
		if !ok {
			return nil, fmt.Errorf("unknown step %q", name)
		}
		inputs, _ := raw.(map[string]any)
		if raw != nil && inputs == nil {
			return nil, fmt.Errorf("step %q: inputs must be a mapping", name)
		}
		out, err := fn(ctx, inputs)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", name, err)
		}
		return out, nil
	}
	return nil, nil
}

func (s *Steps) runShellScript(ctx context.Context, in map[string]any) (map[string]any, error) {
	script := stringInput(in, "script")
	if script == "" {
		return nil, fmt.Errorf("script is required")
	}
	env := map[string]string{}
	if m, ok := in["env"].(map[string]any); ok {
		for k, v := range m {
			env[k] = fmt.Sprint(v)
		}
	}
	res, err := s.runner.Run(ctx, shell.Script(script, stringInput(in, "directory"), env))
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("script exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return map[string]any{
		"stdout": strings.TrimSpace(res.Stdout),
		"stderr": strings.TrimSpace(res.Stderr),
	}, nil
}

func (s *Steps) gitClone(ctx context.Context, in map[string]any) (map[string]any, error) {
	repo := stringInput(in, "repository")
	if repo == "" {
		return nil, fmt.Errorf("repository is required")
	}
	dir := strings.TrimSuffix(path.Base(repo), ".git")
	if token := stringInput(in, "access_token"); token != "" {
		u, err := url.Parse(repo)
		if err != nil {
			return nil, fmt.Errorf("repository: %w", err)
		}
		u.User = url.User(token)
		repo = u.String()
	}
	args := []string{"clone", repo}
	if branch := stringInput(in, "branch"); branch != "" {
		args = append(args, "-b", branch)
	}
	args = append(args, "--depth", "1", dir)
	res, err := s.runner.Run(ctx, &shell.Command{Name: "git", Args: args})
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("git clone exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return map[string]any{"directory": dir}, nil
}

// setWorkingDirectory only reports the directory. Runs change into it when
// they execute the pull steps.
func setWorkingDirectory(_ context.Context, in map[string]any) (map[string]any, error) {
	dir := stringInput(in, "directory")
	if dir == "" {
		return nil, fmt.Errorf("directory is required")
	}
	return map[string]any{"directory": dir}, nil
}

func stringInput(in map[string]any, key string) string {
	if v, ok := in[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}
