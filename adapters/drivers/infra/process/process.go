// Package process runs flow runs as local subprocesses.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strconv"

	infradrv "github.com/kompox/flowops/adapters/drivers/infra"
	"github.com/kompox/flowops/domain/model"
)

// variables are the keys understood in base job templates and run job variables.
type variables struct {
	Command    []string          `json:"command,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
	WorkingDir string            `json:"working_dir,omitempty"`
}

type driver struct {
	settings infradrv.Settings
}

func init() {
	infradrv.Register(model.WorkPoolTypeProcess, func(settings infradrv.Settings) (infradrv.Driver, error) {
		return &driver{settings: settings}, nil
	})
}

// Type returns the work pool type.
func (d *driver) Type() string { return model.WorkPoolTypeProcess }

// ValidateTemplate checks that the template decodes.
func (d *driver) ValidateTemplate(tpl map[string]any) error {
	var v variables
	return infradrv.Decode(tpl, &v)
}

// Submit runs the configured command and reports its exit code.
func (d *driver) Submit(ctx context.Context, pool *model.WorkPool, run *model.FlowRun, opts ...model.InfrastructureSubmitOption) (*model.InfrastructureResult, error) {
	o := infradrv.SubmitOptions(opts...)
	var v variables
	if err := infradrv.Decode(infradrv.MergeVariables(pool.BaseJobTemplate, run.JobVariables), &v); err != nil {
		return nil, err
	}
	if len(v.Command) == 0 {
		return nil, fmt.Errorf("work pool %q: process runs require a command", pool.Name)
	}

	cmd := exec.CommandContext(ctx, v.Command[0], v.Command[1:]...)
	cmd.Dir = v.WorkingDir
	cmd.Env = os.Environ()
	env := infradrv.RunEnvironment(d.settings, run)
	for k, val := range v.Env {
		env[k] = val
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Env = append(cmd.Env, k+"="+env[k])
	}
	var out io.Writer = os.Stdout
	if d.settings.Out != nil {
		out = d.settings.Out
	}
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start process: %w", err)
	}
	id := strconv.Itoa(cmd.Process.Pid)
	if o.Started != nil {
		o.Started(id)
	}
	err := cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return &model.InfrastructureResult{Identifier: id, StatusCode: 0}, nil
	case errors.As(err, &exitErr):
		return &model.InfrastructureResult{Identifier: id, StatusCode: exitErr.ExitCode()}, nil
	}
	return nil, fmt.Errorf("wait process: %w", err)
}
