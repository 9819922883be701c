// Package shell runs external commands for deployment steps and dbt tasks.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Command is one program invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env is added to the current process environment.
	Env map[string]string
	// Stdout and Stderr additionally receive the output while it is captured.
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs.
func (c *Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the captured outcome of a command that ran.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs commands. Implementations return an error only when the
// command could not run; a non-zero exit is reported in Result.
type Runner interface {
	Run(ctx context.Context, cmd *Command) (*Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// Run starts the command and waits for it.
func (ExecRunner) Run(ctx context.Context, c *Command) (*Result, error) {
	if c == nil || c.Name == "" {
		return nil, fmt.Errorf("command is empty")
	}
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), envList(c.Env)...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, c.Stdout)
	cmd.Stderr = tee(&stderr, c.Stderr)
	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return nil, fmt.Errorf("run %s: %w", c.Name, err)
}

// Script returns a command running script with sh -c.
func Script(script, dir string, env map[string]string) *Command {
	return &Command{Name: "sh", Args: []string{"-c", script}, Dir: dir, Env: env}
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
