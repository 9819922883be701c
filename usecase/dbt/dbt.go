// Package dbt runs dbt CLI commands and summarises their results as artifacts.
package dbt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/kompox/flowops/internal/logging"
	"github.com/kompox/flowops/internal/shell"
	"github.com/kompox/flowops/usecase/artifact"
)

// ProfilesDirEnv overrides the default profiles directory.
const ProfilesDirEnv = "DBT_PROFILES_DIR"

// Commands lists the supported dbt commands.
var Commands = []string{"build", "run", "test", "snapshot", "seed"}

// ErrProfilesExist is returned when profiles.yml exists and overwriting was not requested.
var ErrProfilesExist = errors.New("profiles.yml already exists")

// Profile is written to profiles.yml under its Name.
type Profile struct {
	Name   string                    `json:"name" yaml:"-"`
	Target string                    `json:"target" yaml:"target"`
	Output map[string]map[string]any `json:"outputs" yaml:"outputs"`
}

// UseCase runs dbt through a shell.Runner.
type UseCase struct {
	Fs        afero.Fs
	Runner    shell.Runner
	Artifacts *artifact.UseCase
	// Out receives dbt output while it runs.
	Out io.Writer
	// Getenv and HomeDir default to the os package.
	Getenv  func(string) string
	HomeDir func() (string, error)
}

// RunInput describes one dbt invocation.
type RunInput struct {
	WorkspaceID string `json:"workspace_id"`
	FlowRunID   string `json:"flow_run_id,omitempty"`
	Command     string `json:"command"`
	// ProfilesDir defaults to $DBT_PROFILES_DIR, then $HOME/.dbt.
	ProfilesDir string `json:"profiles_dir,omitempty"`
	// ProjectDir defaults to the working directory.
	ProjectDir        string   `json:"project_dir,omitempty"`
	OverwriteProfiles bool     `json:"overwrite_profiles,omitempty"`
	Profile           *Profile `json:"profile,omitempty"`
	// CreateArtifact defaults to true.
	CreateArtifact *bool `json:"create_artifact,omitempty"`
	// ArtifactKey defaults to dbt-<command>-task-summary.
	ArtifactKey string   `json:"artifact_key,omitempty"`
	ExtraArgs   []string `json:"extra_args,omitempty"`
}

// RunOutput reports the command result and the parsed node results.
type RunOutput struct {
	ExitCode    int         `json:"exit_code"`
	Results     *RunResults `json:"results,omitempty"`
	ArtifactID  string      `json:"artifact_id,omitempty"`
	ProfilesDir string      `json:"profiles_dir"`
}

// Run executes dbt <command>. It fails when the command exits non-zero or
// any node errored; the artifact is created in both cases.
func (u *UseCase) Run(ctx context.Context, in *RunInput) (*RunOutput, error) {
	if in == nil || !isCommand(in.Command) {
		return nil, fmt.Errorf("dbt command must be one of %v", Commands)
	}
	if u.Runner == nil {
		return nil, fmt.Errorf("dbt runner is not configured")
	}
	fs := u.fs()
	logger := logging.FromContext(ctx)
	logger.Infof(ctx, "Running dbt %s task.", in.Command)

	profilesDir, err := u.profilesDir(in.ProfilesDir)
	if err != nil {
		return nil, err
	}
	if err := writeProfile(fs, profilesDir, in.Profile, in.OverwriteProfiles); err != nil {
		return nil, err
	}

	args := []string{in.Command, "--profiles-dir", profilesDir}
	if in.ProjectDir != "" {
		args = append(args, "--project-dir", in.ProjectDir)
	}
	args = append(args, in.ExtraArgs...)
	resultsPath := filepath.Join(in.ProjectDir, "target", "run_results.json")
	if err := fs.Remove(resultsPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove previous run results: %w", err)
	}
	res, err := u.Runner.Run(ctx, &shell.Command{Name: "dbt", Args: args, Dir: in.ProjectDir, Stdout: u.Out, Stderr: u.Out})
	if err != nil {
		return nil, fmt.Errorf("dbt %s: %w", in.Command, err)
	}
	out := &RunOutput{ExitCode: res.ExitCode, ProfilesDir: profilesDir}

	results, rerr := ReadRunResults(fs, resultsPath)
	if rerr != nil {
		logger.Warn(ctx, "dbt run results not available", "err", rerr)
	}
	out.Results = results

	if results != nil && (in.CreateArtifact == nil || *in.CreateArtifact) && u.Artifacts != nil {
		key := in.ArtifactKey
		if key == "" {
			key = fmt.Sprintf("dbt-%s-task-summary", in.Command)
		}
		a, err := u.Artifacts.Create(ctx, &artifact.CreateInput{
			WorkspaceID: in.WorkspaceID,
			Key:         key,
			Description: fmt.Sprintf("dbt %s task summary", in.Command),
			Data:        results.Markdown(in.Command),
			FlowRunID:   in.FlowRunID,
		})
		if err != nil {
			return out, err
		}
		out.ArtifactID = a.Artifact.ID
	}

	if res.ExitCode != 0 {
		return out, fmt.Errorf("dbt %s failed with exit code %d", in.Command, res.ExitCode)
	}
	if results != nil && results.HasFailures() {
		return out, fmt.Errorf("dbt %s had failed nodes", in.Command)
	}
	return out, nil
}

func (u *UseCase) fs() afero.Fs {
	if u.Fs == nil {
		return afero.NewOsFs()
	}
	return u.Fs
}

func (u *UseCase) profilesDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	getenv := u.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if dir := getenv(ProfilesDirEnv); dir != "" {
		return dir, nil
	}
	home := u.HomeDir
	if home == nil {
		home = os.UserHomeDir
	}
	h, err := home()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(h, ".dbt"), nil
}

// writeProfile writes p to <dir>/profiles.yml. Nothing is written without a profile.
func writeProfile(fs afero.Fs, dir string, p *Profile, overwrite bool) error {
	if p == nil {
		return nil
	}
	if p.Name == "" {
		return fmt.Errorf("dbt profile name is required")
	}
	path := filepath.Join(dir, "profiles.yml")
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return err
	}
	if exists && !overwrite {
		return fmt.Errorf("%w at %s; set overwrite profiles to replace it", ErrProfilesExist, path)
	}
	b, err := yaml.Marshal(map[string]*Profile{p.Name: p})
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, path, b, 0o600)
}

func isCommand(c string) bool {
	for _, k := range Commands {
		if k == c {
			return true
		}
	}
	return false
}
