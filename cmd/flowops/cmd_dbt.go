package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kompox/flowops/internal/shell"
	"github.com/kompox/flowops/usecase/dbt"
)

func newCmdDbt() *cobra.Command {
	c := &cobra.Command{
		Use:   "dbt",
		Short: "Run dbt commands and store their summaries as artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	for _, name := range dbt.Commands {
		c.AddCommand(newCmdDbtRun(name))
	}
	return c
}

func newCmdDbtRun(command string) *cobra.Command {
	var (
		in          dbt.RunInput
		profileFile string
		noArtifact  bool
	)
	c := &cobra.Command{
		Use:   command + " [-- dbt args...]",
		Short: fmt.Sprintf("Run dbt %s", command),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "dbt."+command, in.ProjectDir)
			defer func() { cleanup(err) }()
			if profileFile != "" {
				in.Profile = &dbt.Profile{}
				if err := readSpec(cmd, profileFile, in.Profile); err != nil {
					return err
				}
			}
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in.WorkspaceID, in.Command, in.ExtraArgs = ws, command, args
			if noArtifact {
				create := false
				in.CreateArtifact = &create
			}
			u := &dbt.UseCase{Fs: appFs, Runner: shell.ExecRunner{}, Artifacts: svc.Artifacts, Out: cmd.ErrOrStderr()}
			out, err := u.Run(ctx, &in)
			con := console(cmd)
			if out != nil && out.Results != nil {
				con.Println(out.Results.Markdown(command))
			}
			if out != nil && out.ArtifactID != "" {
				con.Printf("Artifact: %s\n", out.ArtifactID)
			}
			if err != nil {
				return err
			}
			con.Success("dbt %s succeeded.", command)
			return nil
		},
	}
	f := c.Flags()
	f.StringVar(&in.ProfilesDir, "profiles-dir", "", "dbt profiles directory (default $DBT_PROFILES_DIR or ~/.dbt)")
	f.StringVar(&in.ProjectDir, "project-dir", "", "dbt project directory (default the working directory)")
	f.BoolVar(&in.OverwriteProfiles, "overwrite-profiles", false, "Replace an existing profiles.yml")
	f.StringVar(&profileFile, "profile-file", "", "Write this profile (name, target, outputs) to profiles.yml first")
	f.BoolVar(&noArtifact, "no-artifact", false, "Do not store a summary artifact")
	f.StringVar(&in.ArtifactKey, "artifact-key", "", "Artifact key (default dbt-<command>-task-summary)")
	f.StringVar(&in.FlowRunID, "flow-run", "", "Associate the artifact with this flow run")
	return c
}
