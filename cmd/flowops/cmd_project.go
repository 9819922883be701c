package main

import (
	"github.com/spf13/cobra"

	"github.com/kompox/flowops/config/project"
	"github.com/kompox/flowops/usecase/deployment"
	"github.com/kompox/flowops/usecase/flow"
)

func newCmdProject() *cobra.Command {
	c := &cobra.Command{
		Use:   "project",
		Short: "Manage the project in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(newCmdProjectInit())
	c.AddCommand(newCmdProjectRegisterFlow())
	return c
}

func newCmdProjectInit() *cobra.Command {
	var (
		name  string
		force bool
	)
	c := &cobra.Command{
		Use:   "init",
		Short: "Create flowops.yml, deployment.yml and the flow registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := project.New(appFs, ".").Init(project.InitInput{
				Name:       name,
				Deployment: deployment.DefaultTemplate(),
				Overwrite:  force,
			})
			if err != nil {
				return err
			}
			con := console(cmd)
			if len(created) == 0 {
				con.Warn("Project files already exist; use --force to overwrite them.")
				return nil
			}
			for _, f := range created {
				con.Success("Created %s", f)
			}
			return nil
		},
	}
	c.Flags().StringVar(&name, "name", "", "Project name (defaults to the directory name)")
	c.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return c
}

func newCmdProjectRegisterFlow() *cobra.Command {
	var name string
	c := &cobra.Command{
		Use:   "register-flow <path/to/file.py:flow_func>",
		Short: "Record the location of a flow so it can be deployed by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "project.register-flow", args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Flows.Register(ctx, &flow.RegisterInput{WorkspaceID: ws, Entrypoint: args[0], Name: name})
			if err != nil {
				return err
			}
			if err := project.New(appFs, ".").RegisterFlow(out.Flow.Name, out.Flow.Entrypoint); err != nil {
				return err
			}
			console(cmd).Success("Registered flow %q at %s", out.Flow.Name, out.Flow.Entrypoint)
			return nil
		},
	}
	c.Flags().StringVar(&name, "name", "", "Flow name (defaults to the function name)")
	return c
}
