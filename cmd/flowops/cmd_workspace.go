package main

import (
	"github.com/spf13/cobra"

	"github.com/kompox/flowops/usecase/workspace"
)

func newCmdWorkspace() *cobra.Command {
	c := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Manage workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildServices(cmd, nil)
			if err != nil {
				return err
			}
			out, err := svc.Workspaces.List(cmd.Context(), &workspace.ListInput{})
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(out.Workspaces))
			for _, w := range out.Workspaces {
				rows = append(rows, []string{w.ID, w.Name, w.Handle, orDash(w.Description)})
			}
			console(cmd).Table([]string{"id", "name", "handle", "description"}, rows)
			return nil
		},
	})
	c.AddCommand(&cobra.Command{
		Use:   "inspect <name|id>",
		Short: "Show a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildServices(cmd, nil)
			if err != nil {
				return err
			}
			out, err := svc.Workspaces.Resolve(cmd.Context(), &workspace.ResolveInput{Ref: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, out.Workspace)
		},
	})
	var description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "workspace.create", args[0])
			defer func() { cleanup(err) }()
			svc, err := buildServices(cmd, nil)
			if err != nil {
				return err
			}
			out, err := svc.Workspaces.Create(ctx, &workspace.CreateInput{Name: args[0], Description: description})
			if err != nil {
				return err
			}
			console(cmd).Success("Created workspace %q with ID %s", out.Workspace.Name, out.Workspace.ID)
			return nil
		},
	}
	create.Flags().StringVar(&description, "description", "", "Workspace description")
	c.AddCommand(create)
	c.AddCommand(&cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "workspace.delete", args[0])
			defer func() { cleanup(err) }()
			svc, err := buildServices(cmd, nil)
			if err != nil {
				return err
			}
			ws, err := svc.Workspaces.Resolve(ctx, &workspace.ResolveInput{Ref: args[0]})
			if err != nil {
				return err
			}
			if _, err := svc.Workspaces.Delete(ctx, &workspace.DeleteInput{WorkspaceID: ws.Workspace.ID}); err != nil {
				return err
			}
			console(cmd).Success("Deleted workspace %q", ws.Workspace.Name)
			return nil
		},
	})
	return c
}
