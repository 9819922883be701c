package main

import (
	"github.com/spf13/cobra"

	"github.com/kompox/flowops/usecase/flow"
)

func newCmdFlow() *cobra.Command {
	c := &cobra.Command{
		Use:   "flow",
		Short: "Manage flows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	var tag string
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List flows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Flows.List(cmd.Context(), &flow.ListInput{WorkspaceID: ws, Tag: tag})
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(out.Flows))
			for _, f := range out.Flows {
				rows = append(rows, []string{f.ID, f.Name, orDash(f.Entrypoint), formatTime(&f.CreatedAt)})
			}
			console(cmd).Table([]string{"id", "name", "entrypoint", "created"}, rows)
			return nil
		},
	}
	ls.Flags().StringVar(&tag, "tag", "", "Only flows with this tag")
	c.AddCommand(ls)
	c.AddCommand(&cobra.Command{
		Use:   "inspect <name|id>",
		Short: "Show a flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Flows.Get(cmd.Context(), &flow.GetInput{WorkspaceID: ws, Ref: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, out.Flow)
		},
	})
	c.AddCommand(&cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "flow.delete", args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			if _, err := svc.Flows.Delete(ctx, &flow.DeleteInput{WorkspaceID: ws, Ref: args[0]}); err != nil {
				return err
			}
			console(cmd).Success("Deleted flow %q", args[0])
			return nil
		},
	})
	return c
}
