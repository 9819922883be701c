package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/usecase/flowrun"
)

func newCmdFlowRun() *cobra.Command {
	c := &cobra.Command{
		Use:     "flow-run",
		Aliases: []string{"run"},
		Short:   "Inspect and control flow runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(newCmdFlowRunList())
	c.AddCommand(newCmdFlowRunInspect())
	c.AddCommand(newCmdFlowRunCancel())
	c.AddCommand(newCmdFlowRunSetState())
	c.AddCommand(newCmdFlowRunDelete())
	return c
}

func newCmdFlowRunList() *cobra.Command {
	var (
		states              []string
		deploymentRef, pool  string
		queue               string
		limit               int
	)
	c := &cobra.Command{
		Use:   "ls",
		Short: "List flow runs by expected start time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in := &flowrun.ListInput{WorkspaceID: ws, WorkPoolName: pool, WorkQueueName: queue, Limit: limit}
			for _, s := range states {
				st, err := model.ParseStateType(s)
				if err != nil {
					return err
				}
				in.States = append(in.States, st)
			}
			if deploymentRef != "" {
				d, err := svc.Deployments.Resolve(cmd.Context(), ws, deploymentRef)
				if err != nil {
					return err
				}
				in.DeploymentID = d.ID
			}
			out, err := svc.FlowRuns.List(cmd.Context(), in)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(out.FlowRuns))
			for _, r := range out.FlowRuns {
				expected := r.ExpectedStartTime
				rows = append(rows, []string{r.ID, r.Name, string(r.State), formatTime(&expected), orDash(r.WorkPoolName), orDash(r.WorkQueueName)})
			}
			console(cmd).Table([]string{"id", "name", "state", "expected start", "work pool", "work queue"}, rows)
			return nil
		},
	}
	f := c.Flags()
	f.StringSliceVar(&states, "state", nil, "Only runs in these states ("+stateNames()+")")
	f.StringVar(&deploymentRef, "deployment", "", "Only runs of this deployment")
	f.StringVar(&pool, "pool", "", "Only runs routed to this work pool")
	f.StringVar(&queue, "queue", "", "Only runs routed to this work queue")
	f.IntVar(&limit, "limit", 0, "Maximum number of runs; 0 lists all")
	return c
}

func newCmdFlowRunInspect() *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "inspect <id>",
		Short: "Show a flow run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.FlowRuns.Get(cmd.Context(), &flowrun.GetInput{WorkspaceID: ws, FlowRunID: args[0]})
			if err != nil {
				return err
			}
			r := out.FlowRun
			if asJSON {
				return printJSON(cmd, r)
			}
			expected := r.ExpectedStartTime
			console(cmd).KeyValues([][2]string{
				{"ID", r.ID},
				{"Name", r.Name},
				{"State", string(r.State)},
				{"Message", orDash(r.StateMessage)},
				{"Deployment", orDash(r.DeploymentID)},
				{"Work pool", orDash(r.WorkPoolName)},
				{"Work queue", orDash(r.WorkQueueName)},
				{"Expected start", formatTime(&expected)},
				{"Started", formatTime(r.StartTime)},
				{"Ended", formatTime(r.EndTime)},
				{"Run count", fmt.Sprint(r.RunCount)},
				{"Infrastructure", orDash(r.InfrastructureID)},
				{"Parameters", compactJSON(r.Parameters)},
			}, 16)
			return nil
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	return c
}

func newCmdFlowRunCancel() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a flow run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "flow-run.cancel", args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.FlowRuns.Cancel(ctx, &flowrun.CancelInput{WorkspaceID: ws, FlowRunID: args[0]})
			if err != nil {
				return err
			}
			console(cmd).Success("Flow run %q is %s.", out.FlowRun.Name, out.FlowRun.State)
			return nil
		},
	}
}

func newCmdFlowRunSetState() *cobra.Command {
	var (
		message string
		force   bool
	)
	c := &cobra.Command{
		Use:   "set-state <id> <" + stateNames() + ">",
		Short: "Move a flow run to another state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "flow-run.set-state", args[0])
			defer func() { cleanup(err) }()
			st, err := model.ParseStateType(args[1])
			if err != nil {
				return err
			}
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.FlowRuns.SetState(ctx, &flowrun.SetStateInput{WorkspaceID: ws, FlowRunID: args[0], State: st, Message: message, Force: force})
			if err != nil {
				return err
			}
			console(cmd).Success("Flow run %q is %s.", out.FlowRun.Name, out.FlowRun.State)
			return nil
		},
	}
	c.Flags().StringVarP(&message, "message", "m", "", "State message")
	c.Flags().BoolVar(&force, "force", false, "Skip the transition check")
	return c
}

func newCmdFlowRunDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a flow run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "flow-run.delete", args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			if _, err := svc.FlowRuns.Delete(ctx, &flowrun.DeleteInput{WorkspaceID: ws, FlowRunID: args[0]}); err != nil {
				return err
			}
			console(cmd).Success("Deleted flow run %q.", args[0])
			return nil
		},
	}
}
