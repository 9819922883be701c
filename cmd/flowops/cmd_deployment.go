package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/usecase/deployment"
)

func newCmdDeployment() *cobra.Command {
	c := &cobra.Command{
		Use:     "deployment",
		Aliases: []string{"dep"},
		Short:   "Manage deployments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(newCmdDeploymentList())
	c.AddCommand(newCmdDeploymentInspect())
	c.AddCommand(newCmdDeploymentPause(true))
	c.AddCommand(newCmdDeploymentPause(false))
	c.AddCommand(newCmdDeploymentRun())
	c.AddCommand(newCmdDeploymentDelete())
	return c
}

func newCmdDeploymentList() *cobra.Command {
	var flowRef string
	c := &cobra.Command{
		Use:   "ls",
		Short: "List deployments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in := &deployment.ListInput{WorkspaceID: ws}
			if flowRef != "" {
				f, err := svc.Flows.Resolve(cmd.Context(), ws, flowRef)
				if err != nil {
					return err
				}
				in.FlowID = f.ID
			}
			out, err := svc.Deployments.List(cmd.Context(), in)
			if err != nil {
				return err
			}
			flows := map[string]string{}
			rows := make([][]string, 0, len(out.Deployments))
			for _, d := range out.Deployments {
				if _, ok := flows[d.FlowID]; !ok {
					if f, err := svc.Repos.Flow.Get(cmd.Context(), d.FlowID); err == nil {
						flows[d.FlowID] = f.Name
					}
				}
				schedule := "-"
				if d.Schedule != nil {
					schedule = d.Schedule.String()
				}
				rows = append(rows, []string{d.ID, flows[d.FlowID] + "/" + d.Name, orDash(d.WorkPoolName), schedule, fmt.Sprint(d.Paused)})
			}
			console(cmd).Table([]string{"id", "name", "work pool", "schedule", "paused"}, rows)
			return nil
		},
	}
	c.Flags().StringVar(&flowRef, "flow", "", "Only deployments of this flow")
	return c
}

func newCmdDeploymentInspect() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <flow/deployment|id>",
		Short: "Show a deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Deployments.Get(cmd.Context(), &deployment.GetInput{WorkspaceID: ws, Ref: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, out.Deployment)
		},
	}
}

func newCmdDeploymentPause(pause bool) *cobra.Command {
	use, short, op := "resume", "Resume scheduling of a deployment", "deployment.resume"
	if pause {
		use, short, op = "pause", "Pause scheduling of a deployment", "deployment.pause"
	}
	return &cobra.Command{
		Use:   use + " <flow/deployment|id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), op, args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in := &deployment.PauseInput{WorkspaceID: ws, Ref: args[0]}
			var out *deployment.PauseOutput
			if pause {
				out, err = svc.Deployments.Pause(ctx, in)
			} else {
				out, err = svc.Deployments.Resume(ctx, in)
			}
			if err != nil {
				return err
			}
			console(cmd).Success("Deployment %s %sd.", out.Deployment.Name, use)
			return nil
		},
	}
}

func newCmdDeploymentRun() *cobra.Command {
	var (
		params  []string
		vars    []string
		startIn time.Duration
		tags    []string
		key     string
	)
	c := &cobra.Command{
		Use:   "run <flow/deployment|id>",
		Short: "Create a flow run for a deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "deployment.run", args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in := &deployment.RunInput{WorkspaceID: ws, Ref: args[0], Tags: tags, IdempotencyKey: key}
			if in.Parameters, err = jsonKeyValues(params); err != nil {
				return err
			}
			if in.JobVariables, err = jsonKeyValues(vars); err != nil {
				return err
			}
			if startIn > 0 {
				at := timeNow().Add(startIn)
				in.StartAt = &at
			}
			out, err := svc.Deployments.Run(ctx, in)
			if err != nil {
				return err
			}
			con := console(cmd)
			if !out.Created {
				con.Warn("Flow run %q already exists for idempotency key %q.", out.FlowRun.Name, key)
			}
			con.Success("Created flow run %q.", out.FlowRun.Name)
			con.KeyValues([][2]string{
				{"UUID", out.FlowRun.ID},
				{"Parameters", compactJSON(out.FlowRun.Parameters)},
				{"Scheduled start time", formatTime(&out.FlowRun.ExpectedStartTime)},
			}, 22)
			return nil
		},
	}
	c.Flags().StringArrayVarP(&params, "param", "p", nil, "Parameter override key=value; values are parsed as JSON")
	c.Flags().StringArrayVar(&vars, "job-variable", nil, "Job variable override key=value; values are parsed as JSON")
	c.Flags().DurationVar(&startIn, "start-in", 0, "Schedule the run this far in the future")
	c.Flags().StringArrayVar(&tags, "tag", nil, "Tags for the run")
	c.Flags().StringVar(&key, "idempotency-key", "", "Return the existing run created with this key")
	return c
}

func newCmdDeploymentDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <flow/deployment|id>",
		Short: "Delete a deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "deployment.delete", args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			if _, err := svc.Deployments.Delete(ctx, &deployment.DeleteInput{WorkspaceID: ws, Ref: args[0]}); err != nil {
				return err
			}
			console(cmd).Success("Deleted deployment %q.", args[0])
			return nil
		},
	}
}

// jsonKeyValues parses key=value items; values that are valid JSON are decoded.
func jsonKeyValues(items []string) (map[string]any, error) {
	kv, err := parseKeyValues(items)
	if err != nil || len(kv) == 0 {
		return nil, err
	}
	out := make(map[string]any, len(kv))
	for k, raw := range kv {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[k] = v
	}
	return out, nil
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(string(b))
}

// stateNames lists flow run states for flag help.
func stateNames() string {
	names := make([]string, 0, len(model.AllStates))
	for _, s := range model.AllStates {
		names = append(names, string(s))
	}
	return strings.Join(names, "|")
}
