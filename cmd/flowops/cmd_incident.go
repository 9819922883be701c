package main

import (
	"github.com/spf13/cobra"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/usecase/incident"
)

func newCmdIncident() *cobra.Command {
	c := &cobra.Command{
		Use:   "incident",
		Short: "Declare and resolve incidents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(newCmdIncidentDeclare())
	c.AddCommand(newCmdIncidentList())
	c.AddCommand(newCmdIncidentInspect())
	c.AddCommand(newCmdIncidentResolve())
	return c
}

func newCmdIncidentDeclare() *cobra.Command {
	var (
		in        incident.DeclareInput
		resources []string
	)
	c := &cobra.Command{
		Use:   "declare <title>",
		Short: "Declare an incident",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "incident.declare", args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in.WorkspaceID, in.Title = ws, args[0]
			for _, r := range resources {
				res, err := parseResource(r)
				if err != nil {
					return err
				}
				in.Resources = append(in.Resources, res)
			}
			out, err := svc.Incidents.Declare(ctx, &in)
			if err != nil {
				return err
			}
			console(cmd).Success("Declared %s incident %q (%s).", out.Incident.Severity, out.Incident.Title, out.Incident.ID)
			return nil
		},
	}
	f := c.Flags()
	f.StringVar(&in.Summary, "summary", "", "Incident summary")
	f.StringVar(&in.Severity, "severity", model.SeverityMedium, "critical|high|medium|low|info")
	f.StringArrayVar(&resources, "resource", nil, "Affected resource labels k=v,k=v (repeatable)")
	return c
}

func newCmdIncidentList() *cobra.Command {
	var status string
	c := &cobra.Command{
		Use:   "ls",
		Short: "List incidents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Incidents.List(cmd.Context(), &incident.ListInput{WorkspaceID: ws, Status: status})
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(out.Incidents))
			for _, i := range out.Incidents {
				declared := i.DeclaredAt
				rows = append(rows, []string{i.ID, i.Title, i.Severity, i.Status, formatTime(&declared), orDash(i.AutomationID)})
			}
			console(cmd).Table([]string{"id", "title", "severity", "status", "declared", "automation"}, rows)
			return nil
		},
	}
	c.Flags().StringVar(&status, "status", "", "Only incidents with this status ("+model.IncidentActive+"|"+model.IncidentResolved+")")
	return c
}

func newCmdIncidentInspect() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <id>",
		Short: "Print an incident as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Incidents.Get(cmd.Context(), &incident.GetInput{WorkspaceID: ws, ID: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, out.Incident)
		},
	}
}

func newCmdIncidentResolve() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Resolve an incident",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "incident.resolve", args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Incidents.Resolve(ctx, &incident.ResolveInput{WorkspaceID: ws, ID: args[0]})
			if err != nil {
				return err
			}
			console(cmd).Success("Resolved incident %q.", out.Incident.Title)
			return nil
		},
	}
}
