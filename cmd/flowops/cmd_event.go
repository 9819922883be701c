package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/usecase/event"
)

func newCmdEvent() *cobra.Command {
	c := &cobra.Command{
		Use:   "event",
		Short: "Emit and inspect events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(newCmdEventEmit())
	c.AddCommand(newCmdEventList())
	c.AddCommand(newCmdEventInspect())
	return c
}

// parseResource parses a comma separated k=v list into resource labels.
func parseResource(s string) (model.Resource, error) {
	var items []string
	for _, it := range strings.Split(s, ",") {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	kv, err := parseKeyValues(items)
	if err != nil {
		return nil, err
	}
	return model.Resource(kv), nil
}

func newCmdEventEmit() *cobra.Command {
	var (
		resource, payload string
		related           []string
	)
	c := &cobra.Command{
		Use:   "emit <event>",
		Short: "Emit an event and evaluate automations against it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "event.emit", args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			ev := &model.Event{WorkspaceID: ws, Event: args[0]}
			if ev.Resource, err = parseResource(resource); err != nil {
				return err
			}
			for _, r := range related {
				res, err := parseResource(r)
				if err != nil {
					return err
				}
				ev.Related = append(ev.Related, res)
			}
			if payload != "" {
				if err := json.Unmarshal([]byte(payload), &ev.Payload); err != nil {
					return fmt.Errorf("invalid --payload: %w", err)
				}
			}
			out, err := svc.Events.Emit(ctx, &event.EmitInput{Event: ev})
			if err != nil {
				return err
			}
			con := console(cmd)
			con.Success("Emitted %s (%s).", out.Event.Event, out.Event.ID)
			for _, f := range out.Fired {
				con.Printf("  fired %s (count %d)\n", f.Automation, f.Count)
			}
			for _, e := range out.ActionErrors {
				con.Warn("  action failed: %s", e)
			}
			return nil
		},
	}
	f := c.Flags()
	f.StringVarP(&resource, "resource", "r", "", "Resource labels k=v,k=v; must include "+model.LabelResourceID)
	f.StringArrayVar(&related, "related", nil, "Related resource labels k=v,k=v (repeatable)")
	f.StringVar(&payload, "payload", "", "Event payload as a JSON object")
	return c
}

func newCmdEventList() *cobra.Command {
	var in event.ListInput
	c := &cobra.Command{
		Use:   "ls",
		Short: "List events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in.WorkspaceID = ws
			out, err := svc.Events.List(cmd.Context(), &in)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(out.Events))
			for _, e := range out.Events {
				occurred := e.Occurred
				rows = append(rows, []string{e.ID, formatTime(&occurred), e.Event, e.Resource.ID()})
			}
			console(cmd).Table([]string{"id", "occurred", "event", "resource"}, rows)
			return nil
		},
	}
	f := c.Flags()
	f.StringVar(&in.Prefix, "prefix", "", "Only events whose name starts with this")
	f.StringVar(&in.ResourceID, "resource-id", "", "Only events about this resource")
	f.IntVar(&in.Limit, "limit", 50, "Maximum number of events; 0 lists all")
	return c
}

func newCmdEventInspect() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <id>",
		Short: "Print an event as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Events.Get(cmd.Context(), &event.GetInput{WorkspaceID: ws, ID: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd, out.Event)
		},
	}
}
