package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/terminal"
	"github.com/kompox/flowops/usecase/automation"
)

// automationSpec is the file form of an automation. Within is a Go duration string.
type automationSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Enabled     *bool          `json:"enabled,omitempty"`
	Trigger     triggerSpec    `json:"trigger"`
	Actions     []model.Action `json:"actions"`
}

type triggerSpec struct {
	Match        map[string]string `json:"match,omitempty"`
	MatchRelated map[string]string `json:"match_related,omitempty"`
	Expect       []string          `json:"expect,omitempty"`
	After        []string          `json:"after,omitempty"`
	ForEach      []string          `json:"for_each,omitempty"`
	Posture      model.Posture     `json:"posture"`
	Threshold    int               `json:"threshold"`
	Within       string            `json:"within,omitempty"`
}

func (t triggerSpec) trigger() (model.EventTrigger, error) {
	tr := model.EventTrigger{
		Match:        t.Match,
		MatchRelated: t.MatchRelated,
		Expect:       t.Expect,
		After:        t.After,
		ForEach:      t.ForEach,
		Posture:      t.Posture,
		Threshold:    t.Threshold,
	}
	if tr.Posture == "" {
		tr.Posture = model.PostureReactive
	}
	if tr.Threshold == 0 {
		tr.Threshold = 1
	}
	if t.Within != "" {
		d, err := time.ParseDuration(t.Within)
		if err != nil {
			return tr, fmt.Errorf("trigger.within: %w", err)
		}
		tr.Within = d
	}
	return tr, nil
}

func newCmdAutomation() *cobra.Command {
	c := &cobra.Command{
		Use:     "automation",
		Aliases: []string{"auto"},
		Short:   "Manage event-driven automations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(newCmdAutomationCreate())
	c.AddCommand(newCmdAutomationList())
	c.AddCommand(newCmdAutomationInspect())
	c.AddCommand(newCmdAutomationEnable(true))
	c.AddCommand(newCmdAutomationEnable(false))
	c.AddCommand(newCmdAutomationDelete())
	return c
}

func newCmdAutomationCreate() *cobra.Command {
	var file string
	c := &cobra.Command{
		Use:   "create -f <file>",
		Short: "Create an automation from a YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var spec automationSpec
			if err := readSpec(cmd, file, &spec); err != nil {
				return err
			}
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "automation.create", spec.Name)
			defer func() { cleanup(err) }()
			tr, err := spec.Trigger.trigger()
			if err != nil {
				return err
			}
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			enabled := spec.Enabled == nil || *spec.Enabled
			out, err := svc.Automations.Create(ctx, &automation.CreateInput{
				WorkspaceID: ws,
				Name:        spec.Name,
				Description: spec.Description,
				Enabled:     enabled,
				Trigger:     tr,
				Actions:     spec.Actions,
			})
			if err != nil {
				return err
			}
			console(cmd).Success("Created automation %q (%s).", out.Automation.Name, out.Automation.ID)
			return nil
		},
	}
	c.Flags().StringVarP(&file, "file", "f", "", "Automation file; - reads stdin")
	return c
}

func newCmdAutomationList() *cobra.Command {
	var enabledOnly bool
	c := &cobra.Command{
		Use:   "ls",
		Short: "List automations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Automations.List(cmd.Context(), &automation.ListInput{WorkspaceID: ws, EnabledOnly: enabledOnly})
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(out.Automations))
			for _, a := range out.Automations {
				rows = append(rows, []string{a.ID, a.Name, string(a.Trigger.Posture), strings.Join(a.Trigger.Expect, ","), fmt.Sprint(len(a.Actions)), fmt.Sprint(a.Enabled)})
			}
			console(cmd).Table([]string{"id", "name", "posture", "expect", "actions", "enabled"}, rows)
			return nil
		},
	}
	c.Flags().BoolVar(&enabledOnly, "enabled", false, "Only enabled automations")
	return c
}

func newCmdAutomationInspect() *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "inspect <name|id>",
		Short: "Show an automation with its trigger and actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Automations.Get(cmd.Context(), &automation.GetInput{WorkspaceID: ws, Ref: args[0]})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, out.Automation)
			}
			console(cmd).PrintTree(automationTree(out.Automation))
			return nil
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "Print the automation as JSON")
	return c
}

func automationTree(a *model.Automation) terminal.Tree {
	state := "enabled"
	if !a.Enabled {
		state = "disabled"
	}
	t := terminal.NewTree(fmt.Sprintf("%s (%s)", a.Name, state))
	tr := a.Trigger
	trig := t.AddBranch(fmt.Sprintf("trigger %s threshold=%d", tr.Posture, tr.Threshold))
	if tr.Within > 0 {
		trig.AddNode("within " + tr.Within.String())
	}
	addList := func(label string, items []string) {
		if len(items) > 0 {
			trig.AddNode(label + " " + strings.Join(items, ", "))
		}
	}
	addList("expect", tr.Expect)
	addList("after", tr.After)
	addList("for_each", tr.ForEach)
	addList("match", sortedLabels(tr.Match))
	addList("match_related", sortedLabels(tr.MatchRelated))
	acts := t.AddBranch("actions")
	for _, act := range a.Actions {
		var detail []string
		for _, kv := range [][2]string{
			{"deployment", act.DeploymentID},
			{"automation", act.AutomationID},
			{"state", string(act.State)},
			{"title", act.Title},
			{"severity", act.Severity},
		} {
			if kv[1] != "" {
				detail = append(detail, kv[0]+"="+kv[1])
			}
		}
		acts.AddNode(strings.TrimSpace(act.Type + " " + strings.Join(detail, " ")))
	}
	return t
}

func sortedLabels(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func newCmdAutomationEnable(enable bool) *cobra.Command {
	use := "disable"
	if enable {
		use = "enable"
	}
	return &cobra.Command{
		Use:   use + " <name|id>",
		Short: "Toggle whether an automation reacts to events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "automation."+use, args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in := &automation.EnableInput{WorkspaceID: ws, Ref: args[0]}
			if enable {
				_, err = svc.Automations.Enable(ctx, in)
			} else {
				_, err = svc.Automations.Disable(ctx, in)
			}
			if err != nil {
				return err
			}
			console(cmd).Success("Automation %q %sd.", args[0], use)
			return nil
		},
	}
}

func newCmdAutomationDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete an automation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "automation.delete", args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			if _, err := svc.Automations.Delete(ctx, &automation.DeleteInput{WorkspaceID: ws, Ref: args[0]}); err != nil {
				return err
			}
			console(cmd).Success("Deleted automation %q.", args[0])
			return nil
		},
	}
}
