package main

import (
	"fmt"

	"github.com/spf13/cobra"

	infradrv "github.com/kompox/flowops/adapters/drivers/infra"
	"github.com/kompox/flowops/adapters/drivers/infra/kubernetes"
	"github.com/kompox/flowops/adapters/kube"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/terminal"
	"github.com/kompox/flowops/usecase/workpool"
)

func newCmdWorkPool() *cobra.Command {
	c := &cobra.Command{
		Use:     "work-pool",
		Aliases: []string{"pool"},
		Short:   "Manage work pools and their queues",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(newCmdWorkPoolCreate())
	c.AddCommand(newCmdWorkPoolList())
	c.AddCommand(newCmdWorkPoolInspect())
	c.AddCommand(newCmdWorkPoolPause(true))
	c.AddCommand(newCmdWorkPoolPause(false))
	c.AddCommand(newCmdWorkPoolDelete())
	c.AddCommand(newCmdWorkPoolQueue())
	c.AddCommand(newCmdWorkPoolPreview())
	return c
}

// baseJobTemplate reads the template flags of work pool create.
func baseJobTemplate(cmd *cobra.Command, templateFile, manifestFile, customFile string) (map[string]any, error) {
	tpl := map[string]any{}
	if templateFile != "" {
		if err := readSpec(cmd, templateFile, &tpl); err != nil {
			return nil, err
		}
	}
	if manifestFile != "" {
		m, err := kube.JobFromFile(appFs, manifestFile)
		if err != nil {
			return nil, err
		}
		tpl["job_manifest"] = map[string]any(m)
	}
	if customFile != "" {
		ops, err := kube.CustomizationsFromFile(appFs, customFile)
		if err != nil {
			return nil, err
		}
		tpl["customizations"] = ops
	}
	if len(tpl) == 0 {
		return nil, nil
	}
	return tpl, nil
}

func newCmdWorkPoolCreate() *cobra.Command {
	var (
		in                                     workpool.CreateInput
		templateFile, manifestFile, customFile string
	)
	c := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a work pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "work-pool.create", args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in.WorkspaceID, in.Name = ws, args[0]
			if in.BaseJobTemplate, err = baseJobTemplate(cmd, templateFile, manifestFile, customFile); err != nil {
				return err
			}
			out, err := svc.WorkPools.Create(ctx, &in)
			if err != nil {
				return err
			}
			console(cmd).Success("Created work pool %q of type %q.", out.WorkPool.Name, out.WorkPool.Type)
			return nil
		},
	}
	f := c.Flags()
	f.StringVar(&in.Type, "type", model.WorkPoolTypeProcess, "Work pool type (process|kubernetes)")
	f.StringVar(&in.Description, "description", "", "Work pool description")
	f.IntVar(&in.ConcurrencyLimit, "concurrency-limit", 0, "Maximum PENDING and RUNNING runs; 0 is unlimited")
	f.BoolVar(&in.Paused, "paused", false, "Create the pool paused")
	f.StringVar(&templateFile, "base-job-template", "", "Base job template file (YAML or JSON)")
	f.StringVar(&manifestFile, "job-manifest", "", "Kubernetes job manifest file (YAML or JSON)")
	f.StringVar(&customFile, "customizations", "", "RFC 6902 patch file applied to the job (YAML or JSON)")
	return c
}

func newCmdWorkPoolList() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List work pools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.WorkPools.List(cmd.Context(), &workpool.ListInput{WorkspaceID: ws})
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(out.WorkPools))
			for _, p := range out.WorkPools {
				rows = append(rows, []string{p.ID, p.Name, p.Type, limitString(p.ConcurrencyLimit), fmt.Sprint(p.Paused)})
			}
			console(cmd).Table([]string{"id", "name", "type", "concurrency limit", "paused"}, rows)
			return nil
		},
	}
}

func newCmdWorkPoolInspect() *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "inspect <name|id>",
		Short: "Show a work pool and its queues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.WorkPools.Get(cmd.Context(), &workpool.GetInput{WorkspaceID: ws, Ref: args[0]})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, out.WorkPool)
			}
			p := out.WorkPool
			tree := terminal.NewTree(fmt.Sprintf("%s (%s)%s", p.Name, p.Type, pausedSuffix(p.Paused)))
			for _, q := range p.Queues {
				tree.AddNode(fmt.Sprintf("%s priority=%d limit=%s%s", q.Name, q.Priority, limitString(q.ConcurrencyLimit), pausedSuffix(q.Paused)))
			}
			console(cmd).PrintTree(tree)
			return nil
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "Print the pool as JSON")
	return c
}

func newCmdWorkPoolPause(pause bool) *cobra.Command {
	var queue string
	use := "resume"
	if pause {
		use = "pause"
	}
	c := &cobra.Command{
		Use:   use + " <name|id>",
		Short: "Toggle whether workers pick up runs of a pool or one of its queues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "work-pool."+use, args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in := &workpool.PauseInput{WorkspaceID: ws, Ref: args[0], Queue: queue}
			if pause {
				_, err = svc.WorkPools.Pause(ctx, in)
			} else {
				_, err = svc.WorkPools.Resume(ctx, in)
			}
			if err != nil {
				return err
			}
			target := fmt.Sprintf("work pool %q", args[0])
			if queue != "" {
				target = fmt.Sprintf("work queue %q of %s", queue, target)
			}
			console(cmd).Success("Done: %s %sd.", target, use)
			return nil
		},
	}
	c.Flags().StringVar(&queue, "queue", "", "Only this work queue")
	return c
}

func newCmdWorkPoolDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a work pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "work-pool.delete", args[0])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			if _, err := svc.WorkPools.Delete(ctx, &workpool.DeleteInput{WorkspaceID: ws, Ref: args[0]}); err != nil {
				return err
			}
			console(cmd).Success("Deleted work pool %q.", args[0])
			return nil
		},
	}
}

func newCmdWorkPoolQueue() *cobra.Command {
	c := &cobra.Command{
		Use:   "queue",
		Short: "Manage work queues of a pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	var priority, limit int
	set := &cobra.Command{
		Use:   "set <pool> <queue>",
		Short: "Create or update a work queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "work-pool.queue.set", args[0]+"/"+args[1])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			in := &workpool.QueueSetInput{WorkspaceID: ws, Ref: args[0], Name: args[1]}
			if cmd.Flags().Changed("priority") {
				in.Priority = &priority
			}
			if cmd.Flags().Changed("concurrency-limit") {
				in.ConcurrencyLimit = &limit
			}
			out, err := svc.WorkPools.QueueSet(ctx, in)
			if err != nil {
				return err
			}
			console(cmd).Success("Work queue %q %s (priority %d).", out.Queue.Name, createdOrUpdated(out.Created), out.Queue.Priority)
			return nil
		},
	}
	set.Flags().IntVar(&priority, "priority", 0, "Queue priority; lower is served first")
	set.Flags().IntVar(&limit, "concurrency-limit", 0, "Maximum PENDING and RUNNING runs; 0 is unlimited")
	c.AddCommand(set)
	c.AddCommand(&cobra.Command{
		Use:   "delete <pool> <queue>",
		Short: "Delete a work queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "work-pool.queue.delete", args[0]+"/"+args[1])
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			if _, err := svc.WorkPools.QueueDelete(ctx, &workpool.QueueDeleteInput{WorkspaceID: ws, Ref: args[0], Name: args[1]}); err != nil {
				return err
			}
			console(cmd).Success("Deleted work queue %q.", args[1])
			return nil
		},
	})
	return c
}

func newCmdWorkPoolPreview() *cobra.Command {
	var vars []string
	c := &cobra.Command{
		Use:   "preview <pool>",
		Short: "Print the Kubernetes job a run of a kubernetes pool would create",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.WorkPools.Get(cmd.Context(), &workpool.GetInput{WorkspaceID: ws, Ref: args[0]})
			if err != nil {
				return err
			}
			if out.WorkPool.Type != model.WorkPoolTypeKubernetes {
				return fmt.Errorf("work pool %q has type %q; preview needs %q", out.WorkPool.Name, out.WorkPool.Type, model.WorkPoolTypeKubernetes)
			}
			jobVars, err := jsonKeyValues(vars)
			if err != nil {
				return err
			}
			s := settingsFrom(cmd.Context())
			y, err := kubernetes.Preview(infradrv.Settings{APIURL: s.APIURL, APIDNSName: s.APIDNSName}, out.WorkPool, &model.FlowRun{JobVariables: jobVars})
			if err != nil {
				return err
			}
			console(cmd).Printf("%s", y)
			return nil
		},
	}
	c.Flags().StringArrayVarP(&vars, "job-variable", "v", nil, "Job variable override key=value")
	return c
}

func limitString(n int) string {
	if n <= 0 {
		return "-"
	}
	return fmt.Sprint(n)
}

func pausedSuffix(paused bool) string {
	if paused {
		return " [paused]"
	}
	return ""
}
