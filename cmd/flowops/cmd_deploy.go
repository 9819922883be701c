package main

import (
	"github.com/spf13/cobra"

	"github.com/kompox/flowops/config/project"
	"github.com/kompox/flowops/internal/terminal"
	"github.com/kompox/flowops/usecase/deployment"
)

func newCmdDeploy() *cobra.Command {
	var (
		opts   deployment.DeployOptions
		params string
	)
	c := &cobra.Command{
		Use:   "deploy [path/to/file.py:flow_func]",
		Short: "Create or update deployments from the project in the current directory",
		Long: `Deploy a flow from this project by creating a deployment.

Should be run from a project root directory. deployment.yml is merged over the
default deployment template, build and push steps run, and their outputs
template the deployment before it is stored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if len(args) == 1 {
				opts.Entrypoint = args[0]
			}
			if cmd.Flags().Changed("params") {
				opts.Params = &params
			}
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "deploy", opts.Entrypoint+opts.FlowName)
			defer func() { cleanup(err) }()

			con := console(cmd)
			proj := project.New(appFs, ".")
			def, found, err := proj.LoadDeployment()
			if err != nil {
				return err
			}
			if !found {
				con.Warn("No %s file found, only provided CLI options will be used.", project.DeploymentFileName)
				def = nil
			}
			projectFile, err := proj.LoadProject()
			if err != nil {
				return err
			}
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Deployments.Deploy(ctx, &deployment.DeployInput{
				WorkspaceID: ws,
				Definition:  def,
				Project:     projectFile,
				Options:     opts,
			})
			if out != nil {
				printDeployOutput(con, out)
			}
			return err
		},
	}
	f := c.Flags()
	f.StringVarP(&opts.FlowName, "flow", "f", "", "The name of a registered flow to create a deployment for")
	f.StringArrayVarP(&opts.Names, "name", "n", nil, "The name to give the deployment")
	f.StringVarP(&opts.Description, "description", "d", "", "The description to give the deployment (defaults to the flow description)")
	f.StringVar(&opts.Version, "version", "", "A version to give the deployment")
	f.StringArrayVarP(&opts.Tags, "tag", "t", nil, "One or more optional tags to apply to the deployment")
	f.StringVarP(&opts.WorkPoolName, "pool", "p", "", "The work pool that will handle this deployment's runs")
	f.StringVarP(&opts.WorkQueueName, "work-queue", "q", "", "The work queue that will handle this deployment's runs")
	f.StringArrayVarP(&opts.Variables, "variable", "v", nil, "Job variable override in the format key=value")
	f.StringVar(&opts.Cron, "cron", "", "A cron string for a cron schedule")
	f.IntVar(&opts.Interval, "interval", 0, "An interval in seconds for an interval schedule")
	f.StringVar(&opts.IntervalAnchor, "anchor-date", "", "The anchor date for an interval schedule")
	f.StringVar(&opts.RRule, "rrule", "", "An RRule for an rrule schedule")
	f.StringVar(&opts.Timezone, "timezone", "", "Deployment schedule timezone e.g. 'America/New_York'")
	f.StringArrayVar(&opts.Param, "param", nil, "A parameter override; values are parsed as JSON e.g. --param answer=42")
	f.StringVar(&params, "params", "", `Parameter overrides as a JSON object e.g. --params '{"answer": 42}'`)
	f.BoolVar(&opts.All, "all", false, "Deploy all deployments of a multi-deployment file")
	return c
}

func printDeployOutput(con *terminal.Console, out *deployment.DeployOutput) {
	for _, m := range out.Messages {
		switch m.Level {
		case deployment.MessageWarning:
			con.Warn("%s", m.Text)
		case deployment.MessagePanel:
			con.Panel("%s", m.Text)
		default:
			con.Printf("%s\n", m.Text)
		}
	}
	for _, r := range out.Results {
		con.Success("Deployment '%s' successfully %s with id '%s'.", r.FullName, createdOrUpdated(r.Created), r.Deployment.ID)
		if r.HintWarning {
			con.Error("\n%s", r.WorkerHint)
		} else {
			con.Printf("\n%s\n", r.WorkerHint)
		}
	}
}

func createdOrUpdated(created bool) string {
	if created {
		return "created"
	}
	return "updated"
}
