package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kompox/flowops/internal/logging"
	"github.com/kompox/flowops/internal/services"
	"github.com/kompox/flowops/usecase/event"
	"github.com/kompox/flowops/usecase/schedule"
)

// defaultTickInterval is how often proactive automations are checked.
const defaultTickInterval = 5 * time.Second

func newCmdScheduler() *cobra.Command {
	c := &cobra.Command{
		Use:   "scheduler",
		Short: "Create scheduled flow runs of deployments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(newCmdSchedulerRun())
	return c
}

func newCmdSchedulerRun() *cobra.Command {
	var (
		in             schedule.ScheduleRunsInput
		interval, tick time.Duration
		once, allWS    bool
	)
	c := &cobra.Command{
		Use:   "run",
		Short: "Schedule runs of active deployments and evaluate proactive automations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "scheduler.run", "")
			defer func() { cleanup(err) }()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			if !allWS {
				in.WorkspaceID = ws
			}
			if once {
				out, err := svc.Scheduler.ScheduleRuns(ctx, &in)
				if err != nil {
					return err
				}
				if _, err := svc.Events.Tick(ctx, &event.TickInput{}); err != nil {
					return err
				}
				console(cmd).Success("Scheduled %d flow run(s) across %d deployment(s).", len(out.Created), out.Deployments)
				return nil
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			console(cmd).Panel("Scheduler started (interval %s).", interval)
			return runBackground(ctx, svc, &in, interval, tick)
		},
	}
	f := c.Flags()
	f.DurationVar(&interval, "interval", schedule.DefaultInterval, "Scheduling interval")
	f.DurationVar(&tick, "tick", defaultTickInterval, "Proactive automation check interval")
	f.DurationVar(&in.Horizon, "horizon", schedule.DefaultHorizon, "How far ahead runs are created")
	f.IntVar(&in.Max, "max", schedule.DefaultMaxRuns, "Maximum scheduled runs per deployment")
	f.BoolVar(&once, "once", false, "Run a single pass and exit")
	f.BoolVar(&allWS, "all-workspaces", false, "Schedule deployments of every workspace")
	return c
}

// runBackground runs the scheduler and the proactive trigger loop until ctx is done.
func runBackground(ctx context.Context, svc *services.Services, in *schedule.ScheduleRunsInput, interval, tick time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Scheduler.Run(ctx, interval, in)
	})
	g.Go(func() error {
		if tick <= 0 {
			tick = defaultTickInterval
		}
		logger := logging.FromContext(ctx)
		t := time.NewTicker(tick)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				if _, err := svc.Events.Tick(ctx, &event.TickInput{}); err != nil {
					logger.Error(ctx, "proactive trigger pass failed", "err", err)
				}
			}
		}
	})
	return g.Wait()
}
