package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kompox/flowops/internal/terminal"
	"github.com/kompox/flowops/usecase/worker"
)

func newCmdWorker() *cobra.Command {
	c := &cobra.Command{
		Use:   "worker",
		Short: "Run workers that submit flow runs to infrastructure",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(newCmdWorkerStart())
	return c
}

func newCmdWorkerStart() *cobra.Command {
	var (
		pool     string
		limit    int
		interval time.Duration
		once     bool
	)
	c := &cobra.Command{
		Use:   "start",
		Short: "Poll a work pool and submit its due flow runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "worker.start", pool)
			defer func() { cleanup(err) }()
			terminal.QuietKlog()
			svc, ws, err := scoped(cmd)
			if err != nil {
				return err
			}
			w := svc.Worker(ws, pool, limit)
			if once {
				out, err := w.Poll(ctx)
				if err != nil {
					return err
				}
				if err := w.Wait(); err != nil {
					return err
				}
				con := console(cmd)
				if out.Skipped != "" {
					con.Warn("Nothing submitted: %s", out.Skipped)
					return nil
				}
				con.Success("Submitted %d flow run(s) from work pool %q.", len(out.Submitted), pool)
				return nil
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			console(cmd).Panel("Worker started for work pool %q (interval %s, limit %d).", pool, interval, limit)
			return w.Run(ctx, interval)
		},
	}
	f := c.Flags()
	f.StringVarP(&pool, "pool", "p", "", "Work pool name or ID")
	f.IntVar(&limit, "limit", worker.DefaultLimit, "Maximum concurrent submissions")
	f.DurationVar(&interval, "interval", worker.DefaultPollInterval, "Poll interval")
	f.BoolVar(&once, "once", false, "Poll once, wait for submissions and exit")
	_ = c.MarkFlagRequired("pool")
	return c
}
