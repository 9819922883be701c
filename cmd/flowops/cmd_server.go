package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kompox/flowops/adapters/api"
	"github.com/kompox/flowops/internal/logging"
	"github.com/kompox/flowops/internal/metrics"
	"github.com/kompox/flowops/usecase/schedule"
)

func newCmdServer() *cobra.Command {
	c := &cobra.Command{
		Use:   "server",
		Short: "Run the FlowOps API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	c.AddCommand(newCmdServerStart())
	return c
}

func newCmdServerStart() *cobra.Command {
	var (
		addr           string
		noScheduler    bool
		interval, tick time.Duration
	)
	c := &cobra.Command{
		Use:   "start",
		Short: "Serve the REST API with the scheduler and proactive automations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "server.start", "")
			defer func() { cleanup(err) }()
			if addr == "" {
				addr = settingsFrom(ctx).ServerAddr
			}
			svc, err := buildServices(cmd, metrics.New())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.New(svc),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
			}
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			if !noScheduler {
				g.Go(func() error {
					return runBackground(gctx, svc, &schedule.ScheduleRunsInput{}, interval, tick)
				})
			}
			console(cmd).Panel("Serving the FlowOps API at http://%s/api", addr)
			logging.FromContext(ctx).Info(ctx, "server listening", "addr", addr)
			return g.Wait()
		},
	}
	f := c.Flags()
	f.StringVar(&addr, "addr", "", "Listen address (default from the server_addr setting)")
	f.BoolVar(&noScheduler, "no-scheduler", false, "Do not run the scheduler and proactive automation loops")
	f.DurationVar(&interval, "scheduler-interval", schedule.DefaultInterval, "Scheduling interval")
	f.DurationVar(&tick, "tick", defaultTickInterval, "Proactive automation check interval")
	return c
}
