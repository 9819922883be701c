package main

import (
	"context"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	_ "github.com/kompox/flowops/adapters/drivers/infra/kubernetes"
	_ "github.com/kompox/flowops/adapters/drivers/infra/process"
	"github.com/kompox/flowops/config/settings"
	"github.com/kompox/flowops/internal/logging"
	"github.com/kompox/flowops/internal/version"
)

// appFs is the filesystem used for settings, project files and dbt profiles.
var appFs afero.Fs = afero.NewOsFs()

type settingsKey struct{}

// settingsFrom returns the settings loaded for the running command.
func settingsFrom(ctx context.Context) *settings.Settings {
	if s, ok := ctx.Value(settingsKey{}).(*settings.Settings); ok {
		return s
	}
	return &settings.Settings{Workspace: "default", LogFormat: "human", LogLevel: "INFO"}
}

func newRootCmd() *cobra.Command {
	var logFile *logging.LogFile
	cmd := &cobra.Command{
		Use:     "flowops",
		Short:   "FlowOps workflow orchestration CLI",
		Long:    "FlowOps deploys, schedules and runs flows and reacts to their events with automations.",
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("profile", "", "Settings profile (env FLOWOPS_PROFILE)")
	pf.String("db-url", "", "Database URL (env FLOWOPS_DB_URL) (sqlite:/path/to.db | memory:)")
	pf.String("workspace", "", "Workspace name or ID (env FLOWOPS_WORKSPACE)")
	pf.String("log-format", "", "Log format (human|text|json) (env FLOWOPS_LOG_FORMAT)")
	pf.String("log-level", "", "Log level (DEBUG|INFO|WARN|ERROR) (env FLOWOPS_LOG_LEVEL)")
	pf.String("log-output", "", "Log output (-|none|auto|path) (env FLOWOPS_LOG_OUTPUT)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		profile, _ := c.Flags().GetString("profile")
		s, err := settings.Load(appFs, settings.Home(), profile, c.Flags())
		if err != nil {
			return err
		}
		cfg := s.LogConfig()
		level, err := logging.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		logFile, err = logging.OpenLogFileFs(appFs, cfg, timeNow())
		if err != nil {
			return err
		}
		if cfg.Output == "auto" && cfg.RetentionDays > 0 {
			_, _ = logging.CleanupOldLogFiles(appFs, cfg.Dir, cfg.RetentionDays, timeNow())
		}
		l, err := logging.NewWithWriter(cfg.Format, level, logFile.Writer())
		if err != nil {
			return err
		}
		ctx := logging.WithLogger(c.Context(), l.With("runId", newRunID()))
		ctx = context.WithValue(ctx, settingsKey{}, s)
		c.SetContext(ctx)
		return nil
	}
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		if logFile != nil {
			return logFile.Close()
		}
		return nil
	}

	cmd.AddCommand(newCmdVersion())
	cmd.AddCommand(newCmdProfile())
	cmd.AddCommand(newCmdProject())
	cmd.AddCommand(newCmdWorkspace())
	cmd.AddCommand(newCmdFlow())
	cmd.AddCommand(newCmdDeploy())
	cmd.AddCommand(newCmdDeployment())
	cmd.AddCommand(newCmdWorkPool())
	cmd.AddCommand(newCmdFlowRun())
	cmd.AddCommand(newCmdAutomation())
	cmd.AddCommand(newCmdEvent())
	cmd.AddCommand(newCmdIncident())
	cmd.AddCommand(newCmdArtifact())
	cmd.AddCommand(newCmdWorker())
	cmd.AddCommand(newCmdScheduler())
	cmd.AddCommand(newCmdServer())
	cmd.AddCommand(newCmdDbt())
	return cmd
}

func main() {
	root := newRootCmd()
	root.SetContext(context.Background())
	executed, err := root.ExecuteC()
	if err != nil {
		ctx := root.Context()
		if executed != nil {
			ctx = executed.Context()
		}
		logging.FromContext(ctx).Errorf(ctx, "Failed: %s", err)
		os.Exit(1)
	}
}
