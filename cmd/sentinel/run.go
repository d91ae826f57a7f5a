package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opswatch/sentinel/internal/config"
	"github.com/opswatch/sentinel/internal/history"
	"github.com/opswatch/sentinel/internal/lifecycle"
	"github.com/opswatch/sentinel/internal/orchestrator"
	"github.com/opswatch/sentinel/internal/snapshot"
	"github.com/opswatch/sentinel/pkg/logging"
)

var once bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the monitor loop",
	Long: `run loads the configuration, then probes every configured service on
its own cadence until a termination signal is received. Use --once to run a
single cycle and exit, which is how CI and smoke tests exercise the monitor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd, once)
	},
}

func init() {
	runCmd.Flags().BoolVar(&once, "once", false, "probe every service exactly once, then exit")
}

// runMonitor wires the full dependency graph and either runs a single cycle
// (once) or drives the scheduling loop until a shutdown signal arrives.
func runMonitor(cmd *cobra.Command, once bool) error {
	env := config.LoadEnvSettings()

	logger := logging.New(logging.Config{
		Level:  env.LogLevel,
		Format: "json",
		Output: "stdout",
	})

	preferred := configFlag
	if preferred == "" {
		preferred = env.ConfigFile
	}

	path, tried, err := config.ResolveConfigPath(preferred)
	if err != nil {
		return fmt.Errorf("resolving configuration path (tried %v): %w", tried, err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger.Info("configuration loaded", "path", path, "service_count", len(cfg.Pings))
	for _, svc := range cfg.Pings {
		headers := make(map[string]string, len(svc.Headers))
		for _, h := range svc.Headers {
			headers[h.Name] = h.Value
		}
		logger.Debug("service configured",
			"name", svc.Name,
			"resource", svc.Resource,
			"headers", logging.RedactHeaders(headers),
		)
	}

	writer := history.NewWriter(cfg.Settings.HistoryFile)
	publisher := snapshot.NewPublisher(env.DataFile, env.APIFile)
	orch := orchestrator.New(cfg, writer, publisher, logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if once {
		summary, err := orch.RunOnce(ctx)
		if err != nil {
			return err
		}
		logger.Info("single cycle complete",
			"total", summary.Total,
			"pass", summary.PassCount,
			"degraded", summary.DegradedCount,
			"fail", summary.FailCount,
			"anomalies", summary.AnomalyCount,
			"duration_ms", summary.DurationMS,
		)
		return nil
	}

	controller := lifecycle.New(orch, logger)
	if code := controller.Run(ctx); code != 0 {
		return fmt.Errorf("monitor exited with code %d", code)
	}
	return nil
}
