// Package lifecycle installs signal handlers and drives the orchestrator's
// run loop through a controlled shutdown: stop scheduling new cycles, let
// in-flight probes finish on their own deadlines, then exit.
package lifecycle

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oklog/run"

	"github.com/opswatch/sentinel/internal/orchestrator"
)

// Orchestrator is the subset of orchestrator.Orchestrator the Controller
// needs, kept narrow so tests can substitute a fake loop.
type Orchestrator interface {
	Run(scheduleCtx, probeCtx context.Context) error
}

var _ Orchestrator = (*orchestrator.Orchestrator)(nil)

// Controller wires signal handling around an Orchestrator using an
// oklog/run actor group: the first actor to return (the orchestrator loop
// exiting, or a signal arriving) triggers every other actor's interrupt.
type Controller struct {
	orch   Orchestrator
	logger *slog.Logger
}

// New builds a Controller for orch.
func New(orch Orchestrator, logger *slog.Logger) *Controller {
	return &Controller{orch: orch, logger: logger}
}

// Run blocks until the orchestrator loop exits or a termination/interrupt
// signal is received, then drains and returns the process exit code: 0 for
// a clean shutdown, 1 if the orchestrator loop itself failed (a persistence
// error).
func (c *Controller) Run(parent context.Context) int {
	scheduleCtx, cancelSchedule := context.WithCancel(parent)
	defer cancelSchedule()
	probeCtx := context.Background()

	var g run.Group

	g.Add(func() error {
		return c.orch.Run(scheduleCtx, probeCtx)
	}, func(error) {
		cancelSchedule()
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	g.Add(func() error {
		sig, ok := <-sigCh
		if !ok || sig == nil {
			return nil
		}
		c.logger.Info("shutdown signal received, draining in-flight probes", "signal", sig.String())
		return nil
	}, func(error) {
		signal.Stop(sigCh)
		close(sigCh)
	})

	if err := g.Run(); err != nil {
		c.logger.Error("monitor exited with a fatal error", "error", err)
		return 1
	}
	return 0
}
