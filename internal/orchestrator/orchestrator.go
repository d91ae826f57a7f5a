// Package orchestrator drives one probe cycle end to end: snapshot the
// service list, submit a batch to the worker pool, fold outcomes into
// runtime state, persist the history log, and publish the status snapshot.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/opswatch/sentinel/internal/apperrors"
	"github.com/opswatch/sentinel/internal/config"
	"github.com/opswatch/sentinel/internal/history"
	"github.com/opswatch/sentinel/internal/probe"
	"github.com/opswatch/sentinel/internal/snapshot"
	"github.com/opswatch/sentinel/internal/workerpool"
)

// maxRecentCycles bounds the in-memory CycleSummary ring buffer kept for
// CLI and test introspection.
const maxRecentCycles = 20

// CycleSummary describes the outcome of one orchestrator batch.
type CycleSummary struct {
	Total         int
	PassCount     int
	DegradedCount int
	FailCount     int
	PendingCount  int
	AnomalyCount  int
	DurationMS    int64
	Timestamp     time.Time
	Outcomes      []probe.Outcome
}

// Orchestrator owns the per-service runtime state and the single CSV writer
// handle.
type Orchestrator struct {
	settings config.GlobalSettings
	defs     []config.ServiceDefinition
	order    []string

	pool     *workerpool.Pool
	executor *probe.Executor
	writer   *history.Writer
	pub      *snapshot.Publisher
	logger   *slog.Logger

	mu     sync.Mutex
	states map[string]*RuntimeState
	recent []CycleSummary
}

// New builds an Orchestrator for cfg, wiring the worker pool sized to the
// resolved worker_pool_size, an HTTP probe Executor, the history Writer, and
// the snapshot Publisher.
func New(cfg *config.Configuration, writer *history.Writer, pub *snapshot.Publisher, logger *slog.Logger) *Orchestrator {
	states := make(map[string]*RuntimeState, len(cfg.Pings))
	order := make([]string, 0, len(cfg.Pings))

	for _, def := range cfg.Pings {
		eff := config.Merge(cfg.Settings, def)
		// nextDue stays the zero Time: every service is due on the first cycle.
		states[def.Name] = newRuntimeState(def.Name, def.Tags, eff.Interval)
		order = append(order, def.Name)
	}

	return &Orchestrator{
		settings: cfg.Settings,
		defs:     cfg.Pings,
		order:    order,
		pool:     workerpool.New(cfg.Settings.WorkerPoolSize),
		executor: probe.NewExecutor(),
		writer:   writer,
		pub:      pub,
		logger:   logger,
		states:   states,
	}
}

// RunOnce runs exactly one cycle, regardless of per-service scheduling,
// probing every configured service. It is what the CLI's --once flag and
// property-based tests use.
func (o *Orchestrator) RunOnce(ctx context.Context) (CycleSummary, error) {
	o.mu.Lock()
	for _, s := range o.states {
		s.nextDue = time.Time{}
	}
	o.mu.Unlock()
	return o.runDueCycle(ctx, true)
}

// Run drives the scheduling loop until scheduleCtx is cancelled: a
// fine-grained ticker wakes the orchestrator to check which services are
// due, submits that batch, and reschedules each probed service's next due
// time. A zero-row batch (nothing due) is skipped without touching history
// or the snapshot.
//
// probeCtx, not scheduleCtx, bounds the in-flight probes: when scheduleCtx
// is cancelled for a graceful shutdown, the cycle already in progress keeps
// running on probeCtx until every probe settles on its own per-service
// timeout. Run only stops scheduling new cycles; it never aborts one
// already under way.
func (o *Orchestrator) Run(scheduleCtx, probeCtx context.Context) error {
	tick := o.tickInterval()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	if _, err := o.runDueCycle(probeCtx, true); err != nil {
		return err
	}

	for {
		select {
		case <-scheduleCtx.Done():
			return nil
		case <-ticker.C:
			if _, err := o.runDueCycle(probeCtx, false); err != nil {
				return err
			}
		}
	}
}

func (o *Orchestrator) tickInterval() time.Duration {
	interval := time.Duration(o.settings.CheckIntervalSeconds) * time.Second
	if interval > time.Second {
		return time.Second
	}
	return interval
}

// RecentCycles returns the last few CycleSummaries, most recent last.
func (o *Orchestrator) RecentCycles() []CycleSummary {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]CycleSummary, len(o.recent))
	copy(out, o.recent)
	return out
}

func (o *Orchestrator) runDueCycle(ctx context.Context, force bool) (CycleSummary, error) {
	start := time.Now()
	now := start

	tasks, dueNames := o.buildBatch(now)
	if len(tasks) == 0 && !force {
		return CycleSummary{Timestamp: now}, nil
	}

	results := o.pool.Run(ctx, tasks)

	var outcomes []probe.Outcome
	var anomalies int
	for _, r := range results {
		if r.Err != nil {
			anomalies++
			o.logger.Warn("scheduler anomaly",
				"service_name", r.Task.ServiceName,
				"error", (&apperrors.SchedulerAnomaly{ServiceName: r.Task.ServiceName, Cause: r.Err}).Error(),
			)
			continue
		}
		outcomes = append(outcomes, r.Outcome)
	}

	o.applyOutcomes(outcomes, now)

	records := make([]history.Record, 0, len(outcomes))
	for _, oc := range outcomes {
		records = append(records, history.RecordFromOutcome(oc))
	}
	if err := o.writer.Append(records); err != nil {
		return CycleSummary{}, err
	}

	if err := o.publishSnapshot(); err != nil {
		return CycleSummary{}, err
	}

	o.rescheduleDue(dueNames, now)

	summary := o.summarize(outcomes, anomalies, start)
	o.recordSummary(summary)

	return summary, nil
}

func (o *Orchestrator) buildBatch(now time.Time) ([]workerpool.Task, []string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var tasks []workerpool.Task
	var due []string

	defsByName := make(map[string]config.ServiceDefinition, len(o.defs))
	for _, d := range o.defs {
		defsByName[d.Name] = d
	}

	for _, name := range o.order {
		state := o.states[name]
		if !state.isDue(now) {
			continue
		}
		def := defsByName[name]
		eff := config.Merge(o.settings, def)
		due = append(due, name)
		tasks = append(tasks, workerpool.Task{
			ServiceName: name,
			Run: func(ctx context.Context) probe.Outcome {
				return o.executor.Probe(ctx, eff)
			},
		})
	}

	return tasks, due
}

func (o *Orchestrator) applyOutcomes(outcomes []probe.Outcome, now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, oc := range outcomes {
		state, ok := o.states[oc.ServiceName]
		if !ok {
			continue
		}
		previous := state.apply(oc)
		if previous != oc.Status {
			o.logger.Info("service status transition",
				"service_name", oc.ServiceName,
				"previous_status", string(previous),
				"new_status", string(oc.Status),
				"consecutive_failures", state.ConsecutiveFailures,
			)
		}
	}
}

func (o *Orchestrator) rescheduleDue(names []string, now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, name := range names {
		if state, ok := o.states[name]; ok {
			state.reschedule(now)
		}
	}
}

func (o *Orchestrator) publishSnapshot() error {
	o.mu.Lock()
	projections := make([]snapshot.Projection, 0, len(o.order))
	for _, name := range o.order {
		s := o.states[name]
		projections = append(projections, toProjection(s))
	}
	o.mu.Unlock()

	projections = snapshot.WithInsertionOrder(projections)
	return o.pub.Publish(projections)
}

func toProjection(s *RuntimeState) snapshot.Projection {
	p := snapshot.Projection{
		Name:          s.Name,
		Status:        string(s.CurrentStatus),
		Tags:          s.Tags,
		FailureReason: s.LastFailureReason,
	}
	if !s.LastCheckTime.IsZero() {
		latency := s.LastLatencyMS
		p.LatencyMS = &latency
		ts := snapshot.FormatTimestamp(s.LastCheckTime)
		p.LastCheckTime = &ts
		httpStatus := s.LastHTTPStatusCode
		p.HTTPStatusCode = &httpStatus
	}
	return p
}

func (o *Orchestrator) summarize(outcomes []probe.Outcome, anomalies int, start time.Time) CycleSummary {
	summary := CycleSummary{
		Total:        len(outcomes),
		AnomalyCount: anomalies,
		DurationMS:   time.Since(start).Milliseconds(),
		Timestamp:    start.UTC(),
		Outcomes:     outcomes,
	}
	for _, oc := range outcomes {
		switch oc.Status {
		case probe.StatusPass:
			summary.PassCount++
		case probe.StatusDegraded:
			summary.DegradedCount++
		case probe.StatusFail:
			summary.FailCount++
		}
	}

	o.mu.Lock()
	for _, s := range o.states {
		if s.CurrentStatus == probe.StatusPending {
			summary.PendingCount++
		}
	}
	o.mu.Unlock()

	return summary
}

func (o *Orchestrator) recordSummary(summary CycleSummary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recent = append(o.recent, summary)
	if len(o.recent) > maxRecentCycles {
		o.recent = o.recent[len(o.recent)-maxRecentCycles:]
	}
}
