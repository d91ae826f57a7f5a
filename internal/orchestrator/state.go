package orchestrator

import (
	"time"

	"github.com/opswatch/sentinel/internal/probe"
)

// RuntimeState is the live, in-memory record for one service. It is created
// once at startup and mutated only by the Orchestrator at the end of a
// cycle that included this service.
type RuntimeState struct {
	Name                string
	Tags                []string
	CurrentStatus       probe.Status
	LastCheckTime       time.Time
	LastLatencyMS       int64
	LastHTTPStatusCode  int
	LastFailureReason   string
	ConsecutiveFailures int

	nextDue  time.Time
	interval time.Duration
}

// newRuntimeState builds the initial, never-yet-probed state for a service.
func newRuntimeState(name string, tags []string, interval time.Duration) *RuntimeState {
	return &RuntimeState{
		Name:          name,
		Tags:          tags,
		CurrentStatus: probe.StatusPending,
		interval:      interval,
	}
}

// apply folds a fresh outcome into the runtime state: overwrite the latest
// snapshot, and reset or increment the failure streak.
func (s *RuntimeState) apply(o probe.Outcome) (previous probe.Status) {
	previous = s.CurrentStatus
	s.CurrentStatus = o.Status
	s.LastCheckTime = o.Timestamp
	s.LastLatencyMS = o.LatencyMS
	s.LastHTTPStatusCode = o.HTTPStatusCode
	s.LastFailureReason = o.FailureReason
	if o.Status == probe.StatusFail {
		s.ConsecutiveFailures++
	} else {
		s.ConsecutiveFailures = 0
	}
	return previous
}

func (s *RuntimeState) isDue(now time.Time) bool {
	return !s.nextDue.After(now)
}

func (s *RuntimeState) reschedule(now time.Time) {
	s.nextDue = now.Add(s.interval)
}
