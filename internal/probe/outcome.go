// Package probe performs a single HTTP probe against one service and
// classifies the result. Executor is a pure function of its inputs plus the
// network: it holds no state between calls.
package probe

import "time"

// Status is the classification a probe (or a service's running state)
// settles into.
type Status string

const (
	// StatusPending is the initial runtime status before a service's first
	// probe completes. It is never produced by the Executor itself.
	StatusPending  Status = "PENDING"
	StatusPass     Status = "PASS"
	StatusDegraded Status = "DEGRADED"
	StatusFail     Status = "FAIL"
)

// Outcome is one immutable probe result.
type Outcome struct {
	ServiceName            string
	Timestamp              time.Time
	Method                 string
	Status                 Status
	LatencyMS              int64
	HTTPStatusCode         int // 0 means no response was received
	ExpectedStatus         int
	TextValidationResult   *bool
	HeaderValidationResult map[string]bool
	FailureReason          string
	CorrelationID          string
}
