// Package apperrors defines the typed error families the monitor raises at
// its process boundaries: configuration failures, persistence failures, and
// scheduler anomalies. Each type carries enough context for main to pick the
// right exit code and log line without re-parsing error strings.
package apperrors

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// ConfigurationError is fatal at startup: a malformed document, a missing
// required field, a failed cross-field rule, or an I/O error reading the
// config file. Validation accumulates every failure instead of
// short-circuiting, so Fields may hold more than one entry.
type ConfigurationError struct {
	Path   string
	Fields []string
	Cause  error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "configuration error in %q", e.Path)
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Fields, "; "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

// NewConfigurationError wraps cause (if any) and attaches the accumulated
// field-level error messages.
func NewConfigurationError(path string, fields []string, cause error) *ConfigurationError {
	if cause != nil {
		cause = errors.Wrap(cause, "load configuration")
	}
	return &ConfigurationError{Path: path, Fields: fields, Cause: cause}
}

// PersistenceError is fatal: the historical log append or the snapshot
// rewrite failed. Data-integrity outweighs availability here, so the
// process always exits non-zero on this error (see internal/lifecycle).
type PersistenceError struct {
	Operation string // "history_append" or "snapshot_publish"
	Target    string
	Cause     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s (%s): %v", e.Operation, e.Target, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// NewPersistenceError wraps cause with the operation/target context.
func NewPersistenceError(operation, target string, cause error) *PersistenceError {
	return &PersistenceError{
		Operation: operation,
		Target:    target,
		Cause:     errors.Wrapf(cause, "%s %s", operation, target),
	}
}

// SchedulerAnomaly is logged, never fatal: a task was rejected by the worker
// pool, or a worker recovered from a panic while executing a probe. The
// cycle continues with whatever outcomes did settle.
type SchedulerAnomaly struct {
	ServiceName string
	Cause       error
}

func (e *SchedulerAnomaly) Error() string {
	return fmt.Sprintf("scheduler anomaly for service %q: %v", e.ServiceName, e.Cause)
}

func (e *SchedulerAnomaly) Unwrap() error { return e.Cause }
