// Package history appends probe outcomes to a durable, append-only CSV log.
// Every failure here is fatal: the caller is expected to treat a non-nil
// error from Append as a reason to exit the process.
package history

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/opswatch/sentinel/internal/apperrors"
	"github.com/opswatch/sentinel/internal/probe"
)

var header = []string{
	"timestamp", "service_name", "status", "latency_ms",
	"http_status_code", "failure_reason", "correlation_id",
}

// Record is one row of the historical log, derived from a probe.Outcome.
type Record struct {
	Timestamp      time.Time
	ServiceName    string
	Status         probe.Status
	LatencyMS      int64
	HTTPStatusCode int
	FailureReason  string
	CorrelationID  string
}

// RecordFromOutcome projects a probe.Outcome into its persisted shape.
func RecordFromOutcome(o probe.Outcome) Record {
	return Record{
		Timestamp:      o.Timestamp,
		ServiceName:    o.ServiceName,
		Status:         o.Status,
		LatencyMS:      o.LatencyMS,
		HTTPStatusCode: o.HTTPStatusCode,
		FailureReason:  o.FailureReason,
		CorrelationID:  o.CorrelationID,
	}
}

// Writer owns the single append-only CSV file handle. It is the exclusive
// writer for that path; concurrent batches are serialised by mu.
type Writer struct {
	path string
	mu   sync.Mutex
}

// NewWriter prepares a Writer for path. It does not open the file, or create
// its parent directory, until the first Append.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Append durably writes every record in records, in order, in a single
// batch. The header row is written once, only when the file is newly
// created. On any error the caller must treat the process as unable to
// continue.
func (w *Writer) Append(records []Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return apperrors.NewPersistenceError("history_append", w.path, err)
	}

	isNew := false
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		isNew = true
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apperrors.NewPersistenceError("history_append", w.path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if isNew {
		if err := writer.Write(header); err != nil {
			return apperrors.NewPersistenceError("history_append", w.path, err)
		}
	}

	for _, r := range records {
		row := []string{
			r.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
			r.ServiceName,
			string(r.Status),
			strconv.FormatInt(r.LatencyMS, 10),
			strconv.Itoa(r.HTTPStatusCode),
			r.FailureReason,
			r.CorrelationID,
		}
		if err := writer.Write(row); err != nil {
			return apperrors.NewPersistenceError("history_append", w.path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewPersistenceError("history_append", w.path, err)
	}

	return nil
}
