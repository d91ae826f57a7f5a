// Package snapshot publishes the current-status projection consumed by the
// external renderer and API surface; only the file contract is implemented
// here, not the renderer itself.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/opswatch/sentinel/internal/apperrors"
	"github.com/opswatch/sentinel/internal/probe"
)

// Projection is one service's entry in the published snapshot.
type Projection struct {
	Name           string   `json:"name"`
	Status         string   `json:"status"`
	LatencyMS      *int64   `json:"latency_ms"`
	LastCheckTime  *string  `json:"last_check_time"`
	Tags           []string `json:"tags"`
	HTTPStatusCode *int     `json:"http_status_code"`
	FailureReason  string   `json:"failure_reason"`

	insertionOrder int
}

var tierRank = map[string]int{
	string(probe.StatusFail):     0,
	string(probe.StatusDegraded): 1,
	string(probe.StatusPass):     2,
	string(probe.StatusPending):  3,
}

// Sort orders projections FAIL, DEGRADED, PASS, PENDING, and by insertion
// order within a tier.
func Sort(projections []Projection) {
	sort.SliceStable(projections, func(i, j int) bool {
		ri, rj := tierRank[projections[i].Status], tierRank[projections[j].Status]
		if ri != rj {
			return ri < rj
		}
		return projections[i].insertionOrder < projections[j].insertionOrder
	})
}

// WithInsertionOrder tags a slice of freshly-built projections with their
// configuration order, so Sort can break ties deterministically.
func WithInsertionOrder(projections []Projection) []Projection {
	for i := range projections {
		projections[i].insertionOrder = i
	}
	return projections
}

// FormatTimestamp renders t as the ISO-8601 UTC string the snapshot and
// history formats share.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// Publisher overwrites the data file and API file with identical JSON.
type Publisher struct {
	dataPath string
	apiPath  string
}

// NewPublisher builds a Publisher targeting dataPath and apiPath.
func NewPublisher(dataPath, apiPath string) *Publisher {
	return &Publisher{dataPath: dataPath, apiPath: apiPath}
}

// Publish atomically rewrites both output files with projections as a JSON
// array. Directory parents are created as needed. Any error is fatal to the
// caller.
func (p *Publisher) Publish(projections []Projection) error {
	Sort(projections)

	payload, err := json.Marshal(projections)
	if err != nil {
		return apperrors.NewPersistenceError("snapshot_publish", p.dataPath, err)
	}
	if projections == nil {
		payload = []byte("[]")
	}

	for _, target := range []string{p.dataPath, p.apiPath} {
		if err := writeAtomic(target, payload); err != nil {
			return apperrors.NewPersistenceError("snapshot_publish", target, err)
		}
	}
	return nil
}

func writeAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
