package history

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opswatch/sentinel/internal/probe"
)

func sampleRecord(name string) Record {
	return Record{
		Timestamp:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		ServiceName:    name,
		Status:         probe.StatusPass,
		LatencyMS:      42,
		HTTPStatusCode: 200,
		FailureReason:  "",
		CorrelationID:  "abc-123",
	}
}

func TestAppend_WritesHeaderOnlyOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.csv")
	w := NewWriter(path)

	require.NoError(t, w.Append([]Record{sampleRecord("svc-a")}))
	require.NoError(t, w.Append([]Record{sampleRecord("svc-b")}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, "svc-a", rows[1][1])
	assert.Equal(t, "svc-b", rows[2][1])
}

func TestAppend_EmptyBatchIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.csv")
	w := NewWriter(path)

	require.NoError(t, w.Append(nil))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAppend_RowFieldsAreInColumnOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.csv")
	w := NewWriter(path)

	rec := sampleRecord("svc-a")
	rec.FailureReason = "Expected status 200, got 500"
	require.NoError(t, w.Append([]Record{rec}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, "2026-01-02T03:04:05.000Z", row[0])
	assert.Equal(t, "svc-a", row[1])
	assert.Equal(t, "PASS", row[2])
	assert.Equal(t, "42", row[3])
	assert.Equal(t, "200", row[4])
	assert.Equal(t, "Expected status 200, got 500", row[5])
	assert.Equal(t, "abc-123", row[6])
}
