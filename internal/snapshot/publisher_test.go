package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opswatch/sentinel/internal/probe"
)

func TestSort_OrdersByTierThenInsertion(t *testing.T) {
	projections := WithInsertionOrder([]Projection{
		{Name: "c", Status: string(probe.StatusPass)},
		{Name: "a", Status: string(probe.StatusFail)},
		{Name: "b", Status: string(probe.StatusDegraded)},
		{Name: "d", Status: string(probe.StatusFail)},
		{Name: "e", Status: string(probe.StatusPending)},
	})

	Sort(projections)

	names := make([]string, len(projections))
	for i, p := range projections {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"a", "d", "b", "c", "e"}, names)
}

func TestPublish_WritesIdenticalJSONToBothTargets(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "nested", "services.json")
	apiPath := filepath.Join(dir, "api", "status.json")
	pub := NewPublisher(dataPath, apiPath)

	projections := WithInsertionOrder([]Projection{
		{Name: "svc-a", Status: string(probe.StatusPass)},
	})
	require.NoError(t, pub.Publish(projections))

	dataBytes, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	apiBytes, err := os.ReadFile(apiPath)
	require.NoError(t, err)
	assert.Equal(t, dataBytes, apiBytes)

	var decoded []Projection
	require.NoError(t, json.Unmarshal(dataBytes, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "svc-a", decoded[0].Name)
}

func TestPublish_EmptyProjectionListWritesJSONArray(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "services.json")
	apiPath := filepath.Join(dir, "status.json")
	pub := NewPublisher(dataPath, apiPath)

	require.NoError(t, pub.Publish(nil))

	got, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(got))
}

func TestPublish_OverwritesPreviousContent(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "services.json")
	apiPath := filepath.Join(dir, "status.json")
	pub := NewPublisher(dataPath, apiPath)

	require.NoError(t, pub.Publish(WithInsertionOrder([]Projection{{Name: "first", Status: string(probe.StatusPass)}})))
	require.NoError(t, pub.Publish(WithInsertionOrder([]Projection{{Name: "second", Status: string(probe.StatusFail)}})))

	got, err := os.ReadFile(dataPath)
	require.NoError(t, err)

	var decoded []Projection
	require.NoError(t, json.Unmarshal(got, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "second", decoded[0].Name)
}
