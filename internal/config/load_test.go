package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath_PreferredPathWins(t *testing.T) {
	dir := t.TempDir()
	preferred := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(preferred, []byte(validDoc), 0o644))

	path, tried, err := ResolveConfigPath(preferred)
	require.NoError(t, err)
	assert.Equal(t, preferred, path)
	assert.Equal(t, []string{preferred}, tried)
}

func TestResolveConfigPath_FallsBackToSearchDirs(t *testing.T) {
	dir := t.TempDir()
	restore := fallbackSearchDirs
	fallbackSearchDirs = []string{dir}
	defer func() { fallbackSearchDirs = restore }()

	fallback := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(fallback, []byte(validDoc), 0o644))

	path, _, err := ResolveConfigPath(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, fallback, path)
}

func TestResolveConfigPath_ReturnsEveryCandidateOnTotalMiss(t *testing.T) {
	dir := t.TempDir()
	restore := fallbackSearchDirs
	fallbackSearchDirs = []string{dir}
	defer func() { fallbackSearchDirs = restore }()

	_, tried, err := ResolveConfigPath(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Len(t, tried, 3) // preferred + config.yaml + config.yml in the one fallback dir
}

func TestLoad_MissingFileIsConfigurationError(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
}
