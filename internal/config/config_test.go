package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "benchcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8087", cfg.Server.Addr)
	assert.Equal(t, 0.35, cfg.Quality.ExecutionWeight)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesMergeOntoDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
storage:
  cache_ttl: 1m
sim:
  agents: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, time.Minute, cfg.Storage.CacheTTL.Std())
	assert.Equal(t, 4, cfg.Sim.Agents)
	assert.Equal(t, 5*time.Second, cfg.Storage.QueryTimeout.Std(), "untouched defaults survive")
	assert.Equal(t, 0.25, cfg.Quality.CalibrationWeight)
}

func TestLoad_RejectsBadQualityWeights(t *testing.T) {
	path := writeConfig(t, `
quality:
  max_history: 1000
  execution_weight: 0.5
  calibration_weight: 0.5
  sizing_weight: 0.2
  timing_weight: 0.2
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quality weights")
}

func TestLoad_RejectsTooFewSimAgents(t *testing.T) {
	path := writeConfig(t, `
sim:
  agents: 1
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/benchcore.yaml")
	assert.Error(t, err)
}
