package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, cfg.Agent.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Sandbox.TestTimeout)
	assert.Equal(t, 1, cfg.Sandbox.Parallelism)
	assert.Equal(t, []string{"pytest", "-q"}, cfg.Sandbox.TestCommand)
	assert.Equal(t, ":8080", cfg.Server.Listen)
}

func TestLoad_PolicyFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sandbox:
  parallelism: 4
  test_command: ["go", "test", "./..."]
server:
  listen: ":9090"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Sandbox.Parallelism)
	assert.Equal(t, []string{"go", "test", "./..."}, cfg.Sandbox.TestCommand)
	assert.Equal(t, ":9090", cfg.Server.Listen)
}

func TestLoad_AgentPoolsFromPolicyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agent:
  plan_urls: ["http://architect:9000"]
  builder_urls: ["http://builder-0:9001", "http://builder-1:9001"]
  review_urls: ["http://reviewer:9002"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://architect:9000"}, cfg.Agent.PlanURLs)
	assert.Equal(t, []string{"http://builder-0:9001", "http://builder-1:9001"}, cfg.Agent.BuilderURLs)
	assert.Equal(t, []string{"http://reviewer:9002"}, cfg.Agent.ReviewURLs)
}

func TestLoad_EnvOverridesPolicyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sandbox:\n  parallelism: 4\n"), 0o644))

	t.Setenv("AW_STR_PARALLELISM", "7")
	t.Setenv("AW_AGENT_TIMEOUT_MS", "1500")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Sandbox.Parallelism)
	assert.Equal(t, 1500*time.Millisecond, cfg.Agent.Timeout)
}

func TestLoad_ParallelismNeverBelowOne(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sandbox:\n  parallelism: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Sandbox.Parallelism)
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sandbox:\n  parallelism: 2\n"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 2, w.Current().Sandbox.Parallelism)

	require.NoError(t, os.WriteFile(path, []byte("sandbox:\n  parallelism: 5\n"), 0o644))

	require.Eventually(t, func() bool {
		return w.Current().Sandbox.Parallelism == 5
	}, 2*time.Second, 20*time.Millisecond)
}
