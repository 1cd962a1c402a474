// Package config loads and holds the core's runtime configuration:
// timeouts, the sandbox root directory, and the patch-and-test policy
// applied by the sandboxed test runner. Configuration is always
// constructed explicitly and threaded through the orchestrator and the
// sandbox; there is no process-wide singleton.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the core orchestration engine.
type Config struct {
	Agent   AgentConfig   `mapstructure:"agent"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Server  ServerConfig  `mapstructure:"server"`
}

// AgentConfig holds settings for calls to plan/implement/review agents,
// including the configured pools of agent URLs a request's builders/
// reviewers/specialists counts are drawn from.
type AgentConfig struct {
	// Timeout bounds every outbound call to an agent URL.
	Timeout time.Duration `mapstructure:"timeout"`
	// PlanURLs, BuilderURLs, ReviewURLs are the pools of agent
	// endpoints available to a pipeline run. A request's builders,
	// reviewers, and specialists counts select a prefix of the
	// corresponding pool; they never name URLs directly.
	PlanURLs    []string `mapstructure:"plan_urls"`
	BuilderURLs []string `mapstructure:"builder_urls"`
	ReviewURLs  []string `mapstructure:"review_urls"`
}

// SandboxConfig holds settings for the sandboxed test runner.
type SandboxConfig struct {
	// TestTimeout bounds the test command's wall-clock execution.
	TestTimeout time.Duration `mapstructure:"test_timeout"`
	// TmpDir is the root directory under which disposable workspaces
	// are created. Empty means the OS default temp directory.
	TmpDir string `mapstructure:"tmp_dir"`
	// Parallelism bounds how many STR invocations may run concurrently.
	Parallelism int `mapstructure:"parallelism"`
	// TemplateDir is the target project tree copied into each workspace.
	TemplateDir string `mapstructure:"template_dir"`
	// TestCommand is the command (and args) used to run the target
	// project's test suite, e.g. ["pytest", "-q"].
	TestCommand []string `mapstructure:"test_command"`
}

// ServerConfig holds settings for the orchestrator's HTTP surface.
type ServerConfig struct {
	// Listen is the address the HTTP server binds to, e.g. ":8080".
	Listen string `mapstructure:"listen"`
}

// envBindings maps environment variables named by the specification to
// their config keys. Kept as an explicit table (rather than relying on
// viper's automatic SCREAMING_SNAKE_CASE translation) because the
// env var names don't mirror the nested "agent.timeout" key shape.
var envBindings = map[string]string{
	"AW_AGENT_TIMEOUT_MS": "agent.timeout_ms",
	"AW_TEST_TIMEOUT_MS":  "sandbox.test_timeout_ms",
	"AW_TMPDIR":           "sandbox.tmp_dir",
	"AW_STR_PARALLELISM":  "sandbox.parallelism",
}

// Default returns a Config populated with the specification's defaults.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Timeout: 60 * time.Second,
		},
		Sandbox: SandboxConfig{
			TestTimeout: 60 * time.Second,
			TmpDir:      os.TempDir(),
			Parallelism: 1,
			TestCommand: []string{"pytest", "-q"},
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
	}
}

// Load builds a Config starting from Default(), optionally merging a
// YAML policy file (patch/test policy), then applying the environment
// variable overrides named in the specification. Precedence, highest
// first: environment variables, the policy file, built-in defaults.
func Load(policyPath string) (*Config, error) {
	v := viper.New()
	cfg := Default()

	v.SetDefault("agent.timeout_ms", cfg.Agent.Timeout.Milliseconds())
	v.SetDefault("sandbox.test_timeout_ms", cfg.Sandbox.TestTimeout.Milliseconds())
	v.SetDefault("sandbox.tmp_dir", cfg.Sandbox.TmpDir)
	v.SetDefault("sandbox.parallelism", cfg.Sandbox.Parallelism)
	v.SetDefault("sandbox.template_dir", cfg.Sandbox.TemplateDir)
	v.SetDefault("sandbox.test_command", cfg.Sandbox.TestCommand)
	v.SetDefault("server.listen", cfg.Server.Listen)
	v.SetDefault("agent.plan_urls", []string{})
	v.SetDefault("agent.builder_urls", []string{})
	v.SetDefault("agent.review_urls", []string{})

	if policyPath != "" {
		v.SetConfigFile(policyPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading policy file %s: %w", policyPath, err)
		}
	}

	for envVar, key := range envBindings {
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", envVar, err)
		}
	}

	out := &Config{}
	out.Agent.Timeout = time.Duration(v.GetInt64("agent.timeout_ms")) * time.Millisecond
	out.Agent.PlanURLs = v.GetStringSlice("agent.plan_urls")
	out.Agent.BuilderURLs = v.GetStringSlice("agent.builder_urls")
	out.Agent.ReviewURLs = v.GetStringSlice("agent.review_urls")
	out.Sandbox.TestTimeout = time.Duration(v.GetInt64("sandbox.test_timeout_ms")) * time.Millisecond
	out.Sandbox.TmpDir = v.GetString("sandbox.tmp_dir")
	out.Sandbox.Parallelism = v.GetInt("sandbox.parallelism")
	if out.Sandbox.Parallelism < 1 {
		out.Sandbox.Parallelism = 1
	}
	out.Sandbox.TemplateDir = v.GetString("sandbox.template_dir")
	out.Sandbox.TestCommand = v.GetStringSlice("sandbox.test_command")
	if len(out.Sandbox.TestCommand) == 0 {
		out.Sandbox.TestCommand = cfg.Sandbox.TestCommand
	}
	out.Server.Listen = v.GetString("server.listen")

	return out, nil
}
