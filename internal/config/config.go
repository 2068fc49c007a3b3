// Package config provides configuration management for VERITY with layered
// precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (VERITY_* prefix)
//  3. Project config (.verity/config.yaml)
//  4. Global config (~/.verity/config.yaml)
//  5. Built-in defaults
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for VERITY.
type Config struct {
	// Automation contains the run-triggering policy settings.
	Automation AutomationConfig `yaml:"automation" mapstructure:"automation"`

	// Browser contains browser session and execution settings.
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`

	// AI contains settings for AI synthesis and verification calls.
	AI AIConfig `yaml:"ai" mapstructure:"ai"`

	// Artifacts contains settings for evidence storage and addressing.
	Artifacts ArtifactConfig `yaml:"artifacts" mapstructure:"artifacts"`

	// GitHub contains settings for check runs and comment posting.
	GitHub GitHubConfig `yaml:"github" mapstructure:"github"`
}

// AutomationConfig controls whether and when orchestration runs.
// All three trigger inputs are checked synchronously before any resource
// is allocated; when Enabled is false a run produces no side effects.
type AutomationConfig struct {
	// Enabled is the master switch for automated test execution.
	// Default: false
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// BaseURL is the single target environment under test.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// TriggerLabels is an allow-list of labels that may trigger a run.
	// Empty means no restriction.
	TriggerLabels []string `yaml:"trigger_labels" mapstructure:"trigger_labels"`
}

// BrowserConfig contains browser session settings.
type BrowserConfig struct {
	// Headless runs Chrome without a visible window.
	// Default: true
	Headless bool `yaml:"headless" mapstructure:"headless"`

	// SlowMotion is the delay inserted between actions.
	// Default: 100ms
	SlowMotion time.Duration `yaml:"slow_motion" mapstructure:"slow_motion"`

	// ActionTimeout is the default per-action timeout.
	// Default: 30s
	ActionTimeout time.Duration `yaml:"action_timeout" mapstructure:"action_timeout"`

	// RecordVideo enables whole-run screencast recording.
	// Default: true
	RecordVideo bool `yaml:"record_video" mapstructure:"record_video"`

	// CaptureScreenshots enables per-scenario screenshots.
	// Default: true
	CaptureScreenshots bool `yaml:"capture_screenshots" mapstructure:"capture_screenshots"`

	// ChromePath optionally pins the Chrome binary to launch.
	ChromePath string `yaml:"chrome_path,omitempty" mapstructure:"chrome_path"`
}

// AIConfig contains settings for AI calls.
type AIConfig struct {
	// Command is the AI CLI to invoke (e.g. "claude").
	// Default: "claude"
	Command string `yaml:"command" mapstructure:"command"`

	// Model specifies the AI model to use (e.g. "sonnet", "haiku").
	// Default: "sonnet"
	Model string `yaml:"model" mapstructure:"model"`

	// Timeout is the maximum duration for a single AI call.
	// Default: 2 minutes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ArtifactConfig contains evidence storage settings.
type ArtifactConfig struct {
	// Dir is the artifact root directory. Run artifacts are written to
	// run-scoped subdirectories keyed by execution id.
	// Default: ~/.verity/artifacts
	Dir string `yaml:"dir" mapstructure:"dir"`

	// BaseURL is the public base URL artifacts are addressable under.
	// Default: http://localhost:3903/artifacts
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// ServeAddr is the listen address for the artifact file server.
	// Empty disables serving.
	// Default: :3903
	ServeAddr string `yaml:"serve_addr" mapstructure:"serve_addr"`

	// Retention is how long run directories are kept before pruning.
	// Default: 168h (7 days)
	Retention time.Duration `yaml:"retention" mapstructure:"retention"`
}

// GitHubConfig contains external reporting settings.
type GitHubConfig struct {
	// Repo is the "owner/name" repository for check runs and comments.
	Repo string `yaml:"repo" mapstructure:"repo"`

	// CheckName is the name of the check run created per execution.
	// Default: "verity"
	CheckName string `yaml:"check_name" mapstructure:"check_name"`
}
