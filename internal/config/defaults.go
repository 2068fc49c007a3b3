package config

import (
	"github.com/spf13/viper"

	"github.com/verityhq/verity/internal/constants"
)

// setDefaults registers the built-in default values on a viper instance.
// These form the lowest-precedence configuration layer.
func setDefaults(v *viper.Viper) {
	// Automation: off by default; enabling is always an explicit choice.
	v.SetDefault("automation.enabled", false)
	v.SetDefault("automation.base_url", "")
	v.SetDefault("automation.trigger_labels", []string{})

	// Browser
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_motion", constants.DefaultSlowMotion)
	v.SetDefault("browser.action_timeout", constants.DefaultActionTimeout)
	v.SetDefault("browser.record_video", true)
	v.SetDefault("browser.capture_screenshots", true)

	// AI
	v.SetDefault("ai.command", "claude")
	v.SetDefault("ai.model", "sonnet")
	v.SetDefault("ai.timeout", constants.DefaultAITimeout)

	// Artifacts
	v.SetDefault("artifacts.dir", DefaultArtifactDir())
	v.SetDefault("artifacts.base_url", "http://localhost:3903/artifacts")
	v.SetDefault("artifacts.serve_addr", ":3903")
	v.SetDefault("artifacts.retention", "168h")

	// GitHub
	v.SetDefault("github.repo", "")
	v.SetDefault("github.check_name", constants.AppName)
}

// Default returns a Config populated with built-in defaults only.
// Useful for tests and for callers that bypass file loading.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode cleanly; the error path exists for the
	// compiler, not for runtime.
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		panic(err)
	}
	return &cfg
}
