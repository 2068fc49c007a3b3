package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/errors"
)

// newViperInstance creates a new Viper instance with standard VERITY
// configuration: defaults, VERITY_ env prefix, and key replacer.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("VERITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// viperDecoderOption returns the decode hooks used when unmarshaling config.
// Durations may be given as strings ("30s") or integers (nanoseconds).
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// isConfigNotFoundError returns true if the error is a viper config file not
// found error. Missing config files are expected in many scenarios.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// GlobalConfigDir returns the global config directory (~/.verity).
func GlobalConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return constants.ConfigDirName
	}
	return filepath.Join(home, constants.ConfigDirName)
}

// DefaultArtifactDir returns the default artifact root directory.
func DefaultArtifactDir() string {
	return filepath.Join(GlobalConfigDir(), constants.ArtifactDirName)
}

// DefaultLogDir returns the directory for rotated log files.
func DefaultLogDir() string {
	return filepath.Join(GlobalConfigDir(), constants.LogDirName)
}

// loadGlobalConfig merges ~/.verity/config.yaml into v, when present.
func loadGlobalConfig(v *viper.Viper) error {
	path := filepath.Join(GlobalConfigDir(), constants.ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config")
	}
	return nil
}

// loadProjectConfig merges ./.verity/config.yaml into v, when present.
func loadProjectConfig(v *viper.Viper) error {
	path := filepath.Join(constants.ConfigDirName, constants.ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config")
	}
	return nil
}

// Load reads configuration from all available sources with proper
// precedence. It returns an error only for actual configuration problems,
// not for missing config files.
//
// The context parameter is accepted for API consistency; config reads are
// fast local I/O and are not canceled mid-flight.
func Load(_ context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	return unmarshalAndValidate(v)
}

// LoadWithOverrides loads configuration and then applies CLI flag overrides
// as the highest precedence layer. Override keys use viper dotted paths
// (e.g. "automation.base_url").
func LoadWithOverrides(ctx context.Context, overrides map[string]any) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}
	for key, value := range overrides {
		v.Set(key, value)
	}

	return unmarshalAndValidate(v)
}

// unmarshalAndValidate decodes viper state into a Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}
