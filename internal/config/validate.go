package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/verityhq/verity/internal/errors"
)

// Validate checks a Config for invalid values and returns a wrapped
// sentinel error naming the offending section.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}
	if err := validateAutomation(&cfg.Automation); err != nil {
		return err
	}
	if err := validateBrowser(&cfg.Browser); err != nil {
		return err
	}
	if err := validateAI(&cfg.AI); err != nil {
		return err
	}
	if err := validateArtifacts(&cfg.Artifacts); err != nil {
		return err
	}
	return validateGitHub(&cfg.GitHub)
}

func validateAutomation(c *AutomationConfig) error {
	// BaseURL may be empty when automation is disabled; the trigger policy
	// rejects runs without one. A non-empty value must parse.
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: base_url %q is not a valid URL",
				errors.ErrConfigInvalidAutomation, c.BaseURL)
		}
	}
	for _, label := range c.TriggerLabels {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("%w: trigger_labels contains an empty label",
				errors.ErrConfigInvalidAutomation)
		}
	}
	return nil
}

func validateBrowser(c *BrowserConfig) error {
	if c.ActionTimeout <= 0 {
		return fmt.Errorf("%w: action_timeout must be positive, got %s",
			errors.ErrConfigInvalidBrowser, c.ActionTimeout)
	}
	if c.SlowMotion < 0 {
		return fmt.Errorf("%w: slow_motion must not be negative, got %s",
			errors.ErrConfigInvalidBrowser, c.SlowMotion)
	}
	return nil
}

func validateAI(c *AIConfig) error {
	if strings.TrimSpace(c.Command) == "" {
		return fmt.Errorf("%w: command cannot be empty", errors.ErrConfigInvalidAI)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s",
			errors.ErrConfigInvalidAI, c.Timeout)
	}
	return nil
}

func validateArtifacts(c *ArtifactConfig) error {
	if strings.TrimSpace(c.Dir) == "" {
		return fmt.Errorf("%w: dir cannot be empty", errors.ErrConfigInvalidArtifact)
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" {
			return fmt.Errorf("%w: base_url %q is not a valid URL",
				errors.ErrConfigInvalidArtifact, c.BaseURL)
		}
	}
	if c.Retention < 0 {
		return fmt.Errorf("%w: retention must not be negative, got %s",
			errors.ErrConfigInvalidArtifact, c.Retention)
	}
	return nil
}

func validateGitHub(c *GitHubConfig) error {
	// Repo may be empty when reporting is not wired (local runs).
	if c.Repo != "" && !strings.Contains(c.Repo, "/") {
		return fmt.Errorf("%w: repo must be in owner/name form, got %q",
			errors.ErrConfigInvalidGitHub, c.Repo)
	}
	if strings.TrimSpace(c.CheckName) == "" {
		return fmt.Errorf("%w: check_name cannot be empty", errors.ErrConfigInvalidGitHub)
	}
	return nil
}
