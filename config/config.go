// Package config loads the YAML configuration for the purelink CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/purelink-labs/purelink/oracle"
	"github.com/purelink-labs/purelink/store"
	"github.com/purelink-labs/purelink/verify"
	"github.com/purelink-labs/purelink/workflow"
)

const (
	projectConfigName = "purelink.yaml"
	homeConfigName    = "config.yaml"
	homeConfigDir     = ".purelink"
)

// Config is the file shape of purelink.yaml.
type Config struct {
	// DataDir is the store location. Empty means ~/.purelink.
	DataDir string `yaml:"data_dir,omitempty"`

	// Backend selects the persistence layer: "file" (default) or "sqlite".
	Backend string `yaml:"backend,omitempty"`

	Oracle  OracleConfig  `yaml:"oracle,omitempty"`
	Verify  VerifyConfig  `yaml:"verify,omitempty"`
	Refresh RefreshConfig `yaml:"refresh,omitempty"`

	// MethodTTLDays is how long discovered methods stay fresh.
	MethodTTLDays int `yaml:"method_ttl_days,omitempty"`
}

// OracleConfig configures the proposal provider.
type OracleConfig struct {
	// Provider is the iris provider name: "anthropic", "openai", "ollama".
	Provider string `yaml:"provider,omitempty"`

	Model string `yaml:"model,omitempty"`

	// APIKeyEnv names the environment variable holding the provider key.
	// The key itself never goes in the file.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
	MaxProposals   int `yaml:"max_proposals,omitempty"`
}

// VerifyConfig configures URL verification.
type VerifyConfig struct {
	TimeoutSeconds    int     `yaml:"timeout_seconds,omitempty"`
	Concurrency       int     `yaml:"concurrency,omitempty"`
	AcceptThreshold   float64 `yaml:"accept_threshold,omitempty"`
	UnverifiedCeiling float64 `yaml:"unverified_ceiling,omitempty"`

	// ContentPass enables the oracle relevance check of winning pages.
	ContentPass bool `yaml:"content_pass,omitempty"`
}

// RefreshConfig configures the expiry sweep.
type RefreshConfig struct {
	// Cron is a five-field UTC cron expression for scheduled sweeps.
	Cron string `yaml:"cron,omitempty"`

	// WindowDays is how far ahead of expiry a record qualifies.
	WindowDays int `yaml:"window_days,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Backend: "file",
		Oracle: OracleConfig{
			Provider:  "anthropic",
			APIKeyEnv: "ANTHROPIC_API_KEY",
		},
		Refresh: RefreshConfig{
			Cron: "0 3 * * *",
		},
	}
}

// DiscoverPath resolves the config location with first-match semantics:
// explicit path, then ./purelink.yaml, then ~/.purelink/config.yaml.
func DiscoverPath(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverPathFrom(explicitPath, cwd, homeDir)
}

// DiscoverPathFrom is a testable variant of DiscoverPath.
func DiscoverPathFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	candidates := make([]string, 0, 2)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, filepath.Join(homeDir, homeConfigDir, homeConfigName))
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// Load reads the config at the discovered path, falling back to defaults
// when no file exists.
func Load(explicitPath string) (Config, error) {
	path, found, err := DiscoverPath(explicitPath)
	if err != nil {
		return Config{}, err
	}
	if !found {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates one config file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	switch c.Backend {
	case "", "file", "sqlite":
	default:
		return fmt.Errorf("backend %q is not one of file, sqlite", c.Backend)
	}
	if c.Verify.AcceptThreshold < 0 || c.Verify.AcceptThreshold > 1 {
		return fmt.Errorf("verify.accept_threshold %v outside [0,1]", c.Verify.AcceptThreshold)
	}
	if c.Verify.UnverifiedCeiling < 0 || c.Verify.UnverifiedCeiling > 1 {
		return fmt.Errorf("verify.unverified_ceiling %v outside [0,1]", c.Verify.UnverifiedCeiling)
	}
	if c.MethodTTLDays < 0 {
		return fmt.Errorf("method_ttl_days %d is negative", c.MethodTTLDays)
	}
	if c.Refresh.Cron != "" {
		if err := workflow.ValidateCron(c.Refresh.Cron); err != nil {
			return err
		}
	}
	return nil
}

// APIKey resolves the provider key from the configured environment variable.
func (c OracleConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// OracleOptions converts the file shape into the oracle package's config.
func (c Config) OracleOptions() oracle.Config {
	return oracle.Config{
		Model:        c.Oracle.Model,
		Timeout:      time.Duration(c.Oracle.TimeoutSeconds) * time.Second,
		MaxProposals: c.Oracle.MaxProposals,
	}
}

// VerifyOptions converts the file shape into the verify package's config.
func (c Config) VerifyOptions() verify.Config {
	return verify.Config{
		RequestTimeout:    time.Duration(c.Verify.TimeoutSeconds) * time.Second,
		Concurrency:       c.Verify.Concurrency,
		AcceptThreshold:   c.Verify.AcceptThreshold,
		UnverifiedCeiling: c.Verify.UnverifiedCeiling,
		ContentPass:       c.Verify.ContentPass,
	}
}

// MethodTTL returns the configured TTL, or the store default when unset.
func (c Config) MethodTTL() time.Duration {
	if c.MethodTTLDays <= 0 {
		return store.DefaultMethodTTL
	}
	return time.Duration(c.MethodTTLDays) * 24 * time.Hour
}

// RefreshWindow returns the configured sweep window, or the default.
func (c Config) RefreshWindow() time.Duration {
	if c.Refresh.WindowDays <= 0 {
		return workflow.DefaultRefreshWindow
	}
	return time.Duration(c.Refresh.WindowDays) * 24 * time.Hour
}

// ResolveDataDir returns the configured data directory, defaulting to
// ~/.purelink.
func (c Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	return store.DefaultDir()
}
