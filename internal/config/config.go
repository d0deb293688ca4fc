// Package config loads user defaults for gitdup.
//
// Values come from, in increasing priority: built-in defaults, an optional
// config.yaml in the gitdup config directory, and GITDUP_* environment
// variables. Command-line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the defaults a duplication run starts from.
type Config struct {
	Remote  string `mapstructure:"remote"`
	Clean   bool   `mapstructure:"clean"`
	Install bool   `mapstructure:"install"`
	Verbose bool   `mapstructure:"verbose"`
	Output  string `mapstructure:"output"`
}

// Default is the configuration used when no file or env override exists.
var Default = Config{
	Remote:  "origin",
	Clean:   false,
	Install: true,
	Verbose: false,
	Output:  "text",
}

// validOutputs are the accepted values for the output key.
var validOutputs = []string{"text", "json", "yaml"}

// Dir returns the directory config.yaml is read from:
// $XDG_CONFIG_HOME/gitdup, falling back to ~/.config/gitdup.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gitdup"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "gitdup"), nil
}

// Load reads the configuration from the default config directory.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom reads config.yaml from configDir (a missing file is fine) and
// applies GITDUP_* environment overrides.
func LoadFrom(configDir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetDefault("remote", Default.Remote)
	v.SetDefault("clean", Default.Clean)
	v.SetDefault("install", Default.Install)
	v.SetDefault("verbose", Default.Verbose)
	v.SetDefault("output", Default.Output)

	v.SetEnvPrefix("GITDUP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes and checks the loaded values.
func (c *Config) Validate() error {
	c.Remote = strings.TrimSpace(c.Remote)
	if c.Remote == "" {
		c.Remote = Default.Remote
	}

	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	if c.Output == "" {
		c.Output = Default.Output
	}
	for _, o := range validOutputs {
		if c.Output == o {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q (valid: %s)", c.Output, strings.Join(validOutputs, ", "))
}
