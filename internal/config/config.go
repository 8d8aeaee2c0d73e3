package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir   = "~/.local/share/elex-datasource"
	DefaultUserAgent = "elex-datasource/1.0 (github.com/pfrederiksen/elex-datasource)"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 1.0
	DefaultGithubOrg = "openelections"
)

// Config holds all elex-datasource configuration
type Config struct {
	DataDir  string                 `yaml:"data_dir"`
	LogLevel string                 `yaml:"log_level"`
	HTTP     HTTPConfig             `yaml:"http"`
	Mirror   MirrorConfig           `yaml:"mirror"`
	States   map[string]StateConfig `yaml:"states"`
}

// HTTPConfig controls fetching of results index pages
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	RateLimitRPS float64       `yaml:"rate_limit_rps"` // 0 disables throttling
}

// MirrorConfig locates the GitHub repositories holding pre-processed CSVs
type MirrorConfig struct {
	GithubOrg string `yaml:"github_org"`
	Branch    string `yaml:"branch"`
}

// StateConfig overrides per-state archive locations
type StateConfig struct {
	ArchiveBaseURL string `yaml:"archive_base_url"`
	ResultsBaseURL string `yaml:"results_base_url"`
}

// Default returns a Config with every default applied
func Default() *Config {
	cfg := &Config{HTTP: HTTPConfig{RateLimitRPS: DefaultRateLimit}}
	cfg.defaults()
	return cfg
}

func (c *Config) defaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = DefaultTimeout
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = DefaultUserAgent
	}
	if c.HTTP.RateLimitRPS < 0 {
		c.HTTP.RateLimitRPS = 0
	}
	if c.Mirror.GithubOrg == "" {
		c.Mirror.GithubOrg = DefaultGithubOrg
	}
	if c.Mirror.Branch == "" {
		c.Mirror.Branch = "master"
	}
	if c.States == nil {
		c.States = make(map[string]StateConfig)
	}
}

// State returns the overrides for a state code, case-insensitively
func (c *Config) State(code string) StateConfig {
	return c.States[strings.ToLower(code)]
}

// Load parses YAML config data and applies defaults.
// A nil or empty document yields the defaults.
func Load(data []byte) (*Config, error) {
	cfg := Default()
	cfg.States = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	states := make(map[string]StateConfig, len(cfg.States))
	for code, sc := range cfg.States {
		states[strings.ToLower(code)] = sc
	}
	cfg.States = states

	cfg.defaults()
	return cfg, nil
}

// LoadFile reads a YAML config file. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load(nil)
	}

	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Load(nil)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Load(data)
}

// ExpandHome expands a leading "~/" to the user's home directory
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
