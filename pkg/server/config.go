package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML shape of the optional server config file. Zero
// values leave the corresponding Config field untouched, so flags and
// defaults still apply.
type FileConfig struct {
	Addr           string   `yaml:"addr,omitempty"`
	DBPath         string   `yaml:"db,omitempty"`
	TranscriptPath string   `yaml:"transcript,omitempty"`
	Admins         []string `yaml:"admins,omitempty"`
	HistoryLines   int      `yaml:"history_lines,omitempty"`
	AuthTimeout    string   `yaml:"auth_timeout,omitempty"`    // e.g. "10s"
	WriteTimeout   string   `yaml:"write_timeout,omitempty"`   // e.g. "5s"
	ShutdownGrace  string   `yaml:"shutdown_grace,omitempty"`  // e.g. "3s"
	MetricsAddr    string   `yaml:"metrics_addr,omitempty"`
}

// LoadConfigFile reads a YAML config file and applies it over cfg.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // path from user-provided CLI config
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return ApplyConfigYAML(data, cfg)
}

// ApplyConfigYAML parses YAML data and applies non-zero values over cfg.
func ApplyConfigYAML(data []byte, cfg *Config) error {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.TranscriptPath != "" {
		cfg.TranscriptPath = fc.TranscriptPath
	}
	if len(fc.Admins) > 0 {
		cfg.Admins = fc.Admins
	}
	if fc.HistoryLines > 0 {
		cfg.HistoryLines = fc.HistoryLines
	}
	if fc.MetricsAddr != "" {
		cfg.MetricsAddr = fc.MetricsAddr
	}

	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{fc.AuthTimeout, &cfg.AuthTimeout},
		{fc.WriteTimeout, &cfg.WriteTimeout},
		{fc.ShutdownGrace, &cfg.ShutdownGrace},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse config duration %q: %w", d.raw, err)
		}
		*d.dst = parsed
	}

	return nil
}
