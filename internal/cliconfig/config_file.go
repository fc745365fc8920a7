package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but keeps sizes as strings so "8KB" reads naturally in TOML.
// Numbers are pointers so that an explicit 0 can be told apart from a missing key.
type FileConfig struct {
	Host          string  `toml:"host"`
	Port          *uint16 `toml:"port"`
	Mode          string  `toml:"mode"`
	Magic         *uint32 `toml:"magic"`
	Version       *uint32 `toml:"version"`
	Level         string  `toml:"level"`
	Code          *uint16 `toml:"code"`
	MaxBatchBytes string  `toml:"max_batch_bytes"`
	FromStart     *bool   `toml:"from_start"`
	MetricsAddr   string  `toml:"metrics_addr"`
	LogLevel      string  `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.logship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".logship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setString("mode", fc.Mode, &cfg.Mode)
	s.setString("level", fc.Level, &cfg.Level)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setUint16("port", fc.Port, &cfg.Port)
	s.setUint16("code", fc.Code, &cfg.Code)
	s.setUint32("magic", fc.Magic, &cfg.Magic)
	s.setUint32("format-version", fc.Version, &cfg.Version)

	if err := s.setByteSize("max-batch-bytes", fc.MaxBatchBytes, &cfg.MaxBatchBytes); err != nil {
		return err
	}

	s.setBool("from-start", fc.FromStart, &cfg.FromStart)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
