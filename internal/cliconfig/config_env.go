package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (LOGSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", os.Getenv("LOGSHIP_HOST"), &cfg.Host)
	s.setString("mode", os.Getenv("LOGSHIP_MODE"), &cfg.Mode)
	s.setString("level", os.Getenv("LOGSHIP_LEVEL"), &cfg.Level)
	s.setString("metrics-addr", os.Getenv("LOGSHIP_METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("log-level", os.Getenv("LOGSHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setUint16FromString("port", os.Getenv("LOGSHIP_PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setUint16FromString("code", os.Getenv("LOGSHIP_CODE"), &cfg.Code); err != nil {
		return err
	}
	if err := s.setUint32FromString("magic", os.Getenv("LOGSHIP_MAGIC"), &cfg.Magic); err != nil {
		return err
	}
	if err := s.setUint32FromString("format-version", os.Getenv("LOGSHIP_VERSION"), &cfg.Version); err != nil {
		return err
	}
	if err := s.setByteSize("max-batch-bytes", os.Getenv("LOGSHIP_MAX_BATCH_BYTES"), &cfg.MaxBatchBytes); err != nil {
		return err
	}

	s.setBoolFromString("from-start", os.Getenv("LOGSHIP_FROM_START"), &cfg.FromStart)

	return nil
}
