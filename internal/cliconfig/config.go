package cliconfig

import (
	"fmt"
	"strconv"

	"github.com/c2h5oh/datasize"

	"github.com/bft-labs/logship/pkg/sender"
	"github.com/bft-labs/logship/pkg/shipper"
	"github.com/bft-labs/logship/pkg/wire"
)

// MaxDatagramBytes is the largest UDP payload that fits in one IPv4 datagram.
const MaxDatagramBytes = 65507

// Config holds CLI configuration for logship.
type Config struct {
	Host string
	Port uint16
	Mode string

	Magic   uint32
	Version uint32

	Level string
	Code  uint16

	MaxBatchBytes datasize.ByteSize
	FromStart     bool

	MetricsAddr string
	LogLevel    string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Host:          "127.0.0.1",
		Port:          9101,
		Mode:          "tcp",
		Magic:         wire.DefaultMagic,
		Version:       wire.DefaultVersion,
		Level:         "info",
		Code:          1001,
		MaxBatchBytes: 1400 * datasize.B,
		LogLevel:      "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("port is required")
	}
	mode, err := sender.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	if _, err := wire.ParseLevel(c.Level); err != nil {
		return err
	}

	minBatch := datasize.ByteSize(wire.HeaderLen + wire.RecordHeaderLen + 1)
	if c.MaxBatchBytes < minBatch {
		return fmt.Errorf("max batch bytes must be at least %d", minBatch.Bytes())
	}
	if mode == sender.ModeDatagram && c.MaxBatchBytes > MaxDatagramBytes {
		return fmt.Errorf("max batch bytes %d exceeds the udp limit of %d", c.MaxBatchBytes.Bytes(), MaxDatagramBytes)
	}
	return nil
}

// TransportMode returns the parsed transport mode. Call Validate first.
func (c *Config) TransportMode() sender.Mode {
	mode, _ := sender.ParseMode(c.Mode)
	return mode
}

// RecordLevel returns the parsed record level. Call Validate first.
func (c *Config) RecordLevel() wire.Level {
	level, _ := wire.ParseLevel(c.Level)
	return level
}

// ShipperConfig converts the CLI configuration into a shipper.Config.
func (c *Config) ShipperConfig() shipper.Config {
	return shipper.Config{
		Host:          c.Host,
		Port:          c.Port,
		Mode:          c.TransportMode(),
		Magic:         c.Magic,
		Version:       c.Version,
		Level:         c.RecordLevel(),
		Code:          c.Code,
		MaxBatchBytes: int(c.MaxBatchBytes.Bytes()),
	}
}

// ByteSizeValue adapts a datasize.ByteSize to pflag.Value so sizes like "1400" or "64KB" work as flags.
type ByteSizeValue struct {
	dst *datasize.ByteSize
}

// NewByteSizeValue binds a flag value to dst.
func NewByteSizeValue(dst *datasize.ByteSize) *ByteSizeValue {
	return &ByteSizeValue{dst: dst}
}

func (v *ByteSizeValue) String() string {
	if v.dst == nil {
		return ""
	}
	return v.dst.String()
}

func (v *ByteSizeValue) Set(s string) error {
	return v.dst.UnmarshalText([]byte(s))
}

func (v *ByteSizeValue) Type() string { return "bytes" }

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setUint16 sets a uint16 value from a pointer if not nil and flag not changed.
func (s *configSetter) setUint16(flag string, value *uint16, dst *uint16) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setUint32 sets a uint32 value from a pointer if not nil and flag not changed.
// Zero is a legal header value, so only a missing key leaves dst alone.
func (s *configSetter) setUint32(flag string, value *uint32, dst *uint32) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setByteSize parses a size such as "1400" or "8KB" if valid and flag not changed.
func (s *configSetter) setByteSize(flag, value string, dst *datasize.ByteSize) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	var size datasize.ByteSize
	if err := size.UnmarshalText([]byte(value)); err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = size
	return nil
}

// setUint16FromString parses a decimal string and sets the destination if valid.
// An explicit "0" is applied; Validate decides whether it is acceptable.
// Used for environment variables that come as strings.
func (s *configSetter) setUint16FromString(flag, value string, dst *uint16) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	u, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = uint16(u)
	return nil
}

// setUint32FromString parses a string to uint32 and sets the destination if valid.
// A 0x prefix selects hex, which is how magic numbers are usually written.
func (s *configSetter) setUint32FromString(flag, value string, dst *uint32) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	u, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = uint32(u)
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
