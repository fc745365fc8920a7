package cliconfig

import (
	"testing"

	"github.com/c2h5oh/datasize"

	"github.com/bft-labs/logship/pkg/sender"
	"github.com/bft-labs/logship/pkg/wire"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %v, want 127.0.0.1", cfg.Host)
	}
	if cfg.Port != 9101 {
		t.Errorf("Port = %v, want 9101", cfg.Port)
	}
	if cfg.Magic != wire.DefaultMagic {
		t.Errorf("Magic = %#x, want %#x", cfg.Magic, wire.DefaultMagic)
	}
	if cfg.MaxBatchBytes != 1400 {
		t.Errorf("MaxBatchBytes = %v, want 1400", cfg.MaxBatchBytes.Bytes())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing host",
			mutate:  func(c *Config) { c.Host = "" },
			wantErr: true,
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: true,
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Mode = "sctp" },
			wantErr: true,
		},
		{
			name:    "unknown level",
			mutate:  func(c *Config) { c.Level = "fatal" },
			wantErr: true,
		},
		{
			name:    "batch too small for one record",
			mutate:  func(c *Config) { c.MaxBatchBytes = 27 },
			wantErr: true,
		},
		{
			name: "udp batch above datagram limit",
			mutate: func(c *Config) {
				c.Mode = "udp"
				c.MaxBatchBytes = 64 * datasize.KB
			},
			wantErr: true,
		},
		{
			name: "udp batch at datagram limit",
			mutate: func(c *Config) {
				c.Mode = "udp"
				c.MaxBatchBytes = MaxDatagramBytes
			},
			wantErr: false,
		},
		{
			name:    "large tcp batch",
			mutate:  func(c *Config) { c.MaxBatchBytes = 4 * datasize.MB },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ShipperConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = "udp"
	cfg.Level = "error"
	cfg.MaxBatchBytes = 8 * datasize.KB

	sc := cfg.ShipperConfig()
	if sc.Mode != sender.ModeDatagram {
		t.Errorf("Mode = %v, want datagram", sc.Mode)
	}
	if sc.Level != wire.LevelError {
		t.Errorf("Level = %v, want error", sc.Level)
	}
	if sc.MaxBatchBytes != 8192 {
		t.Errorf("MaxBatchBytes = %v, want 8192", sc.MaxBatchBytes)
	}
	if err := sc.Validate(); err != nil {
		t.Errorf("shipper config should validate: %v", err)
	}
}

func TestByteSizeValue(t *testing.T) {
	var size datasize.ByteSize
	v := NewByteSizeValue(&size)

	if err := v.Set("16KB"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if size != 16*datasize.KB {
		t.Errorf("size = %v, want 16KB", size)
	}
	if err := v.Set("1400"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if size != 1400 {
		t.Errorf("size = %v, want 1400", size.Bytes())
	}
	if err := v.Set("lots"); err == nil {
		t.Error("Set() expected error for invalid size")
	}
	if v.Type() != "bytes" {
		t.Errorf("Type() = %v, want bytes", v.Type())
	}
}
