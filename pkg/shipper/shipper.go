// Package shipper turns text lines into log records and ships them in batches.
//
// Records are split into batches no larger than MaxBatchBytes, each batch is
// encoded with the wire package and handed to a sender.Sender exactly once.
// A failed batch is logged and dropped; nothing is retried or queued.
package shipper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/bft-labs/logship/pkg/clock"
	"github.com/bft-labs/logship/pkg/log"
	"github.com/bft-labs/logship/pkg/sender"
	"github.com/bft-labs/logship/pkg/wire"
)

// Config holds the destination and record defaults for a Shipper.
type Config struct {
	Host string
	Port uint16
	Mode sender.Mode

	Magic   uint32
	Version uint32

	// Level and Code are stamped on every record built from a line.
	Level wire.Level
	Code  uint16

	// MaxBatchBytes bounds the encoded size of one batch, header included.
	MaxBatchBytes int
}

// minBatchBytes fits the header and one record with a one-byte message.
const minBatchBytes = wire.HeaderLen + wire.RecordHeaderLen + 1

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port == 0 {
		return errors.New("port is required")
	}
	if c.MaxBatchBytes < minBatchBytes {
		return fmt.Errorf("max batch bytes must be at least %d", minBatchBytes)
	}
	return nil
}

// Stats counts what a Shipper has done so far.
type Stats struct {
	Batches   uint64
	Records   uint64
	Bytes     uint64
	Failures  uint64
	Truncated uint64
}

// Shipper encodes and sends records. It is safe for concurrent use.
type Shipper struct {
	cfg    Config
	sender sender.Sender
	clock  clock.Clock
	logger log.Logger

	batches   atomic.Uint64
	records   atomic.Uint64
	bytes     atomic.Uint64
	failures  atomic.Uint64
	truncated atomic.Uint64
}

// New creates a Shipper. A nil clock uses the wall clock and a nil logger discards output.
func New(cfg Config, snd sender.Sender, clk clock.Clock, logger log.Logger) (*Shipper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if snd == nil {
		return nil, errors.New("sender is required")
	}
	if clk == nil {
		clk = clock.System
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Shipper{cfg: cfg, sender: snd, clock: clk, logger: logger}, nil
}

// Records builds one record per line. Messages are cut at a UTF-8 boundary so
// that every record fits in a single batch on its own.
func (s *Shipper) Records(lines []string) []wire.Record {
	limit := s.cfg.MaxBatchBytes - wire.HeaderLen - wire.RecordHeaderLen
	if limit > wire.MaxMessageLen {
		limit = wire.MaxMessageLen
	}

	now := s.clock.NowMillis()
	records := make([]wire.Record, len(lines))
	for i, line := range lines {
		msg := truncate(line, limit)
		if len(msg) < len(line) {
			s.truncated.Add(1)
			s.logger.Warn("message truncated", log.Int("from", len(line)), log.Int("to", len(msg)))
		}
		records[i] = wire.Record{
			TimestampMs: now,
			Level:       s.cfg.Level,
			Code:        s.cfg.Code,
			Message:     msg,
		}
	}
	return records
}

// Ship converts lines to records and sends them.
func (s *Shipper) Ship(ctx context.Context, lines []string) error {
	return s.Send(ctx, s.Records(lines))
}

// Send splits records into batches and sends each one once. It returns the
// joined errors of all failed batches.
func (s *Shipper) Send(ctx context.Context, records []wire.Record) error {
	var errs []error
	for _, batch := range Split(records, s.cfg.MaxBatchBytes) {
		if err := s.sendBatch(ctx, batch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Shipper) sendBatch(ctx context.Context, batch []wire.Record) error {
	buf, err := wire.Encode(batch, s.cfg.Magic, s.cfg.Version)
	if err != nil {
		s.failures.Add(1)
		s.logger.Error("encode failed", log.Err(err), log.Int("records", len(batch)))
		return fmt.Errorf("encode batch: %w", err)
	}

	start := time.Now()
	err = s.sender.Send(ctx, s.cfg.Host, s.cfg.Port, s.cfg.Mode, buf)
	duration := time.Since(start)
	if err != nil {
		s.failures.Add(1)
		s.logger.Error("send failed",
			log.Err(err),
			log.Int("records", len(batch)),
			log.Int("bytes", len(buf)),
		)
		return fmt.Errorf("send batch: %w", err)
	}

	s.batches.Add(1)
	s.records.Add(uint64(len(batch)))
	s.bytes.Add(uint64(len(buf)))
	s.logger.Debug("sent batch",
		log.Int("records", len(batch)),
		log.Int("bytes", len(buf)),
		log.Duration("duration", duration),
	)
	return nil
}

// Stats returns a snapshot of the counters.
func (s *Shipper) Stats() Stats {
	return Stats{
		Batches:   s.batches.Load(),
		Records:   s.records.Load(),
		Bytes:     s.bytes.Load(),
		Failures:  s.failures.Load(),
		Truncated: s.truncated.Load(),
	}
}

// Split groups records, in order, into batches whose encoded size stays within
// maxBytes. A record that is too large on its own still gets a batch of its own.
func Split(records []wire.Record, maxBytes int) [][]wire.Record {
	var out [][]wire.Record
	start, size := 0, wire.HeaderLen
	for i, r := range records {
		n := wire.RecordLen(r)
		if i > start && size+n > maxBytes {
			out = append(out, records[start:i])
			start, size = i, wire.HeaderLen
		}
		size += n
	}
	if start < len(records) {
		out = append(out, records[start:])
	}
	return out
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
