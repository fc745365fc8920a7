package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bft-labs/logship/pkg/clock"
	"github.com/bft-labs/logship/pkg/sender"
	"github.com/bft-labs/logship/pkg/shipper"
	"github.com/bft-labs/logship/pkg/wire"
)

func (a *app) sendCmd() *cobra.Command {
	var (
		messages []string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one set of records",
		Long: "Build one record per --message using the configured level and code and send them.\n" +
			"Without --message two sample records are sent.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []wire.Record
			if len(messages) == 0 {
				records = sampleRecords(clock.System)
			} else {
				records = recordsFor(messages, a.cfg.RecordLevel(), a.cfg.Code, clock.System)
			}

			if outPath != "" {
				buf, err := wire.Encode(records, a.cfg.Magic, a.cfg.Version)
				if err != nil {
					return err
				}
				if err := os.WriteFile(outPath, buf, 0o644); err != nil {
					return fmt.Errorf("write batch: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records (%d bytes) to %s\n", len(records), len(buf), outPath)
				return nil
			}

			stack, err := sender.Open()
			if err != nil {
				return err
			}
			defer stack.Close()

			shp, err := shipper.New(a.cfg.ShipperConfig(), stack, clock.System, a.logger())
			if err != nil {
				return err
			}
			err = shp.Send(cmd.Context(), records)

			stats := shp.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d records in %d batches (%d bytes) to %s:%d over %s\n",
				stats.Records, stats.Batches, stats.Bytes, a.cfg.Host, a.cfg.Port, a.cfg.TransportMode().Network())
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&messages, "message", "m", nil, "record message (repeatable)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the encoded batch to a file instead of sending it")
	return cmd
}

// sampleRecords returns a startup notice and a failure report, half a second apart.
func sampleRecords(clk clock.Clock) []wire.Record {
	now := clk.NowMillis()
	return []wire.Record{
		{TimestampMs: now, Level: wire.LevelInfo, Code: 1001, Message: "Service started"},
		{TimestampMs: now + 500, Level: wire.LevelError, Code: 5001, Message: "Database connection failed"},
	}
}

func recordsFor(messages []string, level wire.Level, code uint16, clk clock.Clock) []wire.Record {
	now := clk.NowMillis()
	records := make([]wire.Record, len(messages))
	for i, m := range messages {
		records[i] = wire.Record{TimestampMs: now, Level: level, Code: code, Message: m}
	}
	return records
}
