package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bft-labs/logship/pkg/wire"
)

func (a *app) decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file>",
		Short: "Print the records of an encoded batch as tab-separated lines",
		Long:  "Decode a raw batch and print one line per record: timestamp, level, code and message.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			records, err := wire.Decode(buf, a.cfg.Magic, a.cfg.Version)
			if err != nil {
				return err
			}
			return writeTSV(cmd.OutOrStdout(), records)
		},
	}
}

func writeTSV(w io.Writer, records []wire.Record) error {
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", r.TimestampMs, r.Level, r.Code, r.Message); err != nil {
			return err
		}
	}
	return nil
}
