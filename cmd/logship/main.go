package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/logship/internal/cliconfig"
	logAdapter "github.com/bft-labs/logship/pkg/log"
	"github.com/bft-labs/logship/pkg/wire"
)

const helpDescription = `
Pack log records into compact binary batches and ship them over TCP or UDP.

Highlights:
  - One batch per send: a fixed header followed by length-prefixed records.
  - TCP resumes short writes; UDP sends each batch as exactly one datagram.
  - Follow a log file and ship every new line, surviving rotation.
  - Configure via file, env (LOGSHIP_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  logship send --host 10.0.0.5 --port 9101 -m "Service started"
  logship tail /var/log/app.log --mode udp --metrics-addr :9102
  logship decode batch.bin
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries the resolved configuration and logger into the subcommands.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

func newApp() *app {
	log, _ := logAdapter.NewConsoleLogger("info")
	return &app{cfg: cliconfig.DefaultConfig(), log: log}
}

func main() {
	a := newApp()
	if err := a.rootCmd().Execute(); err != nil {
		a.log.Error().Err(err).Msg("logship")
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "logship",
		Short:         "Ship log records as binary batches over TCP or UDP",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s (wire %s) %s/%s", getVersion(), wire.Version, runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.logship/config.toml)")
	f.StringVar(&a.cfg.Host, "host", a.cfg.Host, "destination host name or IP address")
	f.Uint16Var(&a.cfg.Port, "port", a.cfg.Port, "destination port")
	f.StringVar(&a.cfg.Mode, "mode", a.cfg.Mode, "transport: tcp or udp")
	f.Uint32Var(&a.cfg.Magic, "magic", a.cfg.Magic, "batch header magic number")
	f.Uint32Var(&a.cfg.Version, "format-version", a.cfg.Version, "batch header format version")
	f.StringVar(&a.cfg.Level, "level", a.cfg.Level, "record level: trace, debug, info, warn, error")
	f.Uint16Var(&a.cfg.Code, "code", a.cfg.Code, "record event code")
	f.Var(cliconfig.NewByteSizeValue(&a.cfg.MaxBatchBytes), "max-batch-bytes", "maximum encoded bytes per batch (e.g. 1400, 8KB)")
	f.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level for logship itself")

	root.AddCommand(a.sendCmd(), a.tailCmd(), a.decodeCmd())
	return root
}

// load resolves configuration with precedence flags > env > file > defaults,
// then builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	// Build set of changed flags
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	} else if a.cfgPath != "" {
		return fmt.Errorf("config file %s not found", a.cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}

	log, err := logAdapter.NewConsoleLogger(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = log

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.log.Debug().Interface("config", a.cfg).Msg("configuration")
	return nil
}

// logger wraps the zerolog logger for the library packages.
func (a *app) logger() logAdapter.Logger {
	return logAdapter.NewZerologAdapterWithLogger(a.log)
}
