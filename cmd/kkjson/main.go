package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kkjson/internal/engine"
	"kkjson/internal/logging"
	"kkjson/internal/table"
	"kkjson/sink/file"
	"kkjson/source"
)

func newRootCmd() *cobra.Command {
	var (
		cfg     engine.Config
		logJSON bool
	)
	cmd := &cobra.Command{
		Use:   "kkjson",
		Short: "Convert a household registry table into one JSON document per household",
		Long: `kkjson reads a registry export (one row per person), groups the rows by
household number and writes one JSON document per household, named <kk>.json.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("log-json") {
				cfg.LogJSON = &logJSON
			}
			e, err := engine.Bootstrap(cfg)
			if err != nil {
				return err
			}
			return e.Run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.PipelineYml, "pipeline", "p", "", "job file (YAML); built-in defaults when empty")
	f.StringVarP(&cfg.Input, "input", "i", "", "input table (.csv or .xlsx), default data_keluarga.csv")
	f.StringVarP(&cfg.Output, "output", "o", "", "output folder for <kk>.json files, default hasil_json")
	f.StringVarP(&cfg.GroupingKey, "key", "k", "", `household number column, default "NO KK"`)
	f.StringVar(&cfg.Encoding, "encoding", "", "input encoding: auto, utf-8, latin-1, windows-1252")
	f.StringSliceVar(&cfg.Sinks, "sink", nil, "sinks to write to: file, stdout, kafka")
	f.StringVar(&cfg.MetricsFile, "metrics-file", "", "write run counters to this Prometheus textfile")
	f.StringVar(&cfg.LogLevel, "log-level", "", "debug, info, warn or error")
	f.BoolVar(&logJSON, "log-json", false, "log as JSON lines")
	return cmd
}

func main() {
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		code := report(err)
		stop()
		os.Exit(code)
	}
}

// report logs err for the operator and returns the process exit status.
// A missing household column stops the conversion but is not a process
// failure, so it exits 0.
func report(err error) int {
	log := logging.L()
	switch {
	case errors.Is(err, source.ErrInputUnreadable):
		log.Error("input file not found or unreadable", "err", err)
	case errors.Is(err, source.ErrEncoding):
		log.Error("input could not be decoded", "err", err)
	case errors.Is(err, table.ErrKeyMissing):
		log.Error("household number column not found; check the column name or pass --key", "err", err)
		return 0
	case errors.Is(err, file.ErrNameCollision):
		log.Error("two households map to the same output file", "err", err)
	default:
		log.Error("unexpected error", "err", err)
	}
	return 1
}
