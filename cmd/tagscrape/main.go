package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/tagscrape/internal/app"
)

func main() {
	// Console logging until the configured log file is known
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	flagged := app.DefaultConfig()
	opts := app.Options{EnvFiles: ".env"}
	app.BindFlags(flag.CommandLine, &flagged, &opts)
	flag.Parse()

	if opts.Version {
		fmt.Printf("tagscrape %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return
	}

	if _, err := app.LoadEnvFiles(splitList(opts.EnvFiles)...); err != nil {
		log.Warn().Err(err).Msg("dotenv load failed; continuing")
	}
	cfg, err := app.ResolveConfig(flag.CommandLine, flagged, opts)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	closeLog, err := app.SetupLogging(cfg, os.Stderr)
	if err != nil {
		log.Error().Err(err).Msg("logging setup failed")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		_ = closeLog()
		os.Exit(1)
	}
	_ = closeLog()
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	_, err = a.Run(ctx)
	return err
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
