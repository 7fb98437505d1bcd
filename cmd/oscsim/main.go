package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/telemetry"
	"github.com/san-kum/oscsim/internal/tui"
)

var version = "dev"

// app carries what every command needs after startup.
type app struct {
	env      config.Env
	recorder *telemetry.Recorder
	flags    runFlags
}

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	env, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid environment", "error", err)
		return 1
	}

	slog.SetDefault(newLogger(env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Init(ctx, env.OTELEndpoint, env.ServiceName, version, env.OTELInsecure)
	if err != nil {
		slog.Error("telemetry init failed", "error", err)
		return 1
	}
	defer func() { _ = shutdown(context.Background()) }()

	a := &app{env: env, recorder: telemetry.NewRecorder()}

	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		slog.Debug("command failed", "error", err)
		return 1
	}
	return 0
}

func newLogger(env config.Env) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(env.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(env.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "oscsim",
		Short:         "damped harmonic oscillator energy simulator",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.flags.resolve(cmd, a.env)
			if err != nil {
				return err
			}
			return tui.Run(cfg.Experiment())
		},
	}

	a.flags.register(rootCmd)

	rootCmd.AddCommand(
		a.runCmd(),
		a.plotCmd(),
		a.chartCmd(),
		a.analyzeCmd(),
		a.sweepCmd(),
		a.benchCmd(),
		a.presetsCmd(),
	)
	return rootCmd
}
