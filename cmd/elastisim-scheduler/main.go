// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Command elastisim-scheduler connects to a running ElastiSim simulator over its IPC
// channel and schedules jobs against it tick by tick, using one of the registered
// scheduling variants.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	elastisim "github.com/wagomu-sim/elastisim-scheduler"
	"github.com/wagomu-sim/elastisim-scheduler/internal/factory"
	"github.com/wagomu-sim/elastisim-scheduler/internal/transport"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/config"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/logging"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/retry"
)

var (
	ipcURL       string
	variantName  string
	eventLogPath string
	logFormat    string
	timeout      time.Duration
	maxRetries   int
	debug        bool

	rootCmd = &cobra.Command{
		Use:   "elastisim-scheduler",
		Short: "Elastic HPC batch scheduler for the ElastiSim simulator",
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Connect to the simulator and schedule jobs until the connection closes",
		RunE:  runScheduler,
	}

	variantsCmd = &cobra.Command{
		Use:   "variants",
		Short: "List the registered scheduling variants",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range factory.VariantNames() {
				fmt.Println(name)
			}
			return nil
		},
	}
)

func init() {
	cfg := config.NewDefault()

	rootCmd.PersistentFlags().StringVar(&ipcURL, "ipc-url", cfg.IPCURL, "simulator IPC channel address")
	rootCmd.PersistentFlags().StringVar(&variantName, "variant", cfg.Variant, "scheduling variant to run")
	rootCmd.PersistentFlags().StringVar(&eventLogPath, "event-log", cfg.EventLogPath, "path to write the CSV event trace")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(cfg.LogFormat), "log output format: text or json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", cfg.Timeout, "per-request timeout on the IPC channel")
	rootCmd.PersistentFlags().IntVar(&maxRetries, "max-retries", cfg.MaxRetries, "maximum retries for the initial dial")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", cfg.Debug, "enable per-tick state-dump logging")

	rootCmd.AddCommand(runCmd, variantsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := &config.Config{
		IPCURL:       ipcURL,
		Timeout:      timeout,
		MaxRetries:   maxRetries,
		Variant:      variantName,
		EventLogPath: eventLogPath,
		LogLevel:     levelFor(debug),
		LogFormat:    logging.Format(logFormat),
		Debug:        debug,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewLogger(&logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  os.Stdout,
		Variant: cfg.Variant,
	})

	opts, err := factory.DefaultOptions(cfg.EventLogPath, logger)
	if err != nil {
		return fmt.Errorf("build driver options: %w", err)
	}
	opts = append(opts, elastisim.WithDebugLogging(cfg.Debug))

	driver, err := factory.NewDriver(cfg.Variant, opts...)
	if err != nil {
		return fmt.Errorf("build driver: %w", err)
	}

	channel, err := transport.Dial(ctx, cfg.IPCURL,
		transport.WithDialLogger(logger),
		transport.WithDialTimeout(cfg.Timeout),
		transport.WithDialRetry(retry.NewExponentialBackoff().WithMaxRetries(cfg.MaxRetries)),
	)
	if err != nil {
		return fmt.Errorf("connect to simulator: %w", err)
	}
	defer channel.Close()

	logger.Info("scheduler started", "variant", cfg.Variant, "ipc_url", cfg.IPCURL, "session_id", channel.SessionID())

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler shutting down")
			return nil
		default:
		}

		snap, err := channel.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read snapshot: %w", err)
		}

		jobs, nodes, system := transport.Decode(snap)
		if err := driver.Tick(jobs, nodes, system); err != nil {
			logger.Error("tick failed", "error", err, "request_id", snap.RequestID)
			continue
		}

		mutation := transport.Encode(snap.RequestID, jobs, nodes)
		if err := channel.Reply(ctx, mutation); err != nil {
			return fmt.Errorf("send mutation: %w", err)
		}
	}
}

func levelFor(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
