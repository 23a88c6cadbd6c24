// Command kyev-server runs the RSP-compatible in-memory key/value server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jffjs/kyev/internal/config"
	kyeverrors "github.com/jffjs/kyev/internal/errors"
	"github.com/jffjs/kyev/internal/flags"
	"github.com/jffjs/kyev/internal/logging"
	"github.com/jffjs/kyev/internal/server"
	"github.com/jffjs/kyev/internal/telemetry"
)

var version = "0.1.0" // set during build with -ldflags

var rootCmd = &cobra.Command{
	Use:     "kyev-server",
	Short:   "kyev - an in-memory, RSP-compatible key/value server",
	Version: version,
	RunE:    runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logging.New("main")
	sugar := log.Sugar()

	// LOG_LEVEL/LOG_FORMAT set the level and encoding baked in at process
	// start; --log-level/KYEV_LOG_LEVEL can still override the level
	// (format can't change post-init, since it's baked into the encoder).
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		sugar.Warnw("ignoring invalid log_level from config", "log_level", cfg.LogLevel, "error", err)
	}

	if cfg.SentryDSN != "" {
		os.Setenv("SENTRY_DSN", cfg.SentryDSN)
	}
	kyeverrors.Init(version)
	flags.Init(cfg.LaunchDarklyKey)
	defer flags.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	tel, err := telemetry.Start(ctx, "kyev-server", version)
	cancel()
	if err != nil {
		sugar.Warnw("tracing disabled: failed to start telemetry", "error", err)
	} else {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = tel.Shutdown(shutdownCtx)
		}()
	}

	config.WatchLogLevel()

	sugar.Infow("starting kyev-server",
		"version", version,
		"addr", cfg.Addr(),
		"metrics_addr", cfg.MetricsAddr,
	)

	srv := server.New(cfg.Addr(), log)
	srv.SetLimits(cfg.MaxClients, cfg.ReadBuffer, cfg.Timeout)
	if err := srv.Listen(); err != nil {
		return err
	}
	server.ServeMetrics(cfg.MetricsAddr, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- srv.Serve()
	}()

	select {
	case sig := <-sigCh:
		sugar.Infow("shutting down", "signal", sig.String())
		srv.Shutdown()
		srv.Wait()
	case err := <-serveErrCh:
		if err != nil {
			return fmt.Errorf("server exited: %w", err)
		}
	}

	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		fmt.Printf("Host: %s\n", cfg.Host)
		fmt.Printf("Port: %d\n", cfg.Port)
		fmt.Printf("Max Clients: %d\n", cfg.MaxClients)
		fmt.Printf("Read Buffer: %d bytes\n", cfg.ReadBuffer)
		fmt.Printf("Timeout: %v\n", cfg.Timeout)
		fmt.Printf("Log Level: %s\n", cfg.LogLevel)
		fmt.Printf("Log Format: %s\n", cfg.LogFormat)
		fmt.Printf("Metrics Addr: %s\n", cfg.MetricsAddr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("host", "H", "127.0.0.1", "Host to bind to")
	rootCmd.PersistentFlags().IntP("port", "p", 8080, "Port to listen on")
	rootCmd.PersistentFlags().Int("max-clients", 10000, "Maximum number of clients")
	rootCmd.PersistentFlags().Int("read-buffer-bytes", 4096, "Per-connection read buffer size")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Client idle timeout")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format shown by the config subcommand (the encoder follows LOG_FORMAT)")
	rootCmd.PersistentFlags().String("metrics-addr", "127.0.0.1:9090", "Prometheus /metrics listen address")
	rootCmd.PersistentFlags().String("launchdarkly-key", "", "LaunchDarkly SDK key (empty runs flags offline)")
	rootCmd.PersistentFlags().String("sentry-dsn", "", "Sentry DSN (overrides SENTRY_DSN; reporting is off when neither is set)")

	viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("max_clients", rootCmd.PersistentFlags().Lookup("max-clients"))
	viper.BindPFlag("read_buffer_bytes", rootCmd.PersistentFlags().Lookup("read-buffer-bytes"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("metrics_addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))
	viper.BindPFlag("launchdarkly_key", rootCmd.PersistentFlags().Lookup("launchdarkly-key"))
	viper.BindPFlag("sentry_dsn", rootCmd.PersistentFlags().Lookup("sentry-dsn"))

	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
