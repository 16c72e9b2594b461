package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/config"
	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/logging"
)

var (
	cfgFile   string
	debug     bool
	logLevel  string
	logFormat string
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reportagent",
	Short: "Report Agent: turn business files into KPIs, trends and action items",
	Long: `Report Agent analyzes CSV, Excel, JSON, PDF, Word and text files and produces a
summary, key performance indicators, trends and prioritized action items. Questions about
an analysis are answered by an AI model when one is configured, and from the analysis
itself otherwise.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = loadConfig

	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default is ~/.reportagent/config.yaml)")
	f.BoolVar(&debug, "debug", false, "enable debug logging (same as --log-level debug)")
	f.StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	f.StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
	f.IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	f.IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
	f.IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	f.IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

// loadConfig runs before every command: it loads the config, applies the
// global flag overrides and builds the logger.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands still run on defaults
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: failed to load config: %v\n", err)
		if c, err = cfgpkg.Default(); err != nil {
			return err
		}
	}
	cfg = c

	f := cmd.Root().PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}

	level, format := cfg.LogLevel, cfg.LogFormat
	if logLevel != "" {
		level = logLevel
	}
	if debug {
		level = "debug"
	}
	if logFormat != "" {
		format = logFormat
	}
	l, err := logging.New(logging.Options{Level: level, Format: format, Writer: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// commandContext returns the command's context, tagged with a run id when
// one is given.
func commandContext(cmd *cobra.Command, runID string) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if runID != "" {
		ctx = logging.WithRunID(ctx, runID)
	}
	return ctx
}
