package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/dirmirror/internal/config"
	"github.com/nao1215/dirmirror/internal/log"
	"github.com/nao1215/dirmirror/internal/metrics"
	"github.com/nao1215/dirmirror/internal/mirror"
	"github.com/nao1215/dirmirror/internal/model"
	"github.com/nao1215/dirmirror/internal/report"
)

// NewMirrorCmd creates the mirror command.
func NewMirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror [server-address]",
		Short: "Mirror a directory listing server into a local directory",
		Long: `Mirror walks every listing page below the server address and downloads
each file that does not exist locally yet.

Paths are decoded before they touch the disk, so "my%20file.txt" is stored as
"my file.txt". Directory entries and .lnk files are skipped. The first error
(HTTP status, timeout, filesystem) stops the run; files downloaded before it
are kept and a rerun resumes where it stopped.

Examples:
  # Mirror python -m http.server on the default port into the current directory
  dirmirror mirror

  # Mirror a remote server into ./backup
  dirmirror mirror http://192.168.1.20:8080/ -o ./backup

  # Longer timeout, limit recursion, JSON summary
  dirmirror mirror http://nas.local/pub/ -t 30s -d 5 --json

  # Go through a SOCKS5 proxy and write node_exporter metrics
  dirmirror mirror http://files.internal/ -x 127.0.0.1:1080 --metrics-file /var/lib/node_exporter/dirmirror.prom`,
		Args: cobra.MaximumNArgs(1),
		RunE: runMirrorCmd,
	}

	// Connection flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request (connect, headers and body)")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:1080)")
	cmd.Flags().String("user-agent", "",
		"User-Agent header (default: dirmirror/<version>)")

	// Mirror behavior flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Local directory to mirror into (created if needed)")
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum listing depth below the server root (0 = unlimited)")
	cmd.Flags().Int("chunk-size", config.DefaultChunkSize,
		"Download buffer size in bytes")
	cmd.Flags().Bool("no-dir-markers", false,
		"Do not pass directory entries to the fetcher")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: ./dirmirror.yaml or the XDG config directory)")

	// Output flags
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write the summary to the specified file instead of stdout")
	cmd.Flags().String("metrics-file", "",
		"Write Prometheus metrics in textfile format to the specified path")

	return cmd
}

// runMirrorCmd executes the mirror command.
func runMirrorCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), log.Options{
		Verbose: cfg.Verbose,
		JSON:    cfg.LogJSON,
	})
	if cfg.IgnoredConfigFile != "" {
		logger.Debug("config file unreadable, using defaults", "file", cfg.IgnoredConfigFile)
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runMirror(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the config file and the
// command flags, in increasing order of precedence. Flags only override the
// file when they were set explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.UserAgent = userAgent()

	var err error
	flags := cmd.Flags()

	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if _, err := cfg.Load(); err != nil {
		return nil, err
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output") {
		if cfg.OutputDir, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-depth") {
		if cfg.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("chunk-size") {
		if cfg.ChunkSize, err = flags.GetInt("chunk-size"); err != nil {
			return nil, err
		}
	}

	if cfg.SkipDirectoryMarkers, err = flags.GetBool("no-dir-markers"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, err
	}
	if cfg.MetricsFile, err = flags.GetString("metrics-file"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// Positional server address wins over the config file
	if len(args) > 0 {
		cfg.ServerAddress = args[0]
	}
	cfg.Normalize()

	return cfg, nil
}

// runMirror performs one mirror run and prints its summary. The summary is
// printed even when the run fails, and the run error is returned after it.
func runMirror(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		rec = metrics.NewRecorder()
	}

	m, err := mirror.New(cfg, mirror.WithLogger(logger), mirror.WithMetrics(rec))
	if err != nil {
		return err
	}

	summary, runErr := m.Run(ctx)

	if err := outputReport(cfg, summary, stdout); err != nil {
		logger.Error("report failed", "error", err)
	}
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Error("failed to write metrics", "path", cfg.MetricsFile, "error", err)
	}

	return runErr
}

// outputReport outputs the summary in the requested format.
func outputReport(cfg *config.Config, summary *model.Summary, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	}

	format := report.FormatSimple
	switch {
	case cfg.JSONReport:
		format = report.FormatJSON
	case cfg.MarkdownReport:
		format = report.FormatMarkdown
	}

	_, err := report.New(format, output).Write(summary)
	return err
}
