// Command scdl downloads tracks, playlists and profiles from SoundCloud.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/soundcloud-downloader/internal/config"
	"github.com/handiism/soundcloud-downloader/internal/download"
	"github.com/handiism/soundcloud-downloader/internal/logger"
)

var (
	configPath string
	outputDir  string
	verbose    bool
	debug      bool

	settings *config.Settings
	log      *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "scdl",
		Short: "scdl - Download music from SoundCloud",
		Long: `Download tracks, playlists, albums and whole profiles from SoundCloud.

For interactive mode, use: scdl-tui`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug logs to stderr")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(clientIDCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "\nCancelled.")
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func setup(_ *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	s, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if outputDir != "" {
		s.DownloadsPath = filepath.Join(outputDir, "{artist}", "{playlist}")
	}
	settings = s

	log, err = newLogger(s)
	return err
}

// newLogger keeps the terminal for progress output: unless --debug is
// set, terminal log outputs are redirected to the default log file.
func newLogger(s *config.Settings) (*zap.Logger, error) {
	cfg := s.ToLoggerConfig()
	switch {
	case debug:
		cfg.Level = "debug"
		cfg.OutputPath = "stderr"
	case cfg.OutputPath == "" || cfg.OutputPath == "stderr" || cfg.OutputPath == "stdout":
		cfg.OutputPath = config.DefaultLogPath()
	}
	if cfg.OutputPath != "stderr" && cfg.OutputPath != "stdout" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}
	return logger.New(cfg)
}

// newManager builds a manager that prints events to the terminal.
func newManager() *download.Manager {
	return download.NewManager(settings, printEvent, download.WithLogger(log))
}

var (
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
	titleColor   = color.New(color.FgHiRed, color.Bold)
)

func printEvent(event download.ProgressEvent) {
	switch event.Level {
	case download.LevelVerbose:
		if verbose {
			dimColor.Println("  " + event.Message)
		}
	case download.LevelError:
		errorColor.Fprintln(os.Stderr, "✗ "+event.Message)
	case download.LevelWarning:
		warningColor.Println("! " + event.Message)
	case download.LevelSuccess:
		successColor.Println("✓ " + event.Message)
	default:
		infoColor.Println("› " + event.Message)
	}
}
