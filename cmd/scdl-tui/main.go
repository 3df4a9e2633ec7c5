package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/handiism/soundcloud-downloader/internal/config"
	"github.com/handiism/soundcloud-downloader/internal/logger"
	"github.com/handiism/soundcloud-downloader/internal/tui"
)

func main() {
	configFlag := flag.String("config", config.DefaultPath(), "Path to config file")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The alternate screen owns the terminal, so logs always go to a file.
	logCfg := settings.ToLoggerConfig()
	if logCfg.OutputPath == "" || logCfg.OutputPath == "stderr" || logCfg.OutputPath == "stdout" {
		logCfg.OutputPath = config.DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(logCfg.OutputPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := tui.Run(settings, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
