package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"volumeslices/internal/app"
	"volumeslices/internal/logging"
	"volumeslices/pkg/config"
	"volumeslices/pkg/dataset"
	"volumeslices/pkg/visualization"
)

func main() {
	configPath := flag.String("config", "volumeslices.yaml", "Path to the YAML configuration file")
	initConfig := flag.Bool("init-config", false, "Write a default configuration file to -config and exit")
	datasetPath := flag.String("dataset", "", "Volume file to view (overrides dataset.path)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error (overrides logging.level)")
	remoteAddr := flag.String("remote", "", "Enable the websocket orbit control on this address")
	extractSlices := flag.Bool("extract-slices", false, "Save every slice of the three axis stacks as images and exit")
	slicesDir := flag.String("slices-dir", "", "Directory for extracted slices (overrides export.outputDir)")
	format := flag.String("format", "", "Image format for extracted slices: png, jpeg, tiff or bmp")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags win over the file.
	if *datasetPath != "" {
		cfg.Dataset.Path = *datasetPath
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *remoteAddr != "" {
		cfg.Remote.Enabled = true
		cfg.Remote.Address = *remoteAddr
	}
	if *slicesDir != "" {
		cfg.Export.OutputDir = *slicesDir
	}
	if *format != "" {
		cfg.Export.Format = *format
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.Logging.Level),
	}))
	logging.SetLogger(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("configuration rejected", "config", *configPath, "err", err)
		os.Exit(1)
	}

	if *extractSlices {
		err = extract(cfg)
	} else {
		err = view(cfg)
	}
	if err != nil {
		logger.Error("volumeslices failed", "err", err)
		os.Exit(1)
	}
}

// view runs the interactive viewer until its window closes.
func view(cfg *config.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	runErr := a.Run()
	if err := a.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// extract writes the slice stacks of the configured dataset as image files.
func extract(cfg *config.Config) error {
	if cfg.Dataset.Path == "" {
		return fmt.Errorf("no dataset given: set dataset.path or -dataset")
	}

	format, err := visualization.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}

	start := time.Now()
	ds, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return err
	}

	viewer, err := visualization.NewViewer(ds, format, cfg.Export.Quality)
	if err != nil {
		return err
	}
	n, err := viewer.SaveAllStacks(cfg.Export.OutputDir)
	if err != nil {
		return err
	}

	fmt.Printf("Saved %d slices to %s in %.2f seconds\n", n, cfg.Export.OutputDir, time.Since(start).Seconds())
	return nil
}
