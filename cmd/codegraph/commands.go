// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

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

	"github.com/AleutianAI/codegraph/pkg/logging"
	"github.com/AleutianAI/codegraph/services/codegraph"
	"github.com/AleutianAI/codegraph/services/codegraph/config"
	"github.com/AleutianAI/codegraph/services/codegraph/telemetry"
	"github.com/AleutianAI/codegraph/services/codegraph/watch"
)

var (
	configPath      string
	outputDir       string
	formats         []string
	verbose         bool
	watchMode       bool
	enableTelemetry bool

	rootCmd = &cobra.Command{
		Use:   "codegraph [path]",
		Short: "Analyze a Python project and render its code graph",
		Long: `Codegraph statically analyzes a Python project and builds a
knowledge graph of its folders, files, modules, classes, and
functions, including call and import relationships. The graph is
rendered as interactive HTML, Graphviz DOT, JSON, and a plain-text
report.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runAnalyze,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: <project>_results next to the project)")
	rootCmd.Flags().StringArrayVarP(&formats, "format", "f", nil, "Output format: json, html, dot, text (repeatable; default: all)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Re-analyze whenever source files change")
	rootCmd.Flags().BoolVar(&enableTelemetry, "telemetry", false, "Export traces and metrics to stdout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if len(formats) > 0 {
		cfg.Formats = formats
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	closeLog, err := logging.Setup(logging.Config{
		Level:   level,
		Service: "codegraph",
		LogDir:  cfg.LogDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "closing log file: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if enableTelemetry {
		tcfg := telemetry.DefaultConfig()
		tcfg.TraceExporter = "stdout"
		tcfg.MetricExporter = "stdout"
		shutdown, err := telemetry.Init(ctx, tcfg)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("telemetry shutdown", slog.Any("error", err))
			}
		}()
	}

	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	svc := codegraph.NewService(cfg)
	root, err := svc.ResolveTarget(target)
	if err != nil {
		return err
	}

	run, err := svc.Run(ctx, root)
	if err != nil {
		return err
	}
	printSummary(run)

	if !watchMode {
		return nil
	}
	return watchLoop(ctx, svc, cfg, root)
}

// watchLoop re-runs the analysis whenever the tree changes, until
// the context is canceled.
func watchLoop(ctx context.Context, svc *codegraph.Service, cfg *config.Config, root string) error {
	runs := make(chan struct{}, 1)
	w, err := watch.New(root, cfg.SourceExtensions, func(changes []watch.Change) {
		slog.Info("source changed", slog.Int("files", len(changes)))
		select {
		case runs <- struct{}{}:
		default:
		}
	}, &watch.Options{Debounce: cfg.WatchDebounce})
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Watching %s for changes (Ctrl-C to stop)\n", root)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-runs:
			run, err := svc.Run(ctx, root)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Error("re-analysis failed", slog.Any("error", err))
				continue
			}
			printSummary(run)
		}
	}
}

func printSummary(run *codegraph.RunResult) {
	s := run.Graph.Summary
	fmt.Printf("Analysis complete in %s\n", run.Duration.Round(time.Millisecond))
	fmt.Printf("  Folders:   %d\n", s.TotalFolders)
	fmt.Printf("  Files:     %d\n", s.TotalFiles)
	fmt.Printf("  Modules:   %d\n", s.TotalModules)
	fmt.Printf("  Classes:   %d\n", s.TotalClasses)
	fmt.Printf("  Functions: %d\n", s.TotalFunctions)
	if len(run.Skipped) > 0 {
		fmt.Printf("  Skipped:   %d unparsable file(s)\n", len(run.Skipped))
	}
	fmt.Printf("Outputs written to %s\n", run.OutputDir)
}
