// # cmd/docgraph/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"docgraph/internal/config"
	"docgraph/internal/corpus"
	"docgraph/internal/manager"
	"docgraph/internal/render"
	"docgraph/internal/shared/observability"
)

var (
	configPath = flag.String("config", "", "Path to config file (defaults apply when omitted)")
	corpusPath = flag.String("corpus", "./corpus.json", "Path to the corpus document")
	workers    = flag.Int("workers", -1, "Export worker count; overrides config when >= 0")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("docgraph v%s\n", VERSION)
		os.Exit(0)
	}

	_ = godotenv.Load()

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	shutdown, err := observability.InitTracing(ctx)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdown(ctx) }()

	// Load config
	cfg := config.Default()
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	if *workers >= 0 {
		cfg.Export.Workers = *workers
	}

	entities, err := corpus.Load(*corpusPath)
	if err != nil {
		slog.Error("failed to load corpus", "error", err, "path", *corpusPath)
		os.Exit(1)
	}

	renderer := render.NewGraphviz(render.GraphvizOptions{
		Binary:     cfg.Render.Binary,
		RatePerSec: cfg.Render.RatePerSec,
		Burst:      cfg.Render.Burst,
		CacheSize:  cfg.Render.CacheSize,
	})
	if !renderer.Available() {
		slog.Warn("graphviz not found; diagrams degrade to empty output")
	}

	mgr, err := manager.New(cfg, renderer)
	if err != nil {
		slog.Error("failed to initialize graph manager", "error", err)
		os.Exit(1)
	}

	for _, e := range entities {
		if err := mgr.Register(e); err != nil {
			slog.Error("failed to register entity", "entity", e.ID, "error", err)
			os.Exit(1)
		}
	}

	slog.Info("generating graphs", "run_id", mgr.RunID(), "entities", len(entities))
	if err := mgr.BuildAll(ctx); err != nil {
		slog.Error("graph construction failed", "error", err)
		os.Exit(1)
	}

	if err := mgr.Export(ctx); err != nil {
		slog.Error("graph export failed", "error", err)
		os.Exit(1)
	}

	slog.Info("done", "run_id", mgr.RunID(), "output", cfg.OutputDir)
}
