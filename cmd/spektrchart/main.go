package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/spektr-org/spektrchart/engine"
	"github.com/spektr-org/spektrchart/helpers"
	"github.com/spektr-org/spektrchart/internal/api"
	"github.com/spektr-org/spektrchart/internal/config"
	"github.com/spektr-org/spektrchart/internal/logger"
	"github.com/spektr-org/spektrchart/schema"
)

// ============================================================================
// SPEKTRCHART CLI — CSV + chart config → render-ready chart configuration
// ============================================================================

const version = "0.3.0"

func main() {
	opt, err := Parse(os.Args[1:])
	if err != nil {
		if IsHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opt.Version {
		fmt.Printf("spektrchart %s\n", version)
		return
	}

	cfg, err := config.Load(opt.Config)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	log := logger.Get("cli")

	if opt.Serve {
		serve(cfg, log)
		return
	}

	if opt.File == "" {
		fatalf("--file is required (or --serve)")
	}

	// ── Output writer ─────────────────────────────────────────────────────
	var writer io.Writer = os.Stdout
	if opt.Out != "" {
		f, err := os.Create(opt.Out)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	// ── Read + discover ───────────────────────────────────────────────────
	data, err := os.ReadFile(opt.File)
	if err != nil {
		fatalf("Failed to read file: %v", err)
	}

	discoverOpts := schema.DefaultDiscoverOptions()
	discoverOpts.Name = filepath.Base(opt.File)
	d, err := schema.DiscoverColumns(data, discoverOpts)
	if err != nil {
		fatalf("Column discovery failed: %v", err)
	}
	log.Info().
		Str("dataset", d.Name).
		Int("columns", len(d.Columns)).
		Int("skipped", len(d.SkippedColumns)).
		Msg("🔍 Discovered columns")

	// ── Discover mode ─────────────────────────────────────────────────────
	if opt.Discover {
		out := discoverOutput{Discovery: d}
		if suggestion, err := schema.SuggestChart(*d); err == nil {
			out.Suggested = &suggestion
		} else {
			log.Warn().Err(err).Msg("No chart suggestion for this dataset")
		}
		if err := writeJSON(writer, out, opt.Format); err != nil {
			fatalf("%v", err)
		}
		return
	}

	// ── Chart config ──────────────────────────────────────────────────────
	chartCfg, err := loadChartConfig(opt.Chart, d)
	if err != nil {
		fatalf("%v", err)
	}
	if opt.Chart == "" {
		log.Info().
			Str("chart_type", string(chartCfg.ChartType)).
			Str("x", chartCfg.Axis.X).
			Strs("y", chartCfg.Axis.Y).
			Msg("💡 No chart config given, using suggestion")
	}

	rows, err := helpers.ParseCSV(data, d.Columns)
	if err != nil {
		fatalf("Failed to parse CSV rows: %v", err)
	}
	log.Info().Int("rows", len(rows)).Msg("📊 Parsed rows")

	opts := append(cfg.EngineOptions(), engine.WithLogger(log))
	if opt.SeedKey != "" {
		opts = append(opts, engine.WithSeedKey(opt.SeedKey))
	}

	out, err := engine.Configure(engine.ChartType(opt.Type), rows, d.Columns, chartCfg, opts...)
	if err != nil {
		var cfgErr *engine.ConfigurationError
		if errors.As(err, &cfgErr) {
			fatalf("Chart configuration rejected (%s): %v", cfgErr.Field, err)
		}
		fatalf("Chart build failed: %v", err)
	}

	// ── Render output ─────────────────────────────────────────────────────
	guard := engine.NewGuard(
		engine.RenderFunc(func(c *engine.BackendConfig) error {
			return writeOutput(writer, c, opt.Format)
		}),
		func(notice string, _ error) {
			fmt.Fprintln(os.Stderr, notice)
		},
		log,
	)
	if !guard.Render(out) {
		os.Exit(1)
	}
	if opt.Out != "" {
		log.Info().Str("path", opt.Out).Str("format", opt.Format).Msg("📄 Chart configuration written")
	}
}

// ============================================================================
// OUTPUT TYPES
// ============================================================================

type discoverOutput struct {
	Discovery *schema.Discovery   `json:"discovery"`
	Suggested *engine.ChartConfig `json:"suggestedChartConfig,omitempty"`
}

// loadChartConfig reads path, or suggests a config from the discovery when
// no path is given.
func loadChartConfig(path string, d *schema.Discovery) (engine.ChartConfig, error) {
	if path == "" {
		cfg, err := schema.SuggestChart(*d)
		if err != nil {
			return cfg, fmt.Errorf("no --chart given and no chart could be suggested: %w", err)
		}
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return engine.ChartConfig{}, fmt.Errorf("failed to read chart config: %w", err)
	}
	cfg, err := schema.LoadChartConfig(raw)
	if err != nil {
		return engine.ChartConfig{}, fmt.Errorf("chart config %s: %w", path, err)
	}
	return cfg, nil
}

// ============================================================================
// SERVER MODE
// ============================================================================

func serve(cfg *config.Config, log zerolog.Logger) {
	opts := append(cfg.EngineOptions(), engine.WithLogger(logger.Get("engine")))
	pipeline, err := engine.NewPipeline(opts...)
	if err != nil {
		fatalf("Failed to create pipeline: %v", err)
	}

	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = cfg.Server.Host
	serverCfg.Port = cfg.Server.Port
	serverCfg.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	serverCfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second
	serverCfg.BodyLimit = int(cfg.Server.MaxPayloadSize)
	serverCfg.RequestCacheSize = cfg.Engine.CacheSize

	server := api.NewServer(serverCfg, pipeline, logger.Get("api"))
	if err := server.Start(); err != nil {
		fatalf("Failed to start server: %v", err)
	}
	log.Info().Int("port", cfg.Server.Port).Msg("🚀 spektrchart API ready")

	server.WaitForShutdown(serverCfg.ShutdownTimeout)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
