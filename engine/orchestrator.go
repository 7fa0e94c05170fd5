package engine

import (
	"fmt"

	"github.com/gohugoio/hashstructure"
	lru "github.com/hashicorp/golang-lru"
)

// ============================================================================
// ORCHESTRATOR — Dispatcher + memoizing pipeline
// ============================================================================
// Entry points:
//   Configure(chartType, rows, columns, cfg, opts...)   un-memoized
//   NewPipeline(opts...).Configure(...)                 memoized
//
// Pipeline:
//   1. Resolve chart type against the closed registry
//   2. Validate config directives
//   3. Build datasets (validates axes, samples, transforms)
//   4. Append trendline overlays
//   5. Build options from the final datasets and the theme
//
// A configuration error aborts before any output is produced.
// ============================================================================

type builderPair struct {
	dataset func(*BuildInput) (ChartData, error)
	options OptionBuilder
}

// registry is the closed set of chart types.
var registry = map[ChartType]builderPair{
	ChartBar:     {dataset: BuildBarDataset, options: BuildBarOptions},
	ChartLine:    {dataset: BuildLineDataset, options: BuildLineOptions},
	ChartPie:     {dataset: BuildPieDataset, options: BuildPieOptions},
	ChartScatter: {dataset: BuildScatterDataset, options: BuildScatterOptions},
	ChartCombo:   {dataset: BuildComboDataset, options: BuildComboOptions},
}

// SupportedChartTypes lists the registry in a fixed order.
func SupportedChartTypes() []ChartType {
	return []ChartType{ChartBar, ChartLine, ChartPie, ChartScatter, ChartCombo}
}

// Configure builds a complete BackendConfig for chartType. An empty
// chartType falls back to cfg.ChartType. Inputs are never modified.
//
// Options:
//   - WithSampleThreshold(n), WithSeed(seed), WithSeedKey(key)
//   - WithTheme(theme): label styling, FallbackTheme otherwise
//   - WithLogger(logger)
func Configure(chartType ChartType, rows []Row, columns []ColumnMeta, cfg ChartConfig, opts ...Option) (*BackendConfig, error) {
	return configure(chartType, rows, columns, cfg, applyOptions(opts))
}

func configure(chartType ChartType, rows []Row, columns []ColumnMeta, cfg ChartConfig, c *config) (*BackendConfig, error) {
	if chartType == "" {
		chartType = cfg.ChartType
	}
	pair, ok := registry[chartType]
	if !ok {
		return nil, newUnknownChartType(chartType)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	in := newBuildInput(rows, columns, cfg, c)
	data, err := pair.dataset(in)
	if err != nil {
		return nil, err
	}
	appendTrendlines(in, chartType, &data)

	options, err := pair.options(in, data, c.theme())
	if err != nil {
		return nil, err
	}

	c.Logger.Debug().
		Str("chart_type", string(chartType)).
		Int("rows", len(rows)).
		Int("datasets", len(data.Datasets)).
		Msg("📊 Built chart configuration")

	return &BackendConfig{Type: chartType, Data: data, Options: options}, nil
}

// ============================================================================
// PIPELINE — Memoized Configure
// ============================================================================

// Pipeline memoizes Configure. Options are fixed at construction, so the
// key only covers the per-call inputs. Rows are identified shallowly by
// their backing array and length: mutating rows in place after a call is
// not detected. Cached configs are shared and must be treated as read-only.
//
// A Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg   *config
	cache *lru.Cache
}

type memoKey struct {
	structural uint64
	rows       *Row
	n          int
}

// memoInputs is the hashed portion of the key.
type memoInputs struct {
	ChartType ChartType
	Columns   []ColumnMeta
	Config    ChartConfig
}

// NewPipeline creates a memoizing orchestrator. WithCacheSize bounds the memo.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	c := applyOptions(opts)
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	cache, err := lru.New(c.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create memo cache: %w", err)
	}
	return &Pipeline{cfg: c, cache: cache}, nil
}

// Configure returns the memoized BackendConfig for the inputs, building it
// on a miss. Errors are never cached.
func (p *Pipeline) Configure(chartType ChartType, rows []Row, columns []ColumnMeta, cfg ChartConfig) (*BackendConfig, error) {
	if chartType == "" {
		chartType = cfg.ChartType
	}
	key, err := p.key(chartType, rows, columns, cfg)
	if err != nil {
		// Unhashable input: build without the memo.
		p.cfg.Logger.Warn().Err(err).Msg("Memo key unavailable")
		return configure(chartType, rows, columns, cfg, p.cfg)
	}

	if v, ok := p.cache.Get(key); ok {
		p.logMemo(true, chartType)
		return v.(*BackendConfig), nil
	}
	p.logMemo(false, chartType)

	out, err := configure(chartType, rows, columns, cfg, p.cfg)
	if err != nil {
		return nil, err
	}
	p.cache.Add(key, out)
	return out, nil
}

// Len returns the number of memoized configurations.
func (p *Pipeline) Len() int { return p.cache.Len() }

// Purge drops every memoized configuration.
func (p *Pipeline) Purge() { p.cache.Purge() }

func (p *Pipeline) key(chartType ChartType, rows []Row, columns []ColumnMeta, cfg ChartConfig) (memoKey, error) {
	h, err := hashstructure.Hash(memoInputs{ChartType: chartType, Columns: columns, Config: cfg}, nil)
	if err != nil {
		return memoKey{}, fmt.Errorf("hash chart inputs: %w", err)
	}
	k := memoKey{structural: h, n: len(rows)}
	if len(rows) > 0 {
		k.rows = &rows[0]
	}
	return k, nil
}

func (p *Pipeline) logMemo(hit bool, chartType ChartType) {
	p.cfg.Logger.Debug().
		Bool("hit", hit).
		Str("chart_type", string(chartType)).
		Int("cached", p.cache.Len()).
		Msg("Memo lookup")
}
