package engine

import (
	"github.com/rs/zerolog"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Configure() and NewPipeline()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	SampleThreshold int
	Seed            uint64 // 0 = non-deterministic sampling
	Theme           *Theme // nil = FallbackTheme
	Logger          zerolog.Logger
	CacheSize       int
}

// WithSampleThreshold overrides DefaultSampleThreshold.
func WithSampleThreshold(n int) Option {
	return func(c *config) {
		c.SampleThreshold = n
	}
}

// WithSeed makes sampling reproducible. 0 restores random sampling.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.Seed = seed
	}
}

// WithSeedKey derives the sampling seed from a stable identifier,
// e.g. a saved query id, so re-renders of the same query pick the same rows.
func WithSeedKey(key string) Option {
	return func(c *config) {
		c.Seed = SeedFromKey(key)
	}
}

// WithTheme supplies the live theme used for label styling.
func WithTheme(t Theme) Option {
	return func(c *config) {
		c.Theme = &t
	}
}

// WithLogger injects a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.Logger = l
	}
}

// WithCacheSize bounds a Pipeline's memo. Ignored by Configure.
func WithCacheSize(n int) Option {
	return func(c *config) {
		c.CacheSize = n
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		SampleThreshold: DefaultSampleThreshold,
		Logger:          zerolog.Nop(),
		CacheSize:       DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) sampler() *Sampler {
	return NewSampler(c.SampleThreshold, c.Seed)
}

func (c *config) theme() Theme {
	if c.Theme == nil {
		return FallbackTheme
	}
	return c.Theme.resolve()
}

func (c *config) palette() []string {
	if c.Theme == nil {
		return nil
	}
	return c.Theme.Palette
}
