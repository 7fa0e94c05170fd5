package engine

import (
	"github.com/rs/zerolog"
)

// ============================================================================
// RENDER ISOLATION
// ============================================================================
// The Guard sits between a built BackendConfig and the backend that draws
// it. Configuration errors never get this far: Configure reports them
// earlier. Anything the backend returns or panics with becomes a
// RenderError, is logged, and is replaced by FallbackNotice.
// ============================================================================

// FallbackNotice is the fixed user-visible message shown instead of a chart.
const FallbackNotice = "Unable to render chart"

// Renderer is the drawing backend.
type Renderer interface {
	Render(cfg *BackendConfig) error
}

// RenderFunc adapts a plain function to Renderer.
type RenderFunc func(cfg *BackendConfig) error

// Render calls f(cfg).
func (f RenderFunc) Render(cfg *BackendConfig) error { return f(cfg) }

// Guard isolates backend failures from the host.
type Guard struct {
	renderer Renderer
	fallback func(notice string, err error)
	logger   zerolog.Logger
}

// NewGuard wraps renderer. fallback receives FallbackNotice and the
// *RenderError whenever rendering fails; it may be nil.
func NewGuard(renderer Renderer, fallback func(notice string, err error), logger zerolog.Logger) *Guard {
	return &Guard{renderer: renderer, fallback: fallback, logger: logger}
}

// Render draws cfg and reports whether it succeeded. It never panics and
// never returns the backend's error.
func (g *Guard) Render(cfg *BackendConfig) (ok bool) {
	var chartType ChartType
	if cfg != nil {
		chartType = cfg.Type
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		g.fail(&RenderError{ChartType: chartType, Panic: r})
		ok = false
	}()

	if err := g.renderer.Render(cfg); err != nil {
		g.fail(&RenderError{ChartType: chartType, Err: err})
		return false
	}
	return true
}

func (g *Guard) fail(err *RenderError) {
	g.logger.Error().
		Err(err).
		Str("chart_type", string(err.ChartType)).
		Bool("panic", err.Panic != nil).
		Msg("❌ Chart render failed, showing fallback")

	if g.fallback == nil {
		return
	}
	// A failing fallback must not escape either.
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error().Interface("panic", r).Msg("Render fallback panicked")
		}
	}()
	g.fallback(FallbackNotice, err)
}
