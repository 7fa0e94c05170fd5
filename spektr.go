// Package spektrchart turns query results into render-ready chart
// configurations.
//
// Usage:
//
//	import "github.com/spektr-org/spektrchart/engine"
//
//	cfg, err := engine.Configure(engine.ChartBar, rows, columns, chartConfig,
//	    engine.WithSeedKey(queryID),
//	    engine.WithTheme(theme),
//	)
//
// The engine takes result rows, their column metadata and a declarative
// ChartConfig, and returns a BackendConfig with a dataset section and an
// options section for a 2D charting backend. Bar, line, pie, scatter and
// combo charts are supported. engine.Pipeline memoizes configurations for
// repeated inputs; engine.Guard isolates backend render failures.
//
// The schema package discovers column metadata from CSV and loads chart
// configs from YAML or JSON. Everything is computed locally.
package spektrchart
