package schema

import (
	"github.com/spektr-org/spektrchart/engine"
)

// SuggestChart proposes a starting chart configuration for a discovery:
// a date x axis becomes a line chart, a grouping column a bar chart, and a
// numeric-only dataset a scatter plot. Identifier and free-text columns are
// never proposed.
func SuggestChart(d Discovery) (engine.ChartConfig, error) {
	x := firstUsable(d, engine.TypeDate, "")
	chartType := engine.ChartLine

	if x == "" {
		x = firstGrouping(d)
		chartType = engine.ChartBar
	}

	y := ""
	if x != "" {
		y = firstUsable(d, engine.TypeNumber, x)
	} else {
		// Numeric only: first two numbers as x and y
		x = firstUsable(d, engine.TypeNumber, "")
		y = firstUsable(d, engine.TypeNumber, x)
		chartType = engine.ChartScatter
	}

	if x == "" {
		return engine.ChartConfig{}, &engine.ConfigurationError{Field: "axis.x", Reason: "no column usable as an x axis"}
	}
	if y == "" {
		return engine.ChartConfig{}, &engine.ConfigurationError{Field: "axis.y", Reason: "no numeric column to plot"}
	}

	return engine.ChartConfig{
		ChartType: chartType,
		Axis:      engine.AxisAssignment{X: x, Y: []string{y}},
	}, nil
}

func firstUsable(d Discovery, t engine.SimpleType, except string) string {
	for _, c := range d.Columns {
		if c.SimpleType == t && c.Name != except && !d.skipped(c.Name) {
			return c.Name
		}
	}
	return ""
}

// firstGrouping picks the first string or boolean column with low or
// medium cardinality.
func firstGrouping(d Discovery) string {
	for _, c := range d.Columns {
		if c.SimpleType != engine.TypeString && c.SimpleType != engine.TypeBoolean {
			continue
		}
		if d.skipped(c.Name) {
			continue
		}
		if s, ok := d.stats(c.Name); ok && s.CardinalityHint == "high" {
			continue
		}
		return c.Name
	}
	return ""
}
