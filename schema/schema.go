package schema

import (
	"github.com/spektr-org/spektrchart/engine"
)

// ============================================================================
// SCHEMA — Describes the columns of a result set for the chart engine
// ============================================================================
// Auto-discovered from raw CSV (DiscoverColumns) or supplied by the query
// layer. The engine only needs []engine.ColumnMeta; the extra statistics
// here drive axis suggestions and are reported by the CLI.
// ============================================================================

// Discovery is the result of inspecting a tabular data source.
type Discovery struct {
	Name    string              `json:"name"`
	Columns []engine.ColumnMeta `json:"columns"`
	Stats   []ColumnStats       `json:"stats"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty"`
	SampledRows    int    `json:"sampledRows"`

	// Columns unusable on a chart axis; still present in Columns
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty"`
}

// ColumnStats summarizes one column's sampled values.
type ColumnStats struct {
	Name            string   `json:"name"`
	Header          string   `json:"header"`
	UniqueCount     int      `json:"uniqueCount"`
	NullCount       int      `json:"nullCount"`
	SampleValues    []string `json:"sampleValues"`
	CardinalityHint string   `json:"cardinalityHint,omitempty"` // "low", "medium", "high"
	HasDecimals     bool     `json:"hasDecimals,omitempty"`
	IsIdentifier    bool     `json:"isIdentifier,omitempty"`
}

// SkippedColumn records why a column should not be offered as an axis.
type SkippedColumn struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// ColumnNames returns every column name in header order.
func (d Discovery) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// NamesOfType returns the names of columns with the given simple type.
func (d Discovery) NamesOfType(t engine.SimpleType) []string {
	var names []string
	for _, c := range d.Columns {
		if c.SimpleType == t {
			names = append(names, c.Name)
		}
	}
	return names
}

// Column looks up a column by name.
func (d Discovery) Column(name string) (engine.ColumnMeta, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return engine.ColumnMeta{}, false
}

func (d Discovery) stats(name string) (ColumnStats, bool) {
	for _, s := range d.Stats {
		if s.Name == name {
			return s, true
		}
	}
	return ColumnStats{}, false
}

func (d Discovery) skipped(name string) bool {
	for _, s := range d.SkippedColumns {
		if s.Column == name {
			return true
		}
	}
	return false
}
