package engine

// ============================================================================
// DEFAULT SETTINGS REGISTRY
// ============================================================================
// Static defaults shared by every column and every render. Callers receive
// copies; nothing in this file is ever mutated at runtime.
// ============================================================================

// DefaultSampleThreshold is the row count above which the Sampler activates.
const DefaultSampleThreshold = 1000

// DefaultCacheSize bounds the number of memoized configurations per Pipeline.
const DefaultCacheSize = 128

// Visualization is the per-series render mode used by combo charts.
type Visualization string

const (
	VisualizationBar  Visualization = "bar"
	VisualizationLine Visualization = "line"
	VisualizationDot  Visualization = "dot"
)

// LineStyle selects plain or filled lines.
type LineStyle string

const (
	LineStyleLine LineStyle = "line"
	LineStyleArea LineStyle = "area"
)

// LineType selects line interpolation.
type LineType string

const (
	LineTypeNormal LineType = "normal"
	LineTypeSmooth LineType = "smooth"
	LineTypeStep   LineType = "step"
)

// smoothTension is the bezier tension applied to smooth lines.
const smoothTension = 0.4

// minDotRadius keeps dot series visible when lineSymbolSize is unset.
const minDotRadius = 3

// scatter bubble radius range, in pixels
const (
	minBubbleRadius = 3
	maxBubbleRadius = 20
)

// otherSliceID identifies the folded pie slice.
const (
	otherSliceID    = "other"
	otherSliceLabel = "Other"
)

// defaultColors is the series palette.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// DefaultColors returns a copy of the series palette.
func DefaultColors() []string {
	out := make([]string, len(defaultColors))
	copy(out, defaultColors)
	return out
}

// DefaultColumnSettings returns the complete default settings record.
// It is returned by value so callers cannot alter the shared table.
func DefaultColumnSettings() ColumnSettings {
	return ColumnSettings{
		ShowDataLabels:             false,
		ShowDataLabelsAsPercentage: false,
		ColumnVisualization:        VisualizationBar,
		LineWidth:                  2,
		LineStyle:                  LineStyleLine,
		LineType:                   LineTypeNormal,
		LineSymbolSize:             0,
		BarRoundness:               8,
		MissingAsZero:              true,
		Color:                      "",
		Label:                      "",
	}
}

// ============================================================================
// THEME
// ============================================================================

// Theme is the resolved look used by option builders. Hosts with a live
// theme pass their own; everything else uses FallbackTheme.
type Theme struct {
	LabelBackground string   `json:"labelBackground"`
	LabelBorder     string   `json:"labelBorder"`
	LabelText       string   `json:"labelText"`
	AxisText        string   `json:"axisText"`
	GridColor       string   `json:"gridColor"`
	FontSize        int      `json:"fontSize"`
	Palette         []string `json:"palette,omitempty"`
}

// FallbackTheme is the fixed palette used outside a rendering context.
var FallbackTheme = Theme{
	LabelBackground: "#FFFFFF",
	LabelBorder:     "#E5E7EB",
	LabelText:       "#111827",
	AxisText:        "#6B7280",
	GridColor:       "#F3F4F6",
	FontSize:        11,
}

// resolve fills unset theme fields from FallbackTheme.
func (t Theme) resolve() Theme {
	fb := FallbackTheme
	if t.LabelBackground == "" {
		t.LabelBackground = fb.LabelBackground
	}
	if t.LabelBorder == "" {
		t.LabelBorder = fb.LabelBorder
	}
	if t.LabelText == "" {
		t.LabelText = fb.LabelText
	}
	if t.AxisText == "" {
		t.AxisText = fb.AxisText
	}
	if t.GridColor == "" {
		t.GridColor = fb.GridColor
	}
	if t.FontSize <= 0 {
		t.FontSize = fb.FontSize
	}
	return t
}
