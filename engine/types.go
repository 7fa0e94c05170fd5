package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ============================================================================
// SPEKTR CHART ENGINE TYPES
// ============================================================================
// Inputs:  []Row + []ColumnMeta (from the query layer) + ChartConfig (user state)
// Output:  BackendConfig{Data, Options} consumed by the 2D charting backend
// ============================================================================

// ============================================================================
// INPUT — Rows and column metadata
// ============================================================================

// Row is a single result record keyed by column name.
// Values are float64, string, bool, time.Time or nil.
type Row map[string]any

// SimpleType is the coarse type of a result column.
type SimpleType string

const (
	TypeNumber  SimpleType = "number"
	TypeDate    SimpleType = "date"
	TypeString  SimpleType = "string"
	TypeBoolean SimpleType = "boolean"
)

// ColumnMeta describes one column of the result set.
type ColumnMeta struct {
	Name        string     `json:"name"`
	SimpleType  SimpleType `json:"simpleType"`
	DisplayName string     `json:"displayName,omitempty"`
}

// Label returns the display name, falling back to the column name.
func (c ColumnMeta) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

// ============================================================================
// CHART CONFIG — Declarative, user-editable chart state
// ============================================================================

// ChartType is the closed set of supported chart kinds.
type ChartType string

const (
	ChartBar     ChartType = "bar"
	ChartLine    ChartType = "line"
	ChartPie     ChartType = "pie"
	ChartScatter ChartType = "scatter"
	ChartCombo   ChartType = "combo"
)

// SortDirection is one entry of a BarSortBy directive list.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
	SortNone SortDirection = "none"
)

// PieSort orders pie slices. The zero value means "value".
type PieSort string

const (
	PieSortValue PieSort = "value"
	PieSortKey   PieSort = "key"
	PieSortNone  PieSort = "none"
)

// UnmarshalJSON maps an explicit JSON null to PieSortNone so that a
// persisted `pieSortBy: null` keeps insertion order instead of the default.
func (p *PieSort) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*p = PieSortNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("pieSortBy: %w", err)
	}
	*p = PieSort(s)
	return nil
}

// Resolved returns the effective sort, applying the "value" default.
func (p PieSort) Resolved() PieSort {
	if p == "" {
		return PieSortValue
	}
	return p
}

// HeadlineMode selects the aggregate shown next to each legend entry.
// The zero value disables the headline.
type HeadlineMode string

const (
	HeadlineOff     HeadlineMode = ""
	HeadlineCurrent HeadlineMode = "current"
	HeadlineAverage HeadlineMode = "average"
	HeadlineTotal   HeadlineMode = "total"
	HeadlineMedian  HeadlineMode = "median"
	HeadlineMin     HeadlineMode = "min"
	HeadlineMax     HeadlineMode = "max"
)

// UnmarshalJSON accepts `false`, `null` or a mode name.
func (h *HeadlineMode) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "false", "null":
		*h = HeadlineOff
		return nil
	case "true":
		return fmt.Errorf("showLegendHeadline: expected false or an aggregate name, got true")
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("showLegendHeadline: %w", err)
	}
	*h = HeadlineMode(s)
	return nil
}

// GroupType controls how multiple bar/line series share an x position.
type GroupType string

const (
	GroupSideBySide      GroupType = "group"
	GroupStack           GroupType = "stack"
	GroupPercentageStack GroupType = "percentage-stack"
)

// Stacked reports whether series share one stack.
func (g GroupType) Stacked() bool {
	return g == GroupStack || g == GroupPercentageStack
}

// BarLayout is the bar orientation.
type BarLayout string

const (
	LayoutVertical   BarLayout = "vertical"
	LayoutHorizontal BarLayout = "horizontal"
)

// ScaleType is the value-axis scale.
type ScaleType string

const (
	ScaleLinear ScaleType = "linear"
	ScaleLog    ScaleType = "log"
)

// AxisAssignment maps logical chart roles to column names.
type AxisAssignment struct {
	X        string   `json:"x,omitempty"`
	Y        []string `json:"y,omitempty"`
	Y2       []string `json:"y2,omitempty"`
	Category string   `json:"category,omitempty"`
	Size     string   `json:"size,omitempty"`
	Tooltip  []string `json:"tooltip,omitempty"`
}

// AxisScale configures one value axis.
type AxisScale struct {
	ScaleType       ScaleType `json:"scaleType,omitempty"`
	StartAxisAtZero *bool     `json:"startAxisAtZero,omitempty"`
	Title           string    `json:"title,omitempty"`
}

// TrendlineType names a trendline computation.
type TrendlineType string

const (
	TrendLinear     TrendlineType = "linear_regression"
	TrendPolynomial TrendlineType = "polynomial_regression"
	TrendAverage    TrendlineType = "average"
	TrendMedian     TrendlineType = "median"
	TrendMin        TrendlineType = "min"
	TrendMax        TrendlineType = "max"
)

// Trendline is an overlay computed from one rendered series.
type Trendline struct {
	Type               TrendlineType `json:"type"`
	ColumnID           string        `json:"columnId"`
	Show               *bool         `json:"show,omitempty"`
	ShowTrendlineLabel bool          `json:"showTrendlineLabel,omitempty"`
	TrendlineLabel     string        `json:"trendlineLabel,omitempty"`
	LineColor          string        `json:"lineColor,omitempty"`
	PolynomialOrder    int           `json:"polynomialOrder,omitempty"`
}

// TimeInterval is the tick unit of a date x axis.
type TimeInterval string

const (
	IntervalDay     TimeInterval = "day"
	IntervalWeek    TimeInterval = "week"
	IntervalMonth   TimeInterval = "month"
	IntervalQuarter TimeInterval = "quarter"
	IntervalYear    TimeInterval = "year"
)

// XAxisConfig configures the x axis. TimeInterval only applies to date columns.
type XAxisConfig struct {
	TimeInterval TimeInterval `json:"xAxisTimeInterval,omitempty"`
}

// GoalLine is a horizontal reference line drawn at a fixed value axis value.
type GoalLine struct {
	Show  bool    `json:"show"`
	Value float64 `json:"value"`
	Label string  `json:"goalLineLabel,omitempty"`
}

// ChartConfig is the declarative chart specification.
type ChartConfig struct {
	ChartType      ChartType                         `json:"selectedChartType,omitempty"`
	Axis           AxisAssignment                    `json:"axis"`
	ColumnSettings map[string]ColumnSettingsOverride `json:"columnSettings,omitempty"`

	BarSortBy    []SortDirection `json:"barSortBy,omitempty"`
	BarGroupType GroupType       `json:"barGroupType,omitempty"`
	BarLayout    BarLayout       `json:"barLayout,omitempty"`

	LineGroupType GroupType `json:"lineGroupType,omitempty"`

	PieSortBy                 PieSort `json:"pieSortBy,omitempty"`
	PieMinimumSlicePercentage float64 `json:"pieMinimumSlicePercentage,omitempty"`

	ShowLegendHeadline HeadlineMode `json:"showLegendHeadline,omitempty"`
	ShowLegend         *bool        `json:"showLegend,omitempty"`
	GridLines          *bool        `json:"gridLines,omitempty"`
	DisableTooltip     bool         `json:"disableTooltip,omitempty"`

	XAxisTitle  string      `json:"xAxisTitle,omitempty"`
	XAxisConfig XAxisConfig `json:"xAxisConfig"`
	YAxis       AxisScale   `json:"yAxis"`
	Y2Axis      AxisScale   `json:"y2Axis"`

	Colors     []string    `json:"colors,omitempty"`
	GoalLines  []GoalLine  `json:"goalLines,omitempty"`
	Trendlines []Trendline `json:"trendlines,omitempty"`
}

// ============================================================================
// OUTPUT — Backend configuration
// ============================================================================

// BackendConfig is the complete object handed to the rendering backend.
// Both sections are always present.
type BackendConfig struct {
	Type    ChartType    `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

// ChartData is the dataset section.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Point is one datum. X is a tick label (string) for categorical charts,
// a float64 (numbers, or unix milliseconds for dates) for scatter.
type Point struct {
	X       any            `json:"x"`
	Y       *float64       `json:"y"`
	R       *float64       `json:"r,omitempty"`
	Tooltip map[string]any `json:"tooltip,omitempty"`
}

// DatasetLabels controls per-series data labels.
type DatasetLabels struct {
	Display      bool `json:"display"`
	AsPercentage bool `json:"asPercentage,omitempty"`
}

// Dataset is one backend series with resolved style.
type Dataset struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Label  string  `json:"label"`
	Column string  `json:"column,omitempty"`
	AxisID string  `json:"yAxisID,omitempty"`
	Data   []Point `json:"data"`

	BackgroundColor  string    `json:"backgroundColor,omitempty"`
	BackgroundColors []string  `json:"backgroundColors,omitempty"`
	BorderColor      string    `json:"borderColor,omitempty"`
	BorderWidth      float64   `json:"borderWidth,omitempty"`
	BorderRadius     float64   `json:"borderRadius,omitempty"`
	BorderDash       []float64 `json:"borderDash,omitempty"`
	Fill             bool      `json:"fill,omitempty"`
	Tension          float64   `json:"tension,omitempty"`
	Stepped          bool      `json:"stepped,omitempty"`
	ShowLine         *bool     `json:"showLine,omitempty"`
	PointRadius      float64   `json:"pointRadius,omitempty"`
	Stack            string    `json:"stack,omitempty"`
	Parsing          *bool     `json:"parsing,omitempty"`
	Normalized       bool      `json:"normalized,omitempty"`
	Trendline        bool      `json:"trendline,omitempty"`

	DataLabels DatasetLabels `json:"datalabels"`
}

// ChartOptions is the options section.
type ChartOptions struct {
	IndexAxis string           `json:"indexAxis,omitempty"`
	Scales    map[string]Scale `json:"scales"`
	Plugins   Plugins          `json:"plugins"`
}

// Scale describes one axis.
type Scale struct {
	Type        string     `json:"type"`
	Position    string     `json:"position,omitempty"`
	Stacked     bool       `json:"stacked,omitempty"`
	BeginAtZero bool       `json:"beginAtZero"`
	Max         *float64   `json:"max,omitempty"`
	Time        *TimeScale `json:"time,omitempty"`
	Title       ScaleTitle `json:"title"`
	Grid        Grid       `json:"grid"`
}

// TimeScale fixes the tick unit of a time axis.
type TimeScale struct {
	Unit TimeInterval `json:"unit"`
}

// ScaleTitle is an axis caption.
type ScaleTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text,omitempty"`
	Color   string `json:"color,omitempty"`
}

// Grid styles axis grid lines.
type Grid struct {
	Display bool   `json:"display"`
	Color   string `json:"color,omitempty"`
}

// Plugins holds legend, tooltip and data label configuration.
type Plugins struct {
	Legend     Legend         `json:"legend"`
	Tooltip    TooltipOptions `json:"tooltip"`
	DataLabels DataLabelStyle `json:"datalabels"`
	Annotation *Annotations   `json:"annotation,omitempty"`
}

// Annotations are overlays drawn on top of the datasets.
type Annotations struct {
	Annotations []LineAnnotation `json:"annotations"`
}

// LineAnnotation is a straight line across the chart at Value on ScaleID.
type LineAnnotation struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	ScaleID     string          `json:"scaleID"`
	Value       float64         `json:"value"`
	BorderColor string          `json:"borderColor"`
	BorderWidth float64         `json:"borderWidth"`
	BorderDash  []float64       `json:"borderDash,omitempty"`
	Label       AnnotationLabel `json:"label"`
}

// AnnotationLabel is the caption of a LineAnnotation.
type AnnotationLabel struct {
	Display         bool   `json:"display"`
	Content         string `json:"content,omitempty"`
	Color           string `json:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// Legend configures the legend and its optional headline.
type Legend struct {
	Display  bool      `json:"display"`
	Position string    `json:"position"`
	Headline *Headline `json:"headline,omitempty"`
}

// Headline carries one aggregate per dataset, computed over rendered points.
type Headline struct {
	Mode   HeadlineMode    `json:"mode"`
	Values []HeadlineValue `json:"values"`
}

// HeadlineValue is the aggregate for one dataset. Value is nil when the
// dataset has no numeric points.
type HeadlineValue struct {
	DatasetID string   `json:"datasetId"`
	Label     string   `json:"label"`
	Value     *float64 `json:"value"`
}

// TooltipOptions toggles tooltips.
type TooltipOptions struct {
	Enabled bool `json:"enabled"`
}

// DataLabelStyle is the theme-resolved data label look.
type DataLabelStyle struct {
	BackgroundColor string  `json:"backgroundColor"`
	BorderColor     string  `json:"borderColor"`
	Color           string  `json:"color"`
	BorderWidth     float64 `json:"borderWidth"`
	BorderRadius    float64 `json:"borderRadius"`
	Padding         float64 `json:"padding"`
	FontSize        int     `json:"fontSize"`
}
