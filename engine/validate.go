package engine

import "math"

// ============================================================================
// CONFIG VALIDATION — Closed-enum directives
// ============================================================================
// Column references are checked by each dataset builder against the
// metadata of the current result; this checks what can be checked without
// data.
// ============================================================================

// KnownChartType reports whether t is in the supported set.
func KnownChartType(t ChartType) bool {
	_, ok := registry[t]
	return ok
}

// Validate checks every directive against its allowed values.
func (c ChartConfig) Validate() error {
	if c.ChartType != "" && !KnownChartType(c.ChartType) {
		return newUnknownChartType(c.ChartType)
	}
	if err := validateBarSort(c.BarSortBy); err != nil {
		return err
	}
	if err := validatePie(c); err != nil {
		return err
	}
	switch c.ShowLegendHeadline {
	case HeadlineOff, HeadlineCurrent, HeadlineAverage, HeadlineTotal,
		HeadlineMedian, HeadlineMin, HeadlineMax:
	default:
		return newInvalidDirective("showLegendHeadline", string(c.ShowLegendHeadline),
			"expected false, current, average, total, median, min or max")
	}
	groups := []struct {
		field string
		value GroupType
	}{
		{"barGroupType", c.BarGroupType},
		{"lineGroupType", c.LineGroupType},
	}
	for _, g := range groups {
		switch g.value {
		case "", GroupSideBySide, GroupStack, GroupPercentageStack:
		default:
			return newInvalidDirective(g.field, string(g.value), "expected group, stack or percentage-stack")
		}
	}
	switch c.BarLayout {
	case "", LayoutVertical, LayoutHorizontal:
	default:
		return newInvalidDirective("barLayout", string(c.BarLayout), "expected vertical or horizontal")
	}
	scales := []struct {
		field string
		value ScaleType
	}{
		{"yAxis.scaleType", c.YAxis.ScaleType},
		{"y2Axis.scaleType", c.Y2Axis.ScaleType},
	}
	for _, sc := range scales {
		switch sc.value {
		case "", ScaleLinear, ScaleLog:
		default:
			return newInvalidDirective(sc.field, string(sc.value), "expected linear or log")
		}
	}
	switch c.XAxisConfig.TimeInterval {
	case "", IntervalDay, IntervalWeek, IntervalMonth, IntervalQuarter, IntervalYear:
	default:
		return newInvalidDirective("xAxisConfig.xAxisTimeInterval", string(c.XAxisConfig.TimeInterval),
			"expected day, week, month, quarter or year")
	}
	for _, g := range c.GoalLines {
		if math.IsNaN(g.Value) || math.IsInf(g.Value, 0) {
			return newInvalidDirective("goalLines.value", g.Value, "must be a finite number")
		}
	}
	for _, tl := range c.Trendlines {
		switch tl.Type {
		case TrendLinear, TrendPolynomial, TrendAverage, TrendMedian, TrendMin, TrendMax:
		default:
			return newInvalidDirective("trendlines.type", string(tl.Type), "unsupported trendline type")
		}
	}
	for name, o := range c.ColumnSettings {
		if err := o.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (o ColumnSettingsOverride) validate(column string) error {
	field := "columnSettings." + column
	if v := o.ColumnVisualization; v != nil {
		switch *v {
		case VisualizationBar, VisualizationLine, VisualizationDot:
		default:
			return newInvalidDirective(field+".columnVisualization", string(*v), "expected bar, line or dot")
		}
	}
	if v := o.LineStyle; v != nil {
		switch *v {
		case LineStyleLine, LineStyleArea:
		default:
			return newInvalidDirective(field+".lineStyle", string(*v), "expected line or area")
		}
	}
	if v := o.LineType; v != nil {
		switch *v {
		case LineTypeNormal, LineTypeSmooth, LineTypeStep:
		default:
			return newInvalidDirective(field+".lineType", string(*v), "expected normal, smooth or step")
		}
	}
	if v := o.LineWidth; v != nil && *v < 0 {
		return newInvalidDirective(field+".lineWidth", *v, "must not be negative")
	}
	if v := o.BarRoundness; v != nil && *v < 0 {
		return newInvalidDirective(field+".barRoundness", *v, "must not be negative")
	}
	return nil
}
