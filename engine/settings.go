package engine

// ============================================================================
// COLUMN SETTINGS MERGER
// ============================================================================
// Every column in the metadata gets a complete ColumnSettings built from the
// defaults, with any user override fields laid on top. Overrides use pointer
// fields so "unset" and "set to the zero value" stay distinguishable.
// ============================================================================

// ColumnSettings is the complete per-column visual record.
type ColumnSettings struct {
	ShowDataLabels             bool          `json:"showDataLabels"`
	ShowDataLabelsAsPercentage bool          `json:"showDataLabelsAsPercentage"`
	ColumnVisualization        Visualization `json:"columnVisualization"`
	LineWidth                  float64       `json:"lineWidth"`
	LineStyle                  LineStyle     `json:"lineStyle"`
	LineType                   LineType      `json:"lineType"`
	LineSymbolSize             float64       `json:"lineSymbolSize"`
	BarRoundness               float64       `json:"barRoundness"`
	MissingAsZero              bool          `json:"missingAsZero"`
	Color                      string        `json:"color"`
	Label                      string        `json:"label"`
}

// ColumnSettingsOverride is a partial ColumnSettings as persisted by users.
type ColumnSettingsOverride struct {
	ShowDataLabels             *bool          `json:"showDataLabels,omitempty"`
	ShowDataLabelsAsPercentage *bool          `json:"showDataLabelsAsPercentage,omitempty"`
	ColumnVisualization        *Visualization `json:"columnVisualization,omitempty"`
	LineWidth                  *float64       `json:"lineWidth,omitempty"`
	LineStyle                  *LineStyle     `json:"lineStyle,omitempty"`
	LineType                   *LineType      `json:"lineType,omitempty"`
	LineSymbolSize             *float64       `json:"lineSymbolSize,omitempty"`
	BarRoundness               *float64       `json:"barRoundness,omitempty"`
	MissingAsZero              *bool          `json:"missingAsZero,omitempty"`
	Color                      *string        `json:"color,omitempty"`
	Label                      *string        `json:"label,omitempty"`
}

// MergeColumnSettings builds settings for every column in columns. Override
// entries for names not in columns are ignored. Nil or empty columns yield an
// empty, non-nil map. Neither input is modified.
func MergeColumnSettings(overrides map[string]ColumnSettingsOverride, columns []ColumnMeta) map[string]ColumnSettings {
	merged := make(map[string]ColumnSettings, len(columns))
	for _, col := range columns {
		s := DefaultColumnSettings()
		if o, ok := overrides[col.Name]; ok {
			s = o.apply(s)
		}
		merged[col.Name] = s
	}
	return merged
}

// apply returns base with every set override field replaced.
func (o ColumnSettingsOverride) apply(base ColumnSettings) ColumnSettings {
	if o.ShowDataLabels != nil {
		base.ShowDataLabels = *o.ShowDataLabels
	}
	if o.ShowDataLabelsAsPercentage != nil {
		base.ShowDataLabelsAsPercentage = *o.ShowDataLabelsAsPercentage
	}
	if o.ColumnVisualization != nil {
		base.ColumnVisualization = *o.ColumnVisualization
	}
	if o.LineWidth != nil {
		base.LineWidth = *o.LineWidth
	}
	if o.LineStyle != nil {
		base.LineStyle = *o.LineStyle
	}
	if o.LineType != nil {
		base.LineType = *o.LineType
	}
	if o.LineSymbolSize != nil {
		base.LineSymbolSize = *o.LineSymbolSize
	}
	if o.BarRoundness != nil {
		base.BarRoundness = *o.BarRoundness
	}
	if o.MissingAsZero != nil {
		base.MissingAsZero = *o.MissingAsZero
	}
	if o.Color != nil {
		base.Color = *o.Color
	}
	if o.Label != nil {
		base.Label = *o.Label
	}
	return base
}
