package engine

// ============================================================================
// COMBO DATASET BUILDER
// ============================================================================

// BuildComboDataset builds mixed series. Each value column renders as a
// bar, line or dot series per its columnVisualization setting; y2 columns
// are bound to the secondary axis. Positions keep query order.
func BuildComboDataset(in *BuildInput) (ChartData, error) {
	if err := validateAxes(in, ChartCombo); err != nil {
		return ChartData{}, err
	}

	rows := in.sample()
	agg := aggregateRows(in, rows, in.Config.Axis.Y, in.Config.Axis.Y2)

	group := in.Config.BarGroupType
	datasets := seriesDatasets(in, agg, func(ds *Dataset, spec seriesSpec) {
		s := in.settingsFor(spec.column)
		color := in.seriesColor(spec)
		switch s.ColumnVisualization {
		case VisualizationLine:
			styleLine(ds, s, color, GroupSideBySide)
		case VisualizationDot:
			styleDot(ds, s, color)
		default:
			styleBar(ds, s, color, group)
		}
		ds.AxisID = spec.axisID
	})
	return ChartData{Labels: agg.labels, Datasets: datasets}, nil
}
