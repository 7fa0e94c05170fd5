package engine

// ============================================================================
// LINE DATASET BUILDER
// ============================================================================
// Positions keep query order; the backend's time scale places date ticks.
// ============================================================================

// BuildLineDataset builds line series in query order. Stacked line groups
// share one stack; percentage stacks are rescaled per x position.
func BuildLineDataset(in *BuildInput) (ChartData, error) {
	if err := validateAxes(in, ChartLine); err != nil {
		return ChartData{}, err
	}

	rows := in.sample()
	agg := aggregateRows(in, rows, in.Config.Axis.Y, nil)

	group := in.Config.LineGroupType
	if group == GroupPercentageStack {
		agg.toPercentages()
	}

	datasets := seriesDatasets(in, agg, func(ds *Dataset, spec seriesSpec) {
		styleLine(ds, in.settingsFor(spec.column), in.seriesColor(spec), group)
	})
	return ChartData{Labels: agg.labels, Datasets: datasets}, nil
}
