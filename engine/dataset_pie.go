package engine

import (
	"math"
	"sort"
)

// ============================================================================
// PIE DATASET BUILDER
// ============================================================================
// One dataset, one slice per x label, value = sum of the first y column.
// Slices are ordered by PieSortBy, then slices under the minimum
// percentage are folded into a trailing "Other" slice.
// ============================================================================

type pieSlice struct {
	id    string
	label string
	x     any
	value float64
}

// BuildPieDataset aggregates rows into ordered pie slices.
func BuildPieDataset(in *BuildInput) (ChartData, error) {
	if err := validateAxes(in, ChartPie); err != nil {
		return ChartData{}, err
	}
	if err := validatePie(in.Config); err != nil {
		return ChartData{}, err
	}

	valueCol := in.Config.Axis.Y[0]

	// Pie slices ignore any category split.
	flat := *in
	flat.Config.Axis.Category = ""
	agg := aggregateRows(&flat, in.sample(), []string{valueCol}, nil)

	slices := make([]pieSlice, len(agg.labels))
	for p, label := range agg.labels {
		var v float64
		if ptr := agg.values[0][p]; ptr != nil {
			v = *ptr
		}
		slices[p] = pieSlice{id: label, label: label, x: agg.xs[p], value: v}
	}

	sortSlices(slices, in.Config.PieSortBy.Resolved())
	slices = foldSmallSlices(slices, in.Config.PieMinimumSlicePercentage)

	s := in.settingsFor(valueCol)
	labels := make([]string, len(slices))
	points := make([]Point, len(slices))
	colors := make([]string, len(slices))
	for i, sl := range slices {
		labels[i] = sl.label
		points[i] = Point{X: sl.label, Y: floatPtr(sl.value)}
		colors[i] = in.color(i, "")
	}

	ds := Dataset{
		ID:               valueCol,
		Type:             string(ChartPie),
		Label:            in.seriesLabel(valueCol),
		Column:           valueCol,
		Data:             points,
		BackgroundColors: colors,
		BorderWidth:      1,
		DataLabels:       dataLabelsFor(s),
	}
	return ChartData{Labels: labels, Datasets: []Dataset{ds}}, nil
}

func validatePie(cfg ChartConfig) error {
	switch cfg.PieSortBy {
	case "", PieSortValue, PieSortKey, PieSortNone:
	default:
		return newInvalidDirective("pieSortBy", string(cfg.PieSortBy), "expected value, key or null")
	}
	if p := cfg.PieMinimumSlicePercentage; p < 0 || p > 100 || math.IsNaN(p) {
		return newInvalidDirective("pieMinimumSlicePercentage", p, "expected a percentage between 0 and 100")
	}
	return nil
}

// sortSlices orders slices in place: value descending, or key ascending.
// PieSortNone keeps insertion order.
func sortSlices(slices []pieSlice, by PieSort) {
	switch by {
	case PieSortValue:
		sort.SliceStable(slices, func(i, j int) bool {
			return slices[i].value > slices[j].value
		})
	case PieSortKey:
		sort.SliceStable(slices, func(i, j int) bool {
			return compareValues(slices[i].x, slices[j].x) < 0
		})
	}
}

// foldSmallSlices merges slices whose share of the absolute total is below
// minPct into one trailing "Other" slice. A slice exactly at minPct is kept.
func foldSmallSlices(slices []pieSlice, minPct float64) []pieSlice {
	if minPct <= 0 || len(slices) == 0 {
		return slices
	}
	var total float64
	for _, sl := range slices {
		total += math.Abs(sl.value)
	}
	if total == 0 {
		return slices
	}

	kept := make([]pieSlice, 0, len(slices))
	var small []pieSlice
	for _, sl := range slices {
		if math.Abs(sl.value)*100 < minPct*total {
			small = append(small, sl)
			continue
		}
		kept = append(kept, sl)
	}
	if len(small) == 0 {
		return slices
	}

	other := pieSlice{id: otherSliceID, label: otherSliceLabel}
	for _, sl := range small {
		other.value += sl.value
	}
	return append(kept, other)
}
