package engine

import (
	"cmp"
	"sort"
)

// ============================================================================
// BAR DATASET BUILDER
// ============================================================================
// Ordering rules:
//   - date x axis: always chronological, BarSortBy ignored
//   - otherwise the first non-none BarSortBy directive sorts positions by
//     stack total and a directive after it breaks ties by tick label;
//     equal positions keep first-seen order
// ============================================================================

// BuildBarDataset builds grouped, sorted bar series.
func BuildBarDataset(in *BuildInput) (ChartData, error) {
	if err := validateAxes(in, ChartBar); err != nil {
		return ChartData{}, err
	}
	if err := validateBarSort(in.Config.BarSortBy); err != nil {
		return ChartData{}, err
	}

	rows := in.sample()
	agg := aggregateRows(in, rows, in.Config.Axis.Y, nil)

	xMeta, _ := in.column(in.Config.Axis.X)
	if xMeta.SimpleType == TypeDate {
		sortChronologically(agg)
	} else {
		sortBarPositions(agg, in.Config.BarSortBy)
	}

	group := in.Config.BarGroupType
	if group == GroupPercentageStack {
		agg.toPercentages()
	}

	datasets := seriesDatasets(in, agg, func(ds *Dataset, spec seriesSpec) {
		styleBar(ds, in.settingsFor(spec.column), in.seriesColor(spec), group)
	})
	return ChartData{Labels: agg.labels, Datasets: datasets}, nil
}

// validateBarSort accepts at most two asc|desc|none directives.
func validateBarSort(dirs []SortDirection) error {
	if len(dirs) > 2 {
		return newInvalidDirective("barSortBy", dirs, "at most two directives (primary, secondary)")
	}
	for _, d := range dirs {
		switch d {
		case SortAsc, SortDesc, SortNone:
		default:
			return newInvalidDirective("barSortBy", string(d), "expected asc, desc or none")
		}
	}
	return nil
}

func sortChronologically(agg *aggregation) {
	perm := agg.identity()
	sort.SliceStable(perm, func(i, j int) bool {
		return compareTimes(agg.xs[perm[i]], agg.xs[perm[j]]) < 0
	})
	agg.reorder(perm)
}

func sortBarPositions(agg *aggregation, dirs []SortDirection) {
	primary, secondary := barSortDirections(dirs)
	if primary == SortNone {
		return
	}

	totals := agg.totals()
	perm := agg.identity()
	sort.SliceStable(perm, func(i, j int) bool {
		a, b := perm[i], perm[j]
		if c := applyDirection(cmp.Compare(totals[a], totals[b]), primary); c != 0 {
			return c < 0
		}
		if secondary != SortNone {
			if c := applyDirection(compareValues(agg.xs[a], agg.xs[b]), secondary); c != 0 {
				return c < 0
			}
		}
		return false
	})
	agg.reorder(perm)
}

// barSortDirections picks the value sort (first non-none directive) and the
// label tie-break that follows it, if any.
func barSortDirections(dirs []SortDirection) (primary, secondary SortDirection) {
	primary, secondary = SortNone, SortNone
	for i, d := range dirs {
		if d == SortNone {
			continue
		}
		primary = d
		if i+1 < len(dirs) {
			secondary = dirs[i+1]
		}
		break
	}
	return primary, secondary
}
