package engine

import (
	"fmt"
)

// ============================================================================
// AGGREGATORS — Grouping rows into x positions × series
// ============================================================================
// Rows are grouped by the x-axis label (first-seen order) and, when a
// category column is assigned, split into one series per (value column,
// category value). Each cell is the sum of its rows.
//
// Missing data: with MissingAsZero (the default) non-numeric or absent cells
// count as 0. Without it, any missing cell turns that point into a gap (nil).
// ============================================================================

// seriesSpec identifies one output series.
type seriesSpec struct {
	id       string
	label    string
	column   string // value column
	category string // category label when split
	split    bool   // true when a category column divides the value column
	axisID   string // "y" or "y2"
	index    int    // palette position
}

// aggregation is the grouped value grid behind bar, line, pie and combo datasets.
type aggregation struct {
	labels []string // tick label per x position
	xs     []any    // first-seen raw x value per position
	series []seriesSpec
	values [][]*float64 // values[series][position]
}

type cellAcc struct {
	sum     float64
	present bool
	missing bool
}

// aggregateRows groups rows by x (and optional category) for the given value
// columns. y2 columns get axis id "y2".
func aggregateRows(in *BuildInput, rows []Row, yCols, y2Cols []string) *aggregation {
	xCol := in.Config.Axis.X
	xMeta, _ := in.column(xCol)
	catCol := in.Config.Axis.Category
	catMeta, _ := in.column(catCol)

	// 1. Positions and categories in first-seen order
	posOf := make(map[string]int)
	agg := &aggregation{}
	var cats []string
	catOf := make(map[string]int)

	for _, row := range rows {
		key := labelOf(row[xCol], xMeta.SimpleType)
		if _, ok := posOf[key]; !ok {
			posOf[key] = len(agg.labels)
			agg.labels = append(agg.labels, key)
			agg.xs = append(agg.xs, row[xCol])
		}
		if catCol != "" {
			c := labelOf(row[catCol], catMeta.SimpleType)
			if _, ok := catOf[c]; !ok {
				catOf[c] = len(cats)
				cats = append(cats, c)
			}
		}
	}
	if catCol == "" {
		cats = []string{""}
		catOf[""] = 0
	}

	// 2. Series: value column × category
	valueCols := make([]string, 0, len(yCols)+len(y2Cols))
	valueCols = append(valueCols, yCols...)
	valueCols = append(valueCols, y2Cols...)
	multiValue := len(valueCols) > 1

	for i, col := range valueCols {
		axisID := "y"
		if i >= len(yCols) {
			axisID = "y2"
		}
		colLabel := in.seriesLabel(col)
		for _, c := range cats {
			spec := seriesSpec{
				id:       col,
				label:    colLabel,
				column:   col,
				category: c,
				axisID:   axisID,
				index:    len(agg.series),
			}
			if catCol != "" {
				spec.split = true
				spec.id = fmt.Sprintf("%s_%s:%s", col, catCol, c)
				spec.label = c
				if multiValue {
					spec.label = fmt.Sprintf("%s (%s)", colLabel, c)
				}
			}
			agg.series = append(agg.series, spec)
		}
	}

	// 3. Accumulate
	nPos := len(agg.labels)
	acc := make([][]cellAcc, len(agg.series))
	for s := range acc {
		acc[s] = make([]cellAcc, nPos)
	}
	for _, row := range rows {
		pos := posOf[labelOf(row[xCol], xMeta.SimpleType)]
		ci := 0
		if catCol != "" {
			ci = catOf[labelOf(row[catCol], catMeta.SimpleType)]
		}
		for vi, col := range valueCols {
			s := vi*len(cats) + ci
			cell := &acc[s][pos]
			if f, ok := toFloat(row[col]); ok {
				cell.sum += f
				cell.present = true
			} else {
				cell.missing = true
			}
		}
	}

	// 4. Finalize with the per-column missing-data rule
	agg.values = make([][]*float64, len(agg.series))
	for s, spec := range agg.series {
		asZero := in.settingsFor(spec.column).MissingAsZero
		vals := make([]*float64, nPos)
		for p, cell := range acc[s] {
			switch {
			case asZero:
				vals[p] = floatPtr(cell.sum)
			case cell.present && !cell.missing:
				vals[p] = floatPtr(cell.sum)
			}
		}
		agg.values[s] = vals
	}
	return agg
}

// reorder permutes every position-indexed slice: new position i takes old perm[i].
func (a *aggregation) reorder(perm []int) {
	labels := make([]string, len(perm))
	xs := make([]any, len(perm))
	for i, p := range perm {
		labels[i] = a.labels[p]
		xs[i] = a.xs[p]
	}
	a.labels, a.xs = labels, xs
	for s, vals := range a.values {
		next := make([]*float64, len(perm))
		for i, p := range perm {
			next[i] = vals[p]
		}
		a.values[s] = next
	}
}

// identity returns the unpermuted position order.
func (a *aggregation) identity() []int {
	perm := make([]int, len(a.labels))
	for i := range perm {
		perm[i] = i
	}
	return perm
}

// totals returns the stack sum at each position; nil counts as 0.
func (a *aggregation) totals() []float64 {
	out := make([]float64, len(a.labels))
	for _, vals := range a.values {
		for p, v := range vals {
			if v != nil {
				out[p] += *v
			}
		}
	}
	return out
}

// toPercentages rescales each position so its series sum to 100.
// Positions whose total is 0 are left unchanged.
func (a *aggregation) toPercentages() {
	totals := a.totals()
	for _, vals := range a.values {
		for p, v := range vals {
			if v == nil || totals[p] == 0 {
				continue
			}
			vals[p] = floatPtr(*v / totals[p] * 100)
		}
	}
}

func floatPtr(f float64) *float64 { return &f }
