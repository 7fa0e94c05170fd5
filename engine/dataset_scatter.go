package engine

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// ============================================================================
// SCATTER DATASET BUILDER
// ============================================================================
// Sample first, then sort ascending by x so the sample is drawn from the
// whole population and the backend can skip re-parsing (parsing=false,
// normalized=true). Rows whose x is null compare equal and are dropped
// after sorting since they cannot be placed on a numeric axis.
// ============================================================================

// BuildScatterDataset builds x-sorted point series, one per y column and
// category value. A size column turns points into bubbles.
func BuildScatterDataset(in *BuildInput) (ChartData, error) {
	if err := validateAxes(in, ChartScatter); err != nil {
		return ChartData{}, err
	}
	ax := in.Config.Axis
	xMeta, _ := in.column(ax.X)
	if xMeta.SimpleType != TypeNumber && xMeta.SimpleType != TypeDate {
		return ChartData{}, newInvalidDirective("axis.x", ax.X, "scatter x axis must be a number or date column")
	}

	rows := sortRowsBy(in.sample(), ax.X, xMeta.SimpleType)

	xs := make([]float64, 0, len(rows))
	kept := make([]Row, 0, len(rows))
	for _, row := range rows {
		x, ok := scatterX(row[ax.X], xMeta.SimpleType)
		if !ok {
			continue
		}
		xs = append(xs, x)
		kept = append(kept, row)
	}
	if dropped := len(rows) - len(kept); dropped > 0 {
		in.Logger.Debug().Int("dropped", dropped).Str("column", ax.X).Msg("Dropped scatter rows with null x")
	}

	radii := bubbleRadii(kept, ax.Size)

	// Series keys: y column × category, first-seen order
	catMeta, _ := in.column(ax.Category)
	var cats []string
	seen := make(map[string]bool)
	if ax.Category != "" {
		for _, row := range kept {
			c := labelOf(row[ax.Category], catMeta.SimpleType)
			if !seen[c] {
				seen[c] = true
				cats = append(cats, c)
			}
		}
	} else {
		cats = []string{""}
	}

	chartType := string(ChartScatter)
	if ax.Size != "" {
		chartType = "bubble"
	}

	var datasets []Dataset
	for _, yCol := range ax.Y {
		s := in.settingsFor(yCol)
		for _, cat := range cats {
			spec := seriesSpec{id: yCol, label: in.seriesLabel(yCol), column: yCol, index: len(datasets)}
			if ax.Category != "" {
				spec.split = true
				spec.category = cat
				spec.id = fmt.Sprintf("%s_%s:%s", yCol, ax.Category, cat)
				spec.label = cat
				if len(ax.Y) > 1 {
					spec.label = fmt.Sprintf("%s (%s)", in.seriesLabel(yCol), cat)
				}
			}

			points := make([]Point, 0)
			for i, row := range kept {
				if spec.split && labelOf(row[ax.Category], catMeta.SimpleType) != cat {
					continue
				}
				y, ok := toFloat(row[yCol])
				if !ok {
					continue
				}
				p := Point{X: xs[i], Y: floatPtr(y)}
				if radii != nil {
					p.R = floatPtr(radii[i])
				}
				if len(ax.Tooltip) > 0 {
					p.Tooltip = make(map[string]any, len(ax.Tooltip))
					for _, t := range ax.Tooltip {
						p.Tooltip[t] = row[t]
					}
				}
				points = append(points, p)
			}

			color := in.seriesColor(spec)
			ds := Dataset{
				ID:              spec.id,
				Type:            chartType,
				Label:           spec.label,
				Column:          yCol,
				Data:            points,
				BackgroundColor: color,
				BorderColor:     color,
				PointRadius:     max(s.LineSymbolSize, minDotRadius),
				Parsing:         boolPtr(false),
				Normalized:      true,
				DataLabels:      dataLabelsFor(s),
			}
			datasets = append(datasets, ds)
		}
	}
	return ChartData{Labels: []string{}, Datasets: datasets}, nil
}

// scatterX maps an x cell to the numeric axis: numbers as is, dates as
// unix milliseconds.
func scatterX(v any, typ SimpleType) (float64, bool) {
	if typ == TypeDate {
		t, ok := toTime(v)
		if !ok {
			return 0, false
		}
		return float64(t.UnixMilli()), true
	}
	return toFloat(v)
}

// bubbleRadii scales the size column linearly into the bubble radius range.
// Rows without a numeric size get the minimum radius. Returns nil when no
// size column is assigned.
func bubbleRadii(rows []Row, sizeCol string) []float64 {
	if sizeCol == "" {
		return nil
	}
	vals := make([]float64, 0, len(rows))
	for _, row := range rows {
		if f, ok := toFloat(row[sizeCol]); ok {
			vals = append(vals, f)
		}
	}
	lo, hi := stats.Bounds(vals)

	out := make([]float64, len(rows))
	for i, row := range rows {
		f, ok := toFloat(row[sizeCol])
		switch {
		case !ok:
			out[i] = minBubbleRadius
		case hi == lo || math.IsNaN(hi):
			out[i] = (minBubbleRadius + maxBubbleRadius) / 2.0
		default:
			out[i] = minBubbleRadius + (f-lo)/(hi-lo)*(maxBubbleRadius-minBubbleRadius)
		}
	}
	return out
}
