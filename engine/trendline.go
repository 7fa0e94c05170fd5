package engine

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/fit"
	"github.com/aclements/go-moremath/stats"
)

// ============================================================================
// TRENDLINES — Overlays computed from rendered series
// ============================================================================
// Each trendline reads the final points of every dataset built from its
// column and appends a dashed line dataset. Categorical x positions use
// their index; date positions use days since the first point.
// ============================================================================

// maxPolynomialOrder is the highest degree fitted for polynomial trendlines.
const maxPolynomialOrder = 2

var trendlineDash = []float64{6, 4}

// appendTrendlines adds trendline datasets to data. Pie charts never get them.
func appendTrendlines(in *BuildInput, t ChartType, data *ChartData) {
	if t == ChartPie || len(in.Config.Trendlines) == 0 {
		return
	}
	xMeta, _ := in.column(in.Config.Axis.X)

	sources := data.Datasets
	for _, tl := range in.Config.Trendlines {
		if tl.Show != nil && !*tl.Show {
			continue
		}
		for _, src := range sources {
			if src.Trendline || src.Column != tl.ColumnID {
				continue
			}
			ds, ok := buildTrendline(tl, src, xMeta.SimpleType)
			if !ok {
				in.Logger.Debug().
					Str("type", string(tl.Type)).
					Str("dataset", src.ID).
					Msg("Skipped trendline: not enough numeric points")
				continue
			}
			data.Datasets = append(data.Datasets, ds)
		}
	}
}

func buildTrendline(tl Trendline, src Dataset, xType SimpleType) (Dataset, bool) {
	xs, ys, idx := trendInputs(src, xType)
	if len(ys) == 0 {
		return Dataset{}, false
	}

	var f func(float64) float64
	switch tl.Type {
	case TrendLinear, TrendPolynomial:
		degree := 1
		if tl.Type == TrendPolynomial {
			degree = min(max(tl.PolynomialOrder, 2), maxPolynomialOrder)
		}
		var ok bool
		if f, ok = regression(xs, ys, degree); !ok {
			return Dataset{}, false
		}
	case TrendAverage:
		c := stats.Mean(ys)
		f = func(float64) float64 { return c }
	case TrendMedian:
		c := median(ys)
		f = func(float64) float64 { return c }
	case TrendMin:
		c, _ := stats.Bounds(ys)
		f = func(float64) float64 { return c }
	case TrendMax:
		_, c := stats.Bounds(ys)
		f = func(float64) float64 { return c }
	default:
		return Dataset{}, false
	}

	points := make([]Point, len(idx))
	for i, pi := range idx {
		points[i] = Point{X: src.Data[pi].X, Y: floatPtr(f(xs[i]))}
	}

	label := tl.TrendlineLabel
	if label == "" {
		label = fmt.Sprintf("%s (%s)", src.Label, tl.Type)
	}
	color := tl.LineColor
	if color == "" {
		color = src.BorderColor
	}
	return Dataset{
		ID:          fmt.Sprintf("trendline_%s_%s", tl.Type, src.ID),
		Type:        string(ChartLine),
		Label:       label,
		Column:      src.Column,
		AxisID:      src.AxisID,
		Data:        points,
		BorderColor: color,
		BorderWidth: 2,
		BorderDash:  trendlineDash,
		PointRadius: 0,
		Parsing:     src.Parsing,
		Normalized:  src.Normalized,
		Trendline:   true,
		DataLabels:  DatasetLabels{Display: tl.ShowTrendlineLabel},
	}, true
}

// trendInputs extracts numeric (x, y) pairs and their point indices.
func trendInputs(src Dataset, xType SimpleType) (xs, ys []float64, idx []int) {
	var origin float64
	haveOrigin := false
	for i, p := range src.Data {
		if p.Y == nil {
			continue
		}
		var x float64
		switch v := p.X.(type) {
		case float64:
			x = v
		case string:
			x = float64(i)
			if xType == TypeDate {
				t, ok := toTime(v)
				if !ok {
					continue
				}
				days := float64(t.Unix()) / 86400
				if !haveOrigin {
					origin, haveOrigin = days, true
				}
				x = days - origin
			}
		default:
			x = float64(i)
		}
		xs = append(xs, x)
		ys = append(ys, *p.Y)
		idx = append(idx, i)
	}
	return xs, ys, idx
}

// regression fits a least squares polynomial. The backing solver panics on
// degenerate input, so that is reported as !ok.
func regression(xs, ys []float64, degree int) (f func(float64) float64, ok bool) {
	if len(xs) < degree+1 {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			f, ok = nil, false
		}
	}()
	res := fit.PolynomialRegression(xs, ys, nil, degree)
	for _, c := range res.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, false
		}
	}
	return res.F, true
}
