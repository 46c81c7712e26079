package charts

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var gridStyle = chart.Style{StrokeColor: drawing.Color{R: 211, G: 211, B: 211, A: 255}, StrokeWidth: 1}

// staticChart describes a small non-interactive preview
type staticChart struct {
	series []Series
	layout Layout

	yMin, yMax float64
	fixedY     bool
	reverseY   bool
	hideYAxis  bool
	timeAxis   bool

	drawLines  bool
	drawPoints bool
	errorBars  bool
}

// errorBarSeries draws vertical error bars
type errorBarSeries struct {
	color     drawing.Color
	x         []float64
	low, high []float64
}

func (es errorBarSeries) GetName() string           { return "error bars" }
func (es errorBarSeries) GetStyle() chart.Style     { return chart.Style{StrokeColor: es.color, StrokeWidth: 1} }
func (es errorBarSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (es errorBarSeries) Len() int                  { return len(es.x) }
func (es errorBarSeries) Validate() error           { return nil }
func (es errorBarSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	r.SetStrokeColor(es.color)
	r.SetStrokeWidth(1)
	for i := range es.x {
		x := canvasBox.Left + xrange.Translate(es.x[i])
		y0 := canvasBox.Bottom - yrange.Translate(es.low[i])
		y1 := canvasBox.Bottom - yrange.Translate(es.high[i])
		r.MoveTo(x, y0)
		r.LineTo(x, y1)
		r.Stroke()
	}
}

// xFloat returns the x values of a series on the go-chart float scale
func xFloat(s Series) []float64 {
	if !s.hasTime() {
		return s.X
	}
	xs := make([]float64, len(s.Times))
	for i, t := range s.Times {
		xs[i] = chart.TimeToFloat64(t)
	}
	return xs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// segments splits a series at every undefined value so gaps stay gaps
func segments(xs, ys []float64) [][2][]float64 {
	var out [][2][]float64
	var cx, cy []float64
	for i := range ys {
		if !finite(ys[i]) || !finite(xs[i]) {
			if len(cx) > 0 {
				out = append(out, [2][]float64{cx, cy})
				cx, cy = nil, nil
			}
			continue
		}
		cx = append(cx, xs[i])
		cy = append(cy, ys[i])
	}
	if len(cx) > 0 {
		out = append(out, [2][]float64{cx, cy})
	}
	return out
}

// padRange widens [lo, hi] by a margin, and gives degenerate ranges a
// width go-chart can draw
func padRange(lo, hi, unit float64) (float64, float64) {
	if !finite(lo) || !finite(hi) {
		return 0, 1
	}
	if hi-lo == 0 {
		return lo - unit, hi + unit
	}
	margin := (hi - lo) * 0.05
	return lo - margin, hi + margin
}

func (sc staticChart) ranges() (xMin, xMax, yMin, yMax float64) {
	xMin, xMax = math.Inf(1), math.Inf(-1)
	yMin, yMax = math.Inf(1), math.Inf(-1)
	for _, s := range sc.series {
		xs := xFloat(s)
		for i, y := range s.Y {
			if finite(xs[i]) {
				xMin = math.Min(xMin, xs[i])
				xMax = math.Max(xMax, xs[i])
			}
			if !finite(y) {
				continue
			}
			lo, hi := y, y
			if e := s.errAt(i); sc.errorBars && finite(e) {
				lo, hi = y-e, y+e
			}
			yMin = math.Min(yMin, lo)
			yMax = math.Max(yMax, hi)
		}
	}

	xUnit := 1.0
	if sc.timeAxis {
		xUnit = float64(24 * time.Hour)
	}
	if !(xMax > xMin) {
		xMin, xMax = padRange(xMin, xMax, xUnit)
	}

	if sc.fixedY {
		return xMin, xMax, sc.yMin, sc.yMax
	}
	yMin, yMax = padRange(yMin, yMax, 0.5)
	return xMin, xMax, yMin, yMax
}

func (sc staticChart) build() chart.Chart {
	xMin, xMax, yMin, yMax := sc.ranges()

	var series []chart.Series
	// Transparent frame keeps the chart renderable when every value is a gap
	series = append(series, chart.ContinuousSeries{
		Name:    "frame",
		Style:   chart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: chart.Disabled},
		XValues: []float64{xMin, xMax},
		YValues: []float64{yMin, yMax},
	})

	for i, s := range sc.series {
		color, ok := parseColor(s.Color)
		if !ok {
			color = chart.GetDefaultColor(i)
		}
		xs := xFloat(s)

		style := chart.Style{StrokeColor: color, StrokeWidth: 1.5}
		if !sc.drawLines {
			style.StrokeWidth = chart.Disabled
		}
		if sc.drawPoints {
			style.DotColor = color
			style.DotWidth = 2
		}
		for _, seg := range segments(xs, s.Y) {
			series = append(series, chart.ContinuousSeries{Name: s.Name, Style: style, XValues: seg[0], YValues: seg[1]})
		}

		if sc.errorBars && len(s.Err) > 0 {
			bars := errorBarSeries{color: color}
			for j, y := range s.Y {
				e := s.errAt(j)
				if finite(y) && finite(e) && finite(xs[j]) {
					bars.x = append(bars.x, xs[j])
					bars.low = append(bars.low, y-e)
					bars.high = append(bars.high, y+e)
				}
			}
			if len(bars.x) > 0 {
				series = append(series, bars)
			}
		}
	}

	xAxis := chart.XAxis{
		Style:          chart.Style{FontSize: 7},
		Range:          &chart.ContinuousRange{Min: xMin, Max: xMax},
		GridMajorStyle: gridStyle,
	}
	if sc.timeAxis {
		xAxis.ValueFormatter = chart.TimeHourValueFormatter
		if xMax-xMin > float64(48*time.Hour) {
			xAxis.ValueFormatter = chart.TimeDateValueFormatter
		}
	}

	yAxis := chart.YAxis{
		Style:          chart.Style{FontSize: 7},
		Range:          &chart.ContinuousRange{Min: yMin, Max: yMax, Descending: sc.reverseY},
		GridMajorStyle: gridStyle,
	}
	if sc.hideYAxis {
		yAxis.Style = chart.Hidden()
	}

	return chart.Chart{
		Width:  sc.layout.Width,
		Height: sc.layout.Height,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
			Padding:   chart.Box{Top: 10, Left: 10, Right: 15, Bottom: 10},
		},
		XAxis:  xAxis,
		YAxis:  yAxis,
		Series: series,
	}
}

// staticSnippet renders a preview to PNG and embeds it as an image
func (g *Generator) staticSnippet(title string, sc staticChart) (ChartSnippet, error) {
	if sc.layout.Width <= 0 || sc.layout.Height <= 0 {
		return ChartSnippet{}, fmt.Errorf("static %s chart needs a fixed size", title)
	}

	graph := sc.build()
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return ChartSnippet{}, fmt.Errorf("failed to render %s chart: %w", title, err)
	}

	id := g.newID()
	img := fmt.Sprintf("<img alt=\"%s\" width=\"%d\" height=\"%d\" src=\"data:image/png;base64,%s\">",
		title, sc.layout.Width, sc.layout.Height, base64.StdEncoding.EncodeToString(buf.Bytes()))
	div := fmt.Sprintf("<div id=\"%s\" class=\"static-chart\">%s</div>", id, img)

	return ChartSnippet{ID: id, Title: title, Div: div, HTML: div}, nil
}
