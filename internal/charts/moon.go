package charts

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	MoonDistanceColor = "rgb(0, 0, 255)"
	MoonPhaseColor    = "rgb(255, 0, 0)"
)

// Moon renders the Moon distance (degrees, left axis) and phase (right
// axis) against days from now
func (g *Generator) Moon(distance, phase Series, layout Layout) (ChartSnippet, error) {
	if err := validateAll([]Series{distance, phase}); err != nil {
		return ChartSnippet{}, fmt.Errorf("invalid moon series: %w", err)
	}
	if layout.Static {
		return ChartSnippet{}, fmt.Errorf("moon chart has no static form")
	}

	id := g.newID()
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: id,
			Width:   layout.cssWidth(),
			Height:  layout.cssHeight(),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: layout.ShowLegend}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: layout.XTitle,
			Type: "value",
			Min:  0,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "value",
			Min:       0,
			Max:       180,
			AxisLabel: &opts.AxisLabel{Show: true, Color: MoonDistanceColor},
		}),
	)
	line.ExtendYAxis(opts.YAxis{
		Type:      "value",
		Min:       0,
		Max:       1,
		AxisLabel: &opts.AxisLabel{Show: true, Color: MoonPhaseColor},
	})

	line.AddSeries(distance.Name, lineData(distance),
		charts.WithLineStyleOpts(opts.LineStyle{Color: MoonDistanceColor}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: MoonDistanceColor}),
	)
	line.AddSeries(phase.Name, lineData(phase),
		charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: MoonPhaseColor}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: MoonPhaseColor}),
	)

	// Fixed tick steps: 45 degrees of distance, quarters of phase
	line.AddJSFuncs(fmt.Sprintf("goecharts_%s.setOption({yAxis:[{interval:45},{interval:0.25}]});", id))

	return g.embed(id, "Moon", line)
}
