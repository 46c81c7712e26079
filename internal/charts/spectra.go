package charts

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Spectra renders flux against wavelength, one line per spectrum
func (g *Generator) Spectra(series []Series, layout Layout) (ChartSnippet, error) {
	if err := validateAll(series); err != nil {
		return ChartSnippet{}, fmt.Errorf("invalid spectra series: %w", err)
	}

	if layout.Static {
		return g.staticSnippet("Spectra", staticChart{
			series:    series,
			layout:    layout,
			hideYAxis: true,
			drawLines: true,
		})
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
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: layout.XTitle,
			Type: "value",
			Min:  "dataMin",
			Max:  "dataMax",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  layout.YTitle,
			Type:  "value",
			Scale: true,
		}),
	)

	for _, s := range series {
		options := []charts.SeriesOpts{charts.WithLineStyleOpts(opts.LineStyle{Width: 1})}
		if s.Color != "" {
			options = append(options,
				charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color, Width: 1}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
			)
		}
		line.AddSeries(s.Name, lineData(s), options...)
	}

	return g.embed(id, "Spectra", line)
}
