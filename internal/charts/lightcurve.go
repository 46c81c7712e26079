package charts

import "fmt"

// Lightcurve renders one marker series per filter, with error bars, on a
// reversed magnitude axis
func (g *Generator) Lightcurve(series []Series, layout Layout) (ChartSnippet, error) {
	if err := validateAll(series); err != nil {
		return ChartSnippet{}, fmt.Errorf("invalid photometry series: %w", err)
	}

	if layout.Static {
		return g.staticSnippet("Light curve", staticChart{
			series:     series,
			layout:     layout,
			reverseY:   true,
			timeAxis:   true,
			drawPoints: true,
			errorBars:  true,
		})
	}

	data := make([]interface{}, 0, 2*len(series))
	for _, s := range series {
		data = append(data, map[string]interface{}{
			"name":       s.Name,
			"type":       "scatter",
			"symbolSize": 6,
			"itemStyle":  map[string]interface{}{"color": s.Color},
			"data":       pointData(s),
		})
		if bars := errorBarData(s); len(bars) > 0 {
			// Same name as the markers so the legend toggles both
			data = append(data, map[string]interface{}{
				"name":         s.Name,
				"type":         "line",
				"silent":       true,
				"showSymbol":   false,
				"connectNulls": false,
				"lineStyle":    map[string]interface{}{"color": s.Color, "width": 1},
				"itemStyle":    map[string]interface{}{"color": s.Color},
				"tooltip":      map[string]interface{}{"show": false},
				"data":         bars,
			})
		}
	}

	yAxis := baseAxis("value")
	yAxis["inverse"] = true
	yAxis["scale"] = true

	option := map[string]interface{}{
		"tooltip": map[string]interface{}{"trigger": "item"},
		"legend":  map[string]interface{}{"show": layout.ShowLegend, "bottom": 0},
		"grid":    map[string]interface{}{"left": 30, "right": 10, "bottom": 100, "top": 40, "containLabel": true},
		"xAxis":   withTitle(baseAxis("time"), layout.XTitle),
		"yAxis":   withTitle(yAxis, layout.YTitle),
		"series":  data,
	}
	return g.optionSnippet("Light curve", option, layout)
}
