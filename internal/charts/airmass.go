package charts

import "fmt"

// Airmass renders per-site airmass curves on a reversed axis running from
// limit at the bottom to 1 at the top
func (g *Generator) Airmass(series []Series, limit float64, layout Layout) (ChartSnippet, error) {
	if err := validateAll(series); err != nil {
		return ChartSnippet{}, fmt.Errorf("invalid airmass series: %w", err)
	}
	if limit <= 1 {
		return ChartSnippet{}, fmt.Errorf("airmass limit must exceed 1, got %v", limit)
	}

	if layout.Static {
		return g.staticSnippet("Airmass", staticChart{
			series:     series,
			layout:     layout,
			yMin:       1,
			yMax:       limit,
			reverseY:   true,
			fixedY:     true,
			timeAxis:   true,
			drawLines:  true,
			drawPoints: false,
		})
	}

	data := make([]interface{}, 0, len(series))
	for _, s := range series {
		data = append(data, map[string]interface{}{
			"name":         s.Name,
			"type":         "line",
			"showSymbol":   false,
			"connectNulls": false,
			"itemStyle":    map[string]interface{}{"color": s.Color},
			"lineStyle":    map[string]interface{}{"color": s.Color, "width": 2},
			"data":         pointData(s),
		})
	}

	yAxis := baseAxis("value")
	yAxis["min"] = 1.0
	yAxis["max"] = limit
	yAxis["inverse"] = true

	option := map[string]interface{}{
		"tooltip": map[string]interface{}{"trigger": "axis"},
		"legend":  map[string]interface{}{"show": layout.ShowLegend, "top": 0},
		"grid":    map[string]interface{}{"left": 40, "right": 10, "bottom": 30, "top": 40, "containLabel": true},
		"xAxis":   withTitle(baseAxis("time"), layout.XTitle),
		"yAxis":   withTitle(yAxis, layout.YTitle),
		"series":  data,
	}
	return g.optionSnippet("Airmass", option, layout)
}
