package charts

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const frameColor = "#D3D3D3"

// baseAxis returns an axis of the given type with a light grid and frame
func baseAxis(kind string) map[string]interface{} {
	return map[string]interface{}{
		"type":      kind,
		"splitLine": map[string]interface{}{"show": true, "lineStyle": map[string]interface{}{"color": frameColor}},
		"axisLine":  map[string]interface{}{"show": true, "lineStyle": map[string]interface{}{"color": frameColor}},
		"axisLabel": map[string]interface{}{"color": "#444"},
	}
}

// optionSnippet marshals an echarts option into a div and an init script
func (g *Generator) optionSnippet(title string, option map[string]interface{}, layout Layout) (ChartSnippet, error) {
	id := g.newID()

	optJSON, err := json.Marshal(option)
	if err != nil {
		return ChartSnippet{}, fmt.Errorf("failed to marshal %s chart option: %w", title, err)
	}

	div := fmt.Sprintf("<div id=\"%s\" style=\"width:%s;height:%s;\"></div>", id, layout.cssWidth(), layout.cssHeight())
	script := fmt.Sprintf(`<script>(function(){var el=document.getElementById('%s');if(!el)return;var c=echarts.init(el);var option=%s;c.setOption(option);window.addEventListener('resize',function(){c.resize();});})();</script>`, id, string(optJSON))

	completeHTML := fmt.Sprintf("<script src=\"%s\"></script>\n%s\n%s", g.echartsURL, div, script)

	return ChartSnippet{ID: id, Title: title, Div: div, Script: script, HTML: completeHTML}, nil
}

// nullable maps NaN and infinities to JSON null
func nullable(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func jsTime(t time.Time) int64 {
	return t.UnixMilli()
}

// pointData returns the [x, y] pairs of a series in echarts form
func pointData(s Series) [][]interface{} {
	data := make([][]interface{}, 0, s.Len())
	for i, y := range s.Y {
		data = append(data, []interface{}{xValue(s, i), nullable(y)})
	}
	return data
}

func xValue(s Series, i int) interface{} {
	if s.hasTime() {
		return jsTime(s.Times[i])
	}
	return nullable(s.X[i])
}

// errorBarData draws each error bar as a vertical segment, broken from the
// next one by a null point
func errorBarData(s Series) [][]interface{} {
	data := make([][]interface{}, 0, 3*s.Len())
	for i, y := range s.Y {
		e := s.errAt(i)
		if !finite(y) || !finite(e) {
			continue
		}
		x := xValue(s, i)
		data = append(data,
			[]interface{}{x, y - e},
			[]interface{}{x, y + e},
			[]interface{}{x, nil},
		)
	}
	return data
}

func axisTitle(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":         name,
		"nameLocation": "middle",
		"nameGap":      30,
	}
}

func withTitle(axis map[string]interface{}, name string) map[string]interface{} {
	if name == "" {
		return axis
	}
	for k, v := range axisTitle(name) {
		axis[k] = v
	}
	return axis
}
