package charts

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/opts"
)

type renderer interface {
	Render(w io.Writer) error
}

// embed renders a go-echarts chart and keeps only the chart markup of the
// page body. The page's own asset tags are replaced by the configured
// echarts bundle.
func (g *Generator) embed(id, title string, c renderer) (ChartSnippet, error) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return ChartSnippet{}, fmt.Errorf("failed to render %s chart: %w", title, err)
	}
	page := buf.String()

	start := strings.Index(page, "<body>")
	end := strings.LastIndex(page, "</body>")
	if start < 0 || end < start {
		return ChartSnippet{}, fmt.Errorf("unexpected %s chart page layout", title)
	}
	body := page[start+len("<body>") : end]

	if i := strings.Index(body, "<style>"); i >= 0 {
		if j := strings.Index(body[i:], "</style>"); j >= 0 {
			body = body[:i] + body[i+j+len("</style>"):]
		}
	}
	body = strings.TrimSpace(body)

	div, script := body, ""
	if i := strings.Index(body, "<script"); i >= 0 {
		div, script = strings.TrimSpace(body[:i]), strings.TrimSpace(body[i:])
	}

	completeHTML := fmt.Sprintf("<script src=\"%s\"></script>\n%s", g.echartsURL, body)
	return ChartSnippet{ID: id, Title: title, Div: div, Script: script, HTML: completeHTML}, nil
}

// lineData converts a series to go-echarts [x, y] points
func lineData(s Series) []opts.LineData {
	data := make([]opts.LineData, 0, s.Len())
	for i, y := range s.Y {
		data = append(data, opts.LineData{Value: []interface{}{xValue(s, i), nullable(y)}})
	}
	return data
}
