package charts

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultEChartsURL is the echarts bundle loaded by interactive charts
const DefaultEChartsURL = "https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"

// ChartSnippet represents an embeddable chart fragment.
// Div contains the single root element of the chart, Script the block that
// initializes it (empty for static charts) and HTML the complete fragment.
type ChartSnippet struct {
	ID     string
	Title  string
	Div    string
	Script string
	HTML   string
}

// Series is one named curve. X values come from Times when set, from X
// otherwise. NaN values in Y are gaps. Err, when present, holds symmetric
// error bars.
type Series struct {
	Name  string
	Color string
	Times []time.Time
	X     []float64
	Y     []float64
	Err   []float64
}

// Len returns the number of points
func (s Series) Len() int {
	return len(s.Y)
}

func (s Series) validate() error {
	n := len(s.X)
	if len(s.Times) > 0 {
		n = len(s.Times)
	}
	if n != len(s.Y) {
		return fmt.Errorf("series %q has %d x values and %d y values", s.Name, n, len(s.Y))
	}
	if len(s.Err) > 0 && len(s.Err) != len(s.Y) {
		return fmt.Errorf("series %q has %d errors for %d points", s.Name, len(s.Err), len(s.Y))
	}
	return nil
}

func (s Series) hasTime() bool {
	return len(s.Times) > 0
}

func (s Series) errAt(i int) float64 {
	if i < len(s.Err) {
		return s.Err[i]
	}
	return math.NaN()
}

// Layout configures size and mode of a chart. A zero Width fills the
// container.
type Layout struct {
	Width      int
	Height     int
	ShowLegend bool
	Static     bool
	XTitle     string
	YTitle     string
}

func (l Layout) cssWidth() string {
	if l.Width <= 0 {
		return "100%"
	}
	return fmt.Sprintf("%dpx", l.Width)
}

func (l Layout) cssHeight() string {
	if l.Height <= 0 {
		return "450px"
	}
	return fmt.Sprintf("%dpx", l.Height)
}

// Generator builds chart fragments
type Generator struct {
	echartsURL string
	newID      func() string
}

// NewGenerator creates a chart generator loading echarts from echartsURL
func NewGenerator(echartsURL string) *Generator {
	if echartsURL == "" {
		echartsURL = DefaultEChartsURL
	}
	return &Generator{echartsURL: echartsURL, newID: randomID}
}

// randomID returns an element id usable as a JavaScript identifier
func randomID() string {
	return "chart" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func validateAll(series []Series) error {
	for _, s := range series {
		if err := s.validate(); err != nil {
			return err
		}
	}
	return nil
}
