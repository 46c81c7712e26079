package charts

import (
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// DefaultFilterColor is used for filters without an assigned color
const DefaultFilterColor = "rgb(0,0,0)"

var filterAliases = map[string]string{
	"gp": "g",
	"rp": "r",
	"ip": "i",
}

var filterColors = map[string]string{
	"U":     "rgb(59,0,113)",
	"B":     "rgb(0,87,255)",
	"V":     "rgb(120,255,0)",
	"g":     "rgb(0,204,255)",
	"r":     "rgb(255,124,0)",
	"i":     "rgb(144,0,43)",
	"g_ZTF": "rgb(0,204,255)",
	"r_ZTF": "rgb(255,124,0)",
	"i_ZTF": "rgb(144,0,43)",
	"UVW2":  "#FE0683",
	"UVM2":  "#BF01BC",
	"UVW1":  "#8B06FF",
}

// FilterColor returns the display color of a photometric filter
func FilterColor(filter string) string {
	if alias, ok := filterAliases[filter]; ok {
		filter = alias
	}
	if color, ok := filterColors[filter]; ok {
		return color
	}
	return DefaultFilterColor
}

// parseColor converts "#rrggbb" or "rgb(r,g,b)" to a drawing color.
// ok is false for anything else.
func parseColor(s string) (drawing.Color, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#") && (len(s) == 7 || len(s) == 4):
		return drawing.ColorFromHex(s[1:]), true
	case strings.HasPrefix(s, "rgb("):
		var r, g, b uint8
		if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
			return drawing.Color{}, false
		}
		return drawing.Color{R: r, G: g, B: b, A: 255}, true
	}
	return drawing.Color{}, false
}
