package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rewired-gh/broadway/internal/models"
)

// Format selects the output of RenderStatic.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ErrNoData is returned by RenderStatic when there is no band to draw.
var ErrNoData = errors.New("no aggregates to render")

// namedColors covers the CSS colour names used in chart configuration.
var namedColors = map[string]string{
	"steelblue":      "4682b4",
	"lightblue":      "add8e6",
	"lightsteelblue": "b0c4de",
	"cornflowerblue": "6495ed",
	"darkorange":     "ff8c00",
	"orange":         "ffa500",
	"black":          "000000",
	"white":          "ffffff",
	"gray":           "808080",
	"grey":           "808080",
}

// ParseColor converts "#rrggbb" or a known colour name to a drawing colour.
func ParseColor(s string) (drawing.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") {
		hex := strings.TrimPrefix(s, "#")
		if len(hex) != 3 && len(hex) != 6 {
			return drawing.Color{}, fmt.Errorf("invalid hex colour %q", s)
		}
		if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
			return drawing.Color{}, fmt.Errorf("invalid hex colour %q", s)
		}
		return drawing.ColorFromHex(hex), nil
	}
	if hex, ok := namedColors[s]; ok {
		return drawing.ColorFromHex(hex), nil
	}
	return drawing.Color{}, fmt.Errorf("unknown colour %q", s)
}

// RenderStatic draws aggs as a non-animated stacked bar chart through go-chart.
func RenderStatic(w io.Writer, format Format, aggs []models.YearlyAggregate, l Layout) error {
	rows := l.rows(aggs)
	if len(rows) == 0 {
		return ErrNoData
	}

	attendanceColor, err := ParseColor(l.AttendanceColor)
	if err != nil {
		return err
	}
	remainingColor, err := ParseColor(l.RemainingColor)
	if err != nil {
		return err
	}

	step := l.InnerWidth() / float64(len(rows))
	barWidth := int(math.Max(1, math.Floor(step*(1-l.Padding))))
	spacing := int(math.Floor(step * l.Padding))

	bars := make([]chart.StackedBar, 0, len(rows))
	for _, a := range rows {
		bars = append(bars, chart.StackedBar{
			Name:   strconv.Itoa(a.Year),
			Width:  barWidth,
			Values: stackValues(a, attendanceColor, remainingColor),
		})
	}

	graph := chart.StackedBarChart{
		Title:  l.Title,
		Width:  int(l.Width),
		Height: int(l.Height),
		Background: chart.Style{
			Padding: chart.Box{
				Top:    int(l.Margin.Top) + 20,
				Right:  int(l.Margin.Right),
				Bottom: int(l.Margin.Bottom),
				Left:   int(l.Margin.Left),
			},
		},
		BarSpacing: spacing,
		Bars:       bars,
	}

	switch format {
	case FormatSVG:
		return graph.Render(chart.SVG, w)
	case FormatPNG:
		return graph.Render(chart.PNG, w)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// stackValues lists the segments top to bottom, the order go-chart stacks in.
func stackValues(a models.YearlyAggregate, attendanceColor, remainingColor drawing.Color) []chart.Value {
	if !a.HasProportion() {
		hidden := chart.Style{FillColor: drawing.ColorTransparent, StrokeColor: drawing.ColorTransparent}
		return []chart.Value{{Label: "n/a", Value: 1, Style: hidden}}
	}
	split := clamp01(a.AttendanceProportion)
	return []chart.Value{
		{
			Label: "Remaining capacity",
			Value: 1 - split,
			Style: chart.Style{FillColor: remainingColor, StrokeColor: remainingColor},
		},
		{
			Label: "Attendance",
			Value: split,
			Style: chart.Style{FillColor: attendanceColor, StrokeColor: attendanceColor},
		},
	}
}
