package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/rewired-gh/broadway/internal/models"
)

// echartsStack groups both series into one stacked bar per year.
const echartsStack = "capacity"

// NewECharts builds an echarts stacked bar chart for aggs. Undefined
// proportions become gaps ("-") rather than bars.
func NewECharts(aggs []models.YearlyAggregate, l Layout, selection string) *charts.Bar {
	rows := l.rows(aggs)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: l.Title,
			Width:     fmt.Sprintf("%dpx", int(l.Width)),
			Height:    fmt.Sprintf("%dpx", int(l.Height)),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    l.Title,
			Subtitle: selection,
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: l.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: l.YLabel, Min: 0, Max: 1}),
	)

	years := make([]string, 0, len(rows))
	attendance := make([]opts.BarData, 0, len(rows))
	remaining := make([]opts.BarData, 0, len(rows))
	for _, a := range rows {
		years = append(years, strconv.Itoa(a.Year))
		if !a.HasProportion() {
			attendance = append(attendance, opts.BarData{Value: "-"})
			remaining = append(remaining, opts.BarData{Value: "-"})
			continue
		}
		split := clamp01(a.AttendanceProportion)
		attendance = append(attendance, opts.BarData{Name: FormatPercent(split), Value: round4(split)})
		remaining = append(remaining, opts.BarData{Name: FormatPercent(1 - split), Value: round4(1 - split)})
	}

	bar.SetXAxis(years).
		AddSeries("Attendance", attendance,
			charts.WithBarChartOpts(opts.BarChart{Stack: echartsStack}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: l.AttendanceColor}),
		).
		AddSeries("Remaining capacity", remaining,
			charts.WithBarChartOpts(opts.BarChart{Stack: echartsStack}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: l.RemainingColor}),
		)
	return bar
}

// RenderECharts writes an echarts page for aggs.
func RenderECharts(w io.Writer, aggs []models.YearlyAggregate, l Layout, selection string) error {
	return NewECharts(aggs, l, selection).Render(w)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
