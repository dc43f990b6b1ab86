// Package chart renders yearly attendance aggregates as a stacked bar chart.
//
// Each year gets one band on the horizontal axis. Its bar is split into the
// attendance proportion (bottom) and the remaining capacity (top) against a
// fixed [0, 1] vertical domain. A Scene keeps the bars it rendered last so the
// next frame can animate shared bars from their previous geometry.
package chart

import (
	"fmt"
	"time"

	"github.com/rewired-gh/broadway/internal/models"
)

// ZeroCapacityPolicy controls how years with an undefined proportion are drawn.
type ZeroCapacityPolicy string

const (
	// ZeroCapacityZero keeps the year's band and draws zero-height segments.
	ZeroCapacityZero ZeroCapacityPolicy = "zero"
	// ZeroCapacityOmit removes the year from the chart.
	ZeroCapacityOmit ZeroCapacityPolicy = "omit"
)

// Margin is the space reserved around the plot area for axes and labels.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Layout describes the chart geometry and presentation.
type Layout struct {
	Width           float64
	Height          float64
	Margin          Margin
	Padding         float64
	YTicks          int
	Transition      time.Duration
	AttendanceColor string
	RemainingColor  string
	Title           string
	XLabel          string
	YLabel          string
	ZeroCapacity    ZeroCapacityPolicy
}

// DefaultLayout returns the 960x500 steelblue/lightblue attendance chart.
func DefaultLayout() Layout {
	return Layout{
		Width:           960,
		Height:          500,
		Margin:          Margin{Top: 20, Right: 20, Bottom: 50, Left: 60},
		Padding:         0.1,
		YTicks:          5,
		Transition:      500 * time.Millisecond,
		AttendanceColor: "steelblue",
		RemainingColor:  "lightblue",
		Title:           "Average Proportion of the Theater Filled by Year",
		XLabel:          "Year",
		YLabel:          "Proportion of the Theater Filled",
		ZeroCapacity:    ZeroCapacityZero,
	}
}

// InnerWidth is the width of the plot area.
func (l Layout) InnerWidth() float64 {
	return l.Width - l.Margin.Left - l.Margin.Right
}

// InnerHeight is the height of the plot area.
func (l Layout) InnerHeight() float64 {
	return l.Height - l.Margin.Top - l.Margin.Bottom
}

// Validate checks that the layout can produce a drawable chart.
func (l Layout) Validate() error {
	if l.InnerWidth() <= 0 || l.InnerHeight() <= 0 {
		return fmt.Errorf("chart area %vx%v leaves no room inside margins", l.Width, l.Height)
	}
	if l.Padding < 0 || l.Padding >= 1 {
		return fmt.Errorf("band padding must be in [0, 1), got %v", l.Padding)
	}
	if l.YTicks < 1 {
		return fmt.Errorf("y ticks must be at least 1, got %d", l.YTicks)
	}
	if l.Transition < 0 {
		return fmt.Errorf("transition must not be negative, got %v", l.Transition)
	}
	switch l.ZeroCapacity {
	case ZeroCapacityZero, ZeroCapacityOmit:
	default:
		return fmt.Errorf("unknown zero capacity policy %q", l.ZeroCapacity)
	}
	return nil
}

// rows returns the aggregates that get a band under the zero capacity policy.
func (l Layout) rows(aggs []models.YearlyAggregate) []models.YearlyAggregate {
	if l.ZeroCapacity != ZeroCapacityOmit {
		return aggs
	}
	rows := make([]models.YearlyAggregate, 0, len(aggs))
	for _, a := range aggs {
		if a.HasProportion() {
			rows = append(rows, a)
		}
	}
	return rows
}
