package chart

import "github.com/rewired-gh/broadway/internal/models"

// Series names, in drawing order.
const (
	SeriesAttendance = "attendance"
	SeriesRemaining  = "remaining"
)

// Series lists the stack keys bottom to top.
var Series = []string{SeriesAttendance, SeriesRemaining}

// Segment is one slice of a stacked bar in proportion units.
type Segment struct {
	Series string
	Year   int
	Lower  float64
	Upper  float64
	// Value is the unclamped proportion, NaN when it is undefined.
	Value float64
}

// Stack splits every aggregate into its attendance and remaining segments,
// grouped by series. Geometry is clamped to [0, 1]; undefined proportions
// collapse to zero-height segments at the baseline.
func Stack(aggs []models.YearlyAggregate) []Segment {
	segments := make([]Segment, 0, 2*len(aggs))
	for _, series := range Series {
		for _, a := range aggs {
			lower, upper, value := 0.0, 0.0, a.AttendanceProportion
			if series == SeriesRemaining {
				value = a.RemainingCapacity
			}
			if a.HasProportion() {
				split := clamp01(a.AttendanceProportion)
				if series == SeriesAttendance {
					upper = split
				} else {
					lower, upper = split, 1
				}
			}
			segments = append(segments, Segment{
				Series: series,
				Year:   a.Year,
				Lower:  lower,
				Upper:  upper,
				Value:  value,
			})
		}
	}
	return segments
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
