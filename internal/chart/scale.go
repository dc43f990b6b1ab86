package chart

import (
	"fmt"
	"math"
)

// BandScale maps discrete years to evenly spaced bands of a pixel range.
// Inner and outer padding are both expressed as a fraction of the step.
type BandScale struct {
	index     map[int]int
	start     float64
	step      float64
	bandwidth float64
}

// NewBandScale builds a band scale over domain, centred in [r0, r1].
func NewBandScale(domain []int, r0, r1, padding float64) BandScale {
	n := float64(len(domain))
	step := (r1 - r0) / math.Max(1, n-padding+2*padding)
	start := r0 + (r1-r0-step*(n-padding))*0.5

	index := make(map[int]int, len(domain))
	for i, year := range domain {
		if _, dup := index[year]; !dup {
			index[year] = i
		}
	}

	return BandScale{
		index:     index,
		start:     start,
		step:      step,
		bandwidth: step * (1 - padding),
	}
}

// X returns the left edge of year's band.
func (b BandScale) X(year int) (float64, bool) {
	i, ok := b.index[year]
	if !ok {
		return 0, false
	}
	return b.start + b.step*float64(i), true
}

// Bandwidth returns the width of every band.
func (b BandScale) Bandwidth() float64 {
	return b.bandwidth
}

// Step returns the distance between the starts of adjacent bands.
func (b BandScale) Step() float64 {
	return b.step
}

// LinearScale maps a continuous domain onto a pixel range.
type LinearScale struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinearScale returns a scale mapping [d0, d1] onto [r0, r1].
func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Scale maps v into the range. Values outside the domain are extrapolated.
func (s LinearScale) Scale(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickStep returns a 1, 2 or 5 times power-of-ten step that splits
// [start, stop] into roughly count intervals.
func tickStep(start, stop float64, count int) float64 {
	step0 := math.Abs(stop-start) / float64(count)
	step1 := math.Pow(10, math.Floor(math.Log10(step0)))
	ratio := step0 / step1
	switch {
	case ratio >= e10:
		step1 *= 10
	case ratio >= e5:
		step1 *= 5
	case ratio >= e2:
		step1 *= 2
	}
	return step1
}

// Ticks returns round values across the domain, roughly count of them.
func (s LinearScale) Ticks(count int) []float64 {
	lo, hi := math.Min(s.d0, s.d1), math.Max(s.d0, s.d1)
	if count < 1 || lo == hi {
		return []float64{lo}
	}
	step := tickStep(lo, hi, count)

	// Sub-unit steps divide by the inverse so 3*0.2 lands on 0.6 exactly.
	value := func(i float64) float64 { return i * step }
	if step < 1 {
		inv := math.Round(1 / step)
		value = func(i float64) float64 { return i / inv }
		step = 1 / inv
	}

	first := math.Ceil(lo / step)
	last := math.Floor(hi / step)
	ticks := make([]float64, 0, int(last-first)+1)
	for i := first; i <= last; i++ {
		ticks = append(ticks, value(i))
	}
	return ticks
}

// FormatPercent renders a proportion as a whole percentage.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
