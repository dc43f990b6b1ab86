package chart

import (
	"sort"
	"strconv"

	"github.com/rewired-gh/broadway/internal/aggregate"
	"github.com/rewired-gh/broadway/internal/models"
)

// BarKey identifies a bar segment across frames.
type BarKey struct {
	Series string
	Year   int
}

// Rect is a bar segment's geometry in plot-area pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Bar is one drawn segment. From holds the previous geometry of bars that
// were already on screen.
type Bar struct {
	Key   BarKey
	Fill  string
	Rect  Rect
	From  *Rect
	Value float64
}

// Animated reports whether the bar moves between frames.
func (b Bar) Animated() bool {
	return b.From != nil && *b.From != b.Rect
}

// XTick is a year label on the horizontal axis, positioned at band centre.
type XTick struct {
	Year  int
	Label string
	X     float64
	FromX *float64
}

// Animated reports whether the tick moves between frames.
func (t XTick) Animated() bool {
	return t.FromX != nil && *t.FromX != t.X
}

// YTick is a percentage label on the vertical axis.
type YTick struct {
	Value float64
	Label string
	Y     float64
}

// Diff lists how the bars of a frame relate to the previous frame.
type Diff struct {
	Entered []BarKey
	Updated []BarKey
	Exited  []BarKey
}

// Frame is a fully laid-out chart ready to be written out.
type Frame struct {
	Layout     Layout
	Selection  string
	Generation uint64
	Rows       []models.YearlyAggregate
	Bars       []Bar
	XTicks     []XTick
	YTicks     []YTick
	Diff       Diff
}

// Empty reports whether the frame has no bands to draw.
func (f Frame) Empty() bool {
	return len(f.XTicks) == 0
}

// Scene retains the last rendered bars so consecutive frames can be diffed.
// A Scene is not safe for concurrent use.
type Scene struct {
	layout     Layout
	bars       map[BarKey]Rect
	ticks      map[int]float64
	generation uint64
}

// NewScene creates an empty scene.
func NewScene(layout Layout) *Scene {
	return &Scene{
		layout: layout,
		bars:   make(map[BarKey]Rect),
		ticks:  make(map[int]float64),
	}
}

// Layout returns the scene layout.
func (s *Scene) Layout() Layout {
	return s.layout
}

// Update lays out aggs, reconciles the result against the bars currently on
// screen, and makes it the new current state.
func (s *Scene) Update(selection string, aggs []models.YearlyAggregate) Frame {
	l := s.layout
	rows := l.rows(aggs)

	x := NewBandScale(aggregate.Years(rows), 0, l.InnerWidth(), l.Padding)
	y := NewLinearScale(0, 1, l.InnerHeight(), 0)

	s.generation++
	frame := Frame{
		Layout:     l,
		Selection:  selection,
		Generation: s.generation,
		Rows:       rows,
	}

	bars := make(map[BarKey]Rect, 2*len(rows))
	for _, seg := range Stack(rows) {
		left, ok := x.X(seg.Year)
		if !ok {
			continue
		}
		key := BarKey{Series: seg.Series, Year: seg.Year}
		rect := Rect{
			X:      left,
			Y:      y.Scale(seg.Upper),
			Width:  x.Bandwidth(),
			Height: y.Scale(seg.Lower) - y.Scale(seg.Upper),
		}
		bar := Bar{Key: key, Fill: s.fill(seg.Series), Rect: rect, Value: seg.Value}

		if prev, shown := s.bars[key]; shown {
			from := prev
			bar.From = &from
			frame.Diff.Updated = append(frame.Diff.Updated, key)
		} else {
			frame.Diff.Entered = append(frame.Diff.Entered, key)
		}
		bars[key] = rect
		frame.Bars = append(frame.Bars, bar)
	}

	for key := range s.bars {
		if _, kept := bars[key]; !kept {
			frame.Diff.Exited = append(frame.Diff.Exited, key)
		}
	}
	sortKeys(frame.Diff.Exited)

	ticks := make(map[int]float64, len(rows))
	for _, row := range rows {
		left, _ := x.X(row.Year)
		tick := XTick{
			Year:  row.Year,
			Label: strconv.Itoa(row.Year),
			X:     left + x.Bandwidth()/2,
		}
		if prev, shown := s.ticks[row.Year]; shown {
			from := prev
			tick.FromX = &from
		}
		ticks[row.Year] = tick.X
		frame.XTicks = append(frame.XTicks, tick)
	}

	for _, v := range y.Ticks(l.YTicks) {
		frame.YTicks = append(frame.YTicks, YTick{Value: v, Label: FormatPercent(v), Y: y.Scale(v)})
	}

	s.bars = bars
	s.ticks = ticks
	return frame
}

func (s *Scene) fill(series string) string {
	if series == SeriesAttendance {
		return s.layout.AttendanceColor
	}
	return s.layout.RemainingColor
}

func sortKeys(keys []BarKey) {
	order := map[string]int{SeriesAttendance: 0, SeriesRemaining: 1}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Series != keys[j].Series {
			return order[keys[i].Series] < order[keys[j].Series]
		}
		return keys[i].Year < keys[j].Year
	})
}
