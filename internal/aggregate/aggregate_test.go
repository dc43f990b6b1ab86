package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/broadway/internal/models"
)

func twoTheatres() []models.AttendanceRecord {
	return []models.AttendanceRecord{
		{Year: 2020, ShowTheatre: "A", Attendance: 80, TotalCapacity: 100},
		{Year: 2020, ShowTheatre: "B", Attendance: 40, TotalCapacity: 100},
	}
}

func TestAggregateAllTheatres(t *testing.T) {
	aggs := Aggregate(twoTheatres(), models.AllTheatres)
	require.Len(t, aggs, 1)
	assert.Equal(t, 2020, aggs[0].Year)
	assert.Equal(t, 2, aggs[0].Records)
	assert.InDelta(t, 0.6, aggs[0].AttendanceProportion, 1e-12)
	assert.InDelta(t, 0.4, aggs[0].RemainingCapacity, 1e-12)
}

func TestAggregateSingleTheatre(t *testing.T) {
	aggs := Aggregate(twoTheatres(), "A")
	require.Len(t, aggs, 1)
	assert.Equal(t, 2020, aggs[0].Year)
	assert.InDelta(t, 0.8, aggs[0].AttendanceProportion, 1e-12)
	assert.InDelta(t, 0.2, aggs[0].RemainingCapacity, 1e-12)
}

func TestAggregateUnknownTheatre(t *testing.T) {
	aggs := Aggregate(twoTheatres(), "Nowhere")
	require.NotNil(t, aggs)
	require.Empty(t, aggs)
}

func TestAggregateZeroCapacity(t *testing.T) {
	records := []models.AttendanceRecord{
		{Year: 2019, ShowTheatre: "A", Attendance: 10, TotalCapacity: 0},
		{Year: 2019, ShowTheatre: "B", Attendance: 0, TotalCapacity: 0},
		{Year: 2020, ShowTheatre: "A", Attendance: 50, TotalCapacity: 100},
	}
	aggs := Aggregate(records, models.AllTheatres)
	require.Len(t, aggs, 2)
	assert.True(t, math.IsNaN(aggs[0].AttendanceProportion))
	assert.True(t, math.IsNaN(aggs[0].RemainingCapacity))
	assert.False(t, aggs[0].HasProportion())
	assert.InDelta(t, 0.5, aggs[1].AttendanceProportion, 1e-12)
}

func TestAggregateOneRowPerYearAscending(t *testing.T) {
	records := []models.AttendanceRecord{
		{Year: 2005, ShowTheatre: "Gershwin", Attendance: 1800, TotalCapacity: 1933},
		{Year: 2003, ShowTheatre: "Gershwin", Attendance: 1200, TotalCapacity: 1933},
		{Year: 2004, ShowTheatre: "Eugene O'Neill", Attendance: 900, TotalCapacity: 1066},
		{Year: 2003, ShowTheatre: "Eugene O'Neill", Attendance: 700, TotalCapacity: 1066},
		{Year: 2005, ShowTheatre: "Eugene O'Neill", Attendance: 1000, TotalCapacity: 1066},
	}
	aggs := Aggregate(records, models.AllTheatres)
	require.Equal(t, []int{2003, 2004, 2005}, Years(aggs))

	counts := map[int]int{}
	for _, a := range aggs {
		counts[a.Year] = a.Records
	}
	assert.Equal(t, map[int]int{2003: 2, 2004: 1, 2005: 2}, counts)
}

func TestAggregateProportionsSumToOne(t *testing.T) {
	records := []models.AttendanceRecord{
		{Year: 2010, ShowTheatre: "A", Attendance: 333, TotalCapacity: 1000},
		{Year: 2010, ShowTheatre: "B", Attendance: 777, TotalCapacity: 900},
		{Year: 2011, ShowTheatre: "A", Attendance: 1, TotalCapacity: 3},
		{Year: 2012, ShowTheatre: "C", Attendance: 1200, TotalCapacity: 1000},
	}
	for _, sel := range Options(records) {
		for _, a := range Aggregate(records, sel) {
			assert.InDelta(t, 1.0, a.AttendanceProportion+a.RemainingCapacity, 1e-12, "selection %s year %d", sel, a.Year)
		}
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	records := []models.AttendanceRecord{
		{Year: 2010, ShowTheatre: "A", Attendance: 0.1, TotalCapacity: 0.3},
		{Year: 2010, ShowTheatre: "B", Attendance: 0.2, TotalCapacity: 0.7},
		{Year: 2010, ShowTheatre: "C", Attendance: 0.3, TotalCapacity: 0.9},
		{Year: 2011, ShowTheatre: "A", Attendance: 1e-9, TotalCapacity: 3},
	}
	first := Aggregate(records, models.AllTheatres)
	for i := 0; i < 20; i++ {
		again := Aggregate(records, models.AllTheatres)
		require.Len(t, again, len(first))
		for j := range first {
			require.Equal(t, math.Float64bits(first[j].AttendanceProportion), math.Float64bits(again[j].AttendanceProportion))
			require.Equal(t, math.Float64bits(first[j].RemainingCapacity), math.Float64bits(again[j].RemainingCapacity))
		}
	}
}

func TestFilterOnlySelectedTheatre(t *testing.T) {
	records := append(twoTheatres(), models.AttendanceRecord{Year: 2021, ShowTheatre: "A", Attendance: 1, TotalCapacity: 2})
	filtered := Filter(records, "A")
	require.Len(t, filtered, 2)
	for _, r := range filtered {
		assert.Equal(t, "A", r.ShowTheatre)
	}
	assert.Len(t, Filter(records, models.AllTheatres), 3)
}

func TestTheatresFirstOccurrenceOrder(t *testing.T) {
	records := []models.AttendanceRecord{
		{Year: 2001, ShowTheatre: "Majestic"},
		{Year: 2001, ShowTheatre: "Gershwin"},
		{Year: 2002, ShowTheatre: "Majestic"},
		{Year: 2002, ShowTheatre: "Ambassador"},
	}
	assert.Equal(t, []string{"Majestic", "Gershwin", "Ambassador"}, Theatres(records))
	assert.Equal(t, []string{models.AllTheatres, "Majestic", "Gershwin", "Ambassador"}, Options(records))
}
