// Package aggregate turns raw attendance records into per-year summaries.
//
// For the active selection the records are filtered by theatre, grouped by
// year, and reduced to the mean attendance and mean total capacity of each
// group. The attendance proportion is the ratio of those two means:
//
//	proportion = mean(Attendance) / mean(Total_Capacity)
//	remaining  = 1 - proportion
//
// A group whose mean capacity is zero has an undefined proportion and is
// reported as NaN. Everything here is a pure function of its inputs.
package aggregate

import (
	"math"
	"sort"

	"github.com/rewired-gh/broadway/internal/models"
)

// Filter returns the records matching selection. "All" keeps every record.
// The input slice is never modified.
func Filter(records []models.AttendanceRecord, selection string) []models.AttendanceRecord {
	if selection == models.AllTheatres {
		return records
	}
	var filtered []models.AttendanceRecord
	for _, r := range records {
		if r.ShowTheatre == selection {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

type yearGroup struct {
	count         int
	attendance    float64
	totalCapacity float64
}

// Aggregate computes one YearlyAggregate per distinct year among the records
// matching selection, ordered by year ascending. An unknown theatre yields an
// empty result.
func Aggregate(records []models.AttendanceRecord, selection string) []models.YearlyAggregate {
	groups := make(map[int]*yearGroup)
	for _, r := range Filter(records, selection) {
		g, ok := groups[r.Year]
		if !ok {
			g = &yearGroup{}
			groups[r.Year] = g
		}
		// Sums accumulate in input order so reruns are bit-identical.
		g.count++
		g.attendance += r.Attendance
		g.totalCapacity += r.TotalCapacity
	}

	result := make([]models.YearlyAggregate, 0, len(groups))
	for year, g := range groups {
		meanAttendance := g.attendance / float64(g.count)
		meanCapacity := g.totalCapacity / float64(g.count)

		proportion := math.NaN()
		if meanCapacity != 0 {
			proportion = meanAttendance / meanCapacity
		}

		result = append(result, models.YearlyAggregate{
			Year:                 year,
			Records:              g.count,
			Attendance:           meanAttendance,
			TotalCapacity:        meanCapacity,
			AttendanceProportion: proportion,
			RemainingCapacity:    1 - proportion,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Year < result[j].Year
	})
	return result
}

// Theatres returns the distinct theatre names in order of first occurrence.
func Theatres(records []models.AttendanceRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		if seen[r.ShowTheatre] {
			continue
		}
		seen[r.ShowTheatre] = true
		names = append(names, r.ShowTheatre)
	}
	return names
}

// Options returns the selectable values: "All" followed by every theatre.
func Options(records []models.AttendanceRecord) []string {
	theatres := Theatres(records)
	options := make([]string, 0, len(theatres)+1)
	options = append(options, models.AllTheatres)
	return append(options, theatres...)
}

// Years returns the distinct years of aggs in their existing order.
func Years(aggs []models.YearlyAggregate) []int {
	years := make([]int, len(aggs))
	for i, a := range aggs {
		years[i] = a.Year
	}
	return years
}
