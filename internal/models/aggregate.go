package models

import (
	"encoding/json"
	"math"
)

// YearlyAggregate summarises every selected record of one year.
// AttendanceProportion is NaN when the mean capacity is zero, in which case
// RemainingCapacity is NaN as well.
type YearlyAggregate struct {
	Year                 int     `json:"year"`
	Records              int     `json:"records"`
	Attendance           float64 `json:"mean_attendance"`
	TotalCapacity        float64 `json:"mean_total_capacity"`
	AttendanceProportion float64 `json:"attendance_proportion"`
	RemainingCapacity    float64 `json:"remaining_capacity"`
}

// HasProportion reports whether the proportion is a real number.
func (a YearlyAggregate) HasProportion() bool {
	return !math.IsNaN(a.AttendanceProportion) && !math.IsInf(a.AttendanceProportion, 0)
}

// MarshalJSON encodes undefined proportions as null; encoding/json rejects NaN.
func (a YearlyAggregate) MarshalJSON() ([]byte, error) {
	type wire struct {
		Year                 int      `json:"year"`
		Records              int      `json:"records"`
		Attendance           float64  `json:"mean_attendance"`
		TotalCapacity        float64  `json:"mean_total_capacity"`
		AttendanceProportion *float64 `json:"attendance_proportion"`
		RemainingCapacity    *float64 `json:"remaining_capacity"`
	}
	w := wire{
		Year:          a.Year,
		Records:       a.Records,
		Attendance:    a.Attendance,
		TotalCapacity: a.TotalCapacity,
	}
	if a.HasProportion() {
		p, r := a.AttendanceProportion, a.RemainingCapacity
		w.AttendanceProportion = &p
		w.RemainingCapacity = &r
	}
	return json.Marshal(w)
}
