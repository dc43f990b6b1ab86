// Package models defines the core domain entities for the broadway service.
// These models represent raw attendance observations, the per-year aggregates
// derived from them, and the theatre selection that filters them.
// Records are validated at load time so malformed rows never reach aggregation.
//
// Terminology:
//   - Record: one attendance observation for a show at a theatre in a year.
//   - Aggregate: the per-year mean proportion of theatre capacity filled.
//   - Selection: the active theatre filter, a theatre name or "All".
package models

import (
	"errors"
	"math"
)

// AllTheatres is the selection sentinel that disables theatre filtering.
const AllTheatres = "All"

// AttendanceRecord is a single observation from the attendance dataset.
// Field tags match the upstream JSON document.
type AttendanceRecord struct {
	Year          int     `json:"Year"`
	ShowTheatre   string  `json:"Show_Theatre"`
	Attendance    float64 `json:"Attendance"`
	TotalCapacity float64 `json:"Total_Capacity"`
}

// Validate checks that all record fields are usable for aggregation.
// A zero capacity is accepted; aggregation reports it as a NaN proportion.
func (r *AttendanceRecord) Validate() error {
	if r.Year <= 0 {
		return errors.New("year must be a positive integer")
	}
	if r.ShowTheatre == "" {
		return errors.New("show theatre must not be empty")
	}
	if math.IsNaN(r.Attendance) || math.IsInf(r.Attendance, 0) {
		return errors.New("attendance must be a finite number")
	}
	if r.Attendance < 0 {
		return errors.New("attendance must not be negative")
	}
	if math.IsNaN(r.TotalCapacity) || math.IsInf(r.TotalCapacity, 0) {
		return errors.New("total capacity must be a finite number")
	}
	if r.TotalCapacity < 0 {
		return errors.New("total capacity must not be negative")
	}
	return nil
}
