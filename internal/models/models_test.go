package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttendanceRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  AttendanceRecord
		wantErr bool
	}{
		{
			name:   "valid record",
			record: AttendanceRecord{Year: 2004, ShowTheatre: "Gershwin", Attendance: 1700, TotalCapacity: 1933},
		},
		{
			name:   "zero capacity is accepted",
			record: AttendanceRecord{Year: 2004, ShowTheatre: "Gershwin", Attendance: 0, TotalCapacity: 0},
		},
		{
			name:    "missing year",
			record:  AttendanceRecord{ShowTheatre: "Gershwin", Attendance: 10, TotalCapacity: 20},
			wantErr: true,
		},
		{
			name:    "empty theatre",
			record:  AttendanceRecord{Year: 2004, Attendance: 10, TotalCapacity: 20},
			wantErr: true,
		},
		{
			name:    "negative attendance",
			record:  AttendanceRecord{Year: 2004, ShowTheatre: "Gershwin", Attendance: -1, TotalCapacity: 20},
			wantErr: true,
		},
		{
			name:    "NaN capacity",
			record:  AttendanceRecord{Year: 2004, ShowTheatre: "Gershwin", Attendance: 1, TotalCapacity: math.NaN()},
			wantErr: true,
		},
		{
			name:    "infinite attendance",
			record:  AttendanceRecord{Year: 2004, ShowTheatre: "Gershwin", Attendance: math.Inf(1), TotalCapacity: 20},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("AttendanceRecord.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestYearlyAggregateMarshalJSON(t *testing.T) {
	data, err := json.Marshal(YearlyAggregate{Year: 2020, Records: 2, Attendance: 60, TotalCapacity: 100, AttendanceProportion: 0.6, RemainingCapacity: 0.4})
	require.NoError(t, err)
	require.JSONEq(t, `{"year":2020,"records":2,"mean_attendance":60,"mean_total_capacity":100,"attendance_proportion":0.6,"remaining_capacity":0.4}`, string(data))

	data, err = json.Marshal(YearlyAggregate{Year: 2021, Records: 1, AttendanceProportion: math.NaN(), RemainingCapacity: math.NaN()})
	require.NoError(t, err)
	require.JSONEq(t, `{"year":2021,"records":1,"mean_attendance":0,"mean_total_capacity":0,"attendance_proportion":null,"remaining_capacity":null}`, string(data))
}

func TestYearlyAggregateHasProportion(t *testing.T) {
	require.True(t, YearlyAggregate{AttendanceProportion: 0}.HasProportion())
	require.False(t, YearlyAggregate{AttendanceProportion: math.NaN()}.HasProportion())
	require.False(t, YearlyAggregate{AttendanceProportion: math.Inf(1)}.HasProportion())
}
