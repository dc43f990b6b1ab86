package storage

import (
	"sync"
	"testing"

	"github.com/rewired-gh/broadway/internal/models"
)

func sampleRecords() []models.AttendanceRecord {
	return []models.AttendanceRecord{
		{Year: 2004, ShowTheatre: "Gershwin", Attendance: 1800, TotalCapacity: 1933},
		{Year: 2011, ShowTheatre: "Eugene O'Neill", Attendance: 1050, TotalCapacity: 1066},
		{Year: 2012, ShowTheatre: "Gershwin", Attendance: 1900, TotalCapacity: 1933},
	}
}

func TestStorage_Empty(t *testing.T) {
	s := New()

	if s.Len() != 0 {
		t.Errorf("Expected empty storage, got %d records", s.Len())
	}
	options := s.Options()
	if len(options) != 1 || options[0] != models.AllTheatres {
		t.Errorf("Expected only %q option, got %v", models.AllTheatres, options)
	}
	if s.HasTheatre("Gershwin") {
		t.Error("Empty storage should not report any theatre")
	}
}

func TestStorage_Replace(t *testing.T) {
	s := New()

	if err := s.Replace(sampleRecords(), "test.json"); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if s.Len() != 3 {
		t.Errorf("Expected 3 records, got %d", s.Len())
	}

	want := []string{models.AllTheatres, "Gershwin", "Eugene O'Neill"}
	got := s.Options()
	if len(got) != len(want) {
		t.Fatalf("Expected options %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Option %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if !s.HasTheatre("Gershwin") {
		t.Error("Expected Gershwin to be a known theatre")
	}
	if s.HasTheatre(models.AllTheatres) {
		t.Error("The All sentinel is not a theatre")
	}

	source, loadedAt := s.Source()
	if source != "test.json" {
		t.Errorf("Expected source test.json, got %s", source)
	}
	if loadedAt.IsZero() {
		t.Error("Expected load time to be set")
	}
}

func TestStorage_ReplaceRejectsInvalidRecord(t *testing.T) {
	s := New()
	if err := s.Replace(sampleRecords(), "first"); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	bad := append(sampleRecords(), models.AttendanceRecord{Year: 2013, Attendance: 1, TotalCapacity: 2})
	if err := s.Replace(bad, "second"); err == nil {
		t.Fatal("Expected error for record without theatre")
	}

	// Previous dataset stays in place
	if s.Len() != 3 {
		t.Errorf("Expected 3 records after failed replace, got %d", s.Len())
	}
	if source, _ := s.Source(); source != "first" {
		t.Errorf("Expected source first, got %s", source)
	}
}

func TestStorage_ReplaceCopiesInput(t *testing.T) {
	s := New()
	records := sampleRecords()
	if err := s.Replace(records, "test"); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	records[0].Attendance = 0
	if s.Records()[0].Attendance != 1800 {
		t.Error("Storage should not alias the caller's slice")
	}
}

func TestStorage_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Replace(sampleRecords(), "concurrent")
		}()
		go func() {
			defer wg.Done()
			_ = s.Options()
			_ = s.Records()
			_ = s.HasTheatre("Gershwin")
		}()
	}
	wg.Wait()

	if s.Len() != 3 {
		t.Errorf("Expected 3 records, got %d", s.Len())
	}
}
