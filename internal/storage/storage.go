// Package storage provides thread-safe in-memory storage for the loaded
// attendance dataset. The dataset is read once at startup and replaced as a
// whole; nothing is persisted.
//
// Readers receive the stored slice directly and must treat it as read-only.
package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/rewired-gh/broadway/internal/aggregate"
	"github.com/rewired-gh/broadway/internal/models"
)

// Storage holds the current dataset and the theatre options derived from it.
type Storage struct {
	records  []models.AttendanceRecord
	options  []string
	source   string
	loadedAt time.Time
	mu       sync.RWMutex
}

// New creates an empty Storage instance
func New() *Storage {
	return &Storage{
		options: []string{models.AllTheatres},
	}
}

// Replace validates and stores a complete dataset, deriving the option list.
func (s *Storage) Replace(records []models.AttendanceRecord, source string) error {
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return fmt.Errorf("invalid record %d: %w", i, err)
		}
	}

	stored := make([]models.AttendanceRecord, len(records))
	copy(stored, records)
	options := aggregate.Options(stored)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = stored
	s.options = options
	s.source = source
	s.loadedAt = time.Now()
	return nil
}

// Records returns the stored dataset.
func (s *Storage) Records() []models.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.records
}

// Options returns "All" followed by the distinct theatre names.
func (s *Storage) Options() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	options := make([]string, len(s.options))
	copy(options, s.options)
	return options
}

// HasTheatre reports whether name is a theatre in the dataset.
func (s *Storage) HasTheatre(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, option := range s.options[1:] {
		if option == name {
			return true
		}
	}
	return false
}

// Len returns the number of stored records.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Source returns where the dataset was loaded from and when.
func (s *Storage) Source() (string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.source, s.loadedAt
}
