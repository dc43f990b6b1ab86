// Package dashboard ties the loaded dataset, the current theatre selection and
// the animated chart together.
//
// A Controller holds exactly one selection. Every SetSelection runs the whole
// pipeline (filter, aggregate, render) synchronously while holding the
// controller lock, so frames are produced in the order selections arrive and a
// new selection starts its transition from whatever was rendered last.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rewired-gh/broadway/internal/aggregate"
	"github.com/rewired-gh/broadway/internal/broadway"
	"github.com/rewired-gh/broadway/internal/chart"
	"github.com/rewired-gh/broadway/internal/logger"
	"github.com/rewired-gh/broadway/internal/metrics"
	"github.com/rewired-gh/broadway/internal/models"
	"github.com/rewired-gh/broadway/internal/storage"
)

// Controller handles the selection and the chart state
type Controller struct {
	storage *storage.Storage
	metrics *metrics.Registry
	scene   *chart.Scene

	mu         sync.Mutex
	selection  string
	aggregates []models.YearlyAggregate
	frame      chart.Frame
}

// New creates a Controller over the dataset in s and renders the initial
// "All" view. reg may be nil.
func New(s *storage.Storage, layout chart.Layout, reg *metrics.Registry) *Controller {
	c := &Controller{
		storage: s,
		metrics: reg,
		scene:   chart.NewScene(layout),
	}
	c.mu.Lock()
	c.apply(models.AllTheatres)
	c.mu.Unlock()
	return c
}

// Options returns the dropdown entries, "All" first.
func (c *Controller) Options() []string {
	return c.storage.Options()
}

// RecordCount returns the number of loaded records.
func (c *Controller) RecordCount() int {
	return c.storage.Len()
}

// Layout returns the chart layout in use.
func (c *Controller) Layout() chart.Layout {
	return c.scene.Layout()
}

// Selection returns the current selection.
func (c *Controller) Selection() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Frame returns the most recently rendered frame.
func (c *Controller) Frame() chart.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Aggregates returns the rows behind the current frame.
func (c *Controller) Aggregates() []models.YearlyAggregate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aggregates
}

// AggregatesFor computes rows for selection without touching the current
// selection. An empty selection means the current one.
func (c *Controller) AggregatesFor(selection string) []models.YearlyAggregate {
	if selection == "" {
		return c.Aggregates()
	}
	return aggregate.Aggregate(c.storage.Records(), selection)
}

// SetSelection switches the chart to selection and returns the new frame.
// Names outside the option list yield an empty chart.
func (c *Controller) SetSelection(selection string) chart.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.selection
	c.apply(selection)
	if previous != selection {
		c.metrics.SelectionChanged(c.metricLabel(selection))
		logger.Info("Selection changed from %q to %q (%d years)", previous, selection, len(c.aggregates))
	}
	return c.frame
}

// apply must be called with mu held.
func (c *Controller) apply(selection string) {
	start := time.Now()
	defer c.metrics.ObserveRender("frame", start)

	c.selection = selection
	c.aggregates = aggregate.Aggregate(c.storage.Records(), selection)
	c.frame = c.scene.Update(selection, c.aggregates)

	if c.frame.Empty() {
		logger.Warn("Data not loaded or empty for selection %q", selection)
	}
	logger.Debug("Rendered frame %d: %d entered, %d updated, %d exited",
		c.frame.Generation, len(c.frame.Diff.Entered), len(c.frame.Diff.Updated), len(c.frame.Diff.Exited))
}

// metricLabel bounds label cardinality to the known options.
func (c *Controller) metricLabel(selection string) string {
	if selection == models.AllTheatres || c.storage.HasTheatre(selection) {
		return selection
	}
	return "unknown"
}

// Load fetches the dataset through client and stores it. Skipped entries are
// logged; an unusable dataset leaves s untouched and returns the error.
func Load(ctx context.Context, client *broadway.Client, s *storage.Storage, reg *metrics.Registry) (*broadway.LoadResult, error) {
	logger.Info("Loading dataset from %s", client.Source())

	result, err := client.FetchRecords(ctx)
	if err != nil {
		reg.DatasetLoadFailed()
		if errors.Is(err, broadway.ErrEmptyDataset) || errors.Is(err, broadway.ErrNoValidRecords) {
			logger.Error("Data not loaded or empty: %v", err)
		}
		return nil, err
	}

	for _, skipped := range result.Skipped {
		logger.Debug("Skipped dataset entry %d: %s", skipped.Index, skipped.Reason)
	}
	if len(result.Skipped) > 0 {
		logger.Warn("Skipped %d invalid dataset entries", len(result.Skipped))
	}

	if err := s.Replace(result.Records, result.Source); err != nil {
		reg.DatasetLoadFailed()
		return nil, fmt.Errorf("failed to store dataset: %w", err)
	}
	reg.DatasetLoaded(len(result.Records), len(result.Skipped))

	logger.Info("Loaded %d records (%d theatres) in %v",
		len(result.Records), len(s.Options())-1, result.Duration)
	return result, nil
}
