package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/broadway/internal/aggregate"
	"github.com/rewired-gh/broadway/internal/chart"
	"github.com/rewired-gh/broadway/internal/dashboard"
	"github.com/rewired-gh/broadway/internal/logger"
	"github.com/rewired-gh/broadway/internal/models"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		theatre string
		format  string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the chart for one selection to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "svg", "png", "animated", "html":
			default:
				return fmt.Errorf("unknown format %q: want svg, png, animated or html", format)
			}
			if err := a.loadDataset(cmd.Context()); err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), out, func(w io.Writer) error {
				return a.render(w, theatre, format)
			})
		},
	}

	cmd.Flags().StringVarP(&theatre, "theatre", "t", models.AllTheatres, "theatre to chart, or All")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, png, animated or html")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func (a *app) render(w io.Writer, theatre, format string) error {
	layout := a.cfg.Layout()

	switch format {
	case "animated":
		// Start from the "All" view so the frame carries a real transition.
		controller := dashboard.New(a.store, layout, nil)
		return controller.SetSelection(theatre).WriteSVG(w)
	case "html":
		return chart.RenderECharts(w, aggregate.Aggregate(a.store.Records(), theatre), layout, theatre)
	}

	aggs := aggregate.Aggregate(a.store.Records(), theatre)
	err := chart.RenderStatic(w, chart.Format(format), aggs, layout)
	if errors.Is(err, chart.ErrNoData) {
		logger.Warn("Data not loaded or empty for selection %q", theatre)
		if format == "svg" {
			return chart.NewScene(layout).Update(theatre, aggs).WriteSVG(w)
		}
	}
	return err
}

func newAggregateCmd(a *app) *cobra.Command {
	var (
		theatre string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Print yearly attendance proportions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadDataset(cmd.Context()); err != nil {
				return err
			}
			aggs := aggregate.Aggregate(a.store.Records(), theatre)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(aggs)
			}
			return writeAggregateTable(cmd.OutOrStdout(), aggs)
		},
	}

	cmd.Flags().StringVarP(&theatre, "theatre", "t", models.AllTheatres, "theatre to aggregate, or All")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func writeAggregateTable(w io.Writer, aggs []models.YearlyAggregate) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tRecords\tMean attendance\tMean capacity\tFilled\tRemaining\t")
	for _, a := range aggs {
		filled, remaining := "n/a", "n/a"
		if a.HasProportion() {
			filled = fmt.Sprintf("%.1f%%", a.AttendanceProportion*100)
			remaining = fmt.Sprintf("%.1f%%", a.RemainingCapacity*100)
		}
		fmt.Fprintf(tw, "%d\t%d\t%.1f\t%.1f\t%s\t%s\t\n",
			a.Year, a.Records, a.Attendance, a.TotalCapacity, filled, remaining)
	}
	return tw.Flush()
}

func newTheatresCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "theatres",
		Short: "List the selectable options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadDataset(cmd.Context()); err != nil {
				return err
			}
			for _, option := range a.store.Options() {
				fmt.Fprintln(cmd.OutOrStdout(), option)
			}
			return nil
		},
	}
}

// writeOutput runs write against stdout for "-" or against a new file.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("Wrote %s", path)
	return nil
}
