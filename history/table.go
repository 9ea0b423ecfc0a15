package history

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var runHeaders = []string{"Run ID", "Started", "Status", "Pages", "Quotes", "Duration", "Output"}

// newTable creates a borderless, left-aligned table writing to w.
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
}

// RenderRuns writes one table row per run.
func RenderRuns(w io.Writer, runs []Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.RunID.String(),
			run.StartedAt.Local().Format(time.DateTime),
			run.Status,
			strconv.Itoa(run.Pages),
			strconv.Itoa(run.Quotes),
			formatDuration(&run),
			run.OutputPath,
		})
	}

	table := newTable(w)
	table.Header(runHeaders)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	return table.Render()
}

// RenderRun writes every field of a single run as a two-column table.
func RenderRun(w io.Writer, run *Run) error {
	finished := "-"
	if run.FinishedAt != nil {
		finished = run.FinishedAt.Local().Format(time.DateTime)
	}
	lastError := "-"
	if run.LastError != nil {
		lastError = *run.LastError
	}

	rows := [][]string{
		{"Run ID", run.RunID.String()},
		{"Base URL", run.BaseURL},
		{"Output", run.OutputPath},
		{"Status", run.Status},
		{"Started", run.StartedAt.Local().Format(time.DateTime)},
		{"Finished", finished},
		{"Duration", formatDuration(run)},
		{"Pages", strconv.Itoa(run.Pages)},
		{"Quotes", strconv.Itoa(run.Quotes)},
		{"Last Error", lastError},
	}

	table := newTable(w)
	table.Header([]string{"Field", "Value"})
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	return table.Render()
}

func formatDuration(run *Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return run.Duration().Round(time.Millisecond).String()
}
