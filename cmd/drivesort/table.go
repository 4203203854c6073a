package main

import (
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"drivesort/internal/history"
	"drivesort/internal/organize"
)

// newTableWriter returns a writer with the rounded style every drivesort
// table uses.
func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

func rightAligned(columns ...int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, len(columns))
	for _, number := range columns {
		configs = append(configs, table.ColumnConfig{
			Number:      number,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	return configs
}

// renderRunMetrics renders the counter table printed after an organize run.
func renderRunMetrics(report *organize.RunReport) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Metric", "Count"})
	metrics := []struct {
		name  string
		value int
	}{
		{"Files found", report.Stats.TotalFiles},
		{"Files moved", report.Stats.FilesMoved},
		{"Files skipped", report.Stats.FilesSkipped},
		{"Files failed", report.Stats.FilesFailed},
		{"Folders created", report.Stats.FoldersCreated},
		{"Conflicts renamed", report.Plan.ConflictsResolved},
	}
	for _, metric := range metrics {
		tw.AppendRow(table.Row{metric.name, metric.value})
	}
	tw.SetColumnConfigs(rightAligned(2))
	return tw.Render()
}

// renderRunListing renders recorded run summaries, newest first, with start
// times shown relative to now.
func renderRunListing(summaries []history.Summary) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Operation", "Status", "Source", "When", "Moved", "Skipped", "Failed"})
	for _, summary := range summaries {
		tw.AppendRow(table.Row{
			summary.OperationID,
			summary.Status,
			displayFolder(summary.SourceFolder),
			humanize.Time(summary.StartedAt),
			summary.FilesMoved,
			summary.FilesSkipped,
			summary.FilesFailed,
		})
	}
	tw.SetColumnConfigs(rightAligned(5, 6, 7))
	return tw.Render()
}
