package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bft-labs/feedship/pkg/feedship"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

var reportHeaders = []string{"Feed", "File", "Status", "Rows", "Time", "Error"}

var reportAligns = []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}

// renderReport formats a run report as a table with a summary line.
func renderReport(report *feedship.Report) string {
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		status := string(r.Status)
		msg := ""
		switch {
		case !r.Delivered():
			status = fmt.Sprintf("%s (%s)", r.Status, r.Step)
			msg = errText(r.Err)
		case r.CleanupErr != nil:
			msg = "cleanup: " + errText(r.CleanupErr)
		}
		rows = append(rows, []string{
			r.Feed,
			r.File,
			status,
			strconv.Itoa(r.Rows),
			r.Duration.Round(time.Millisecond).String(),
			msg,
		})
	}

	summary := fmt.Sprintf("run %s: %d delivered, %d failed in %s",
		report.RunID, report.Delivered(), report.Failed(), report.Duration().Round(time.Millisecond))
	if report.Fatal != nil {
		summary += "\nrun aborted: " + report.Fatal.Error()
	}
	if len(rows) == 0 {
		return summary
	}
	return renderTable(reportHeaders, rows, reportAligns) + "\n" + summary
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return text.Trim(err.Error(), 80)
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
