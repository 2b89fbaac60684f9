package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/internal/parquet"
	"github.com/huangsam/coverspot/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// rankedCSVHeader lists the ranked list columns in export order.
var rankedCSVHeader = []string{
	"rank",
	"full_name",
	"entry_date",
	"url",
	"department",
	"team",
	"lead",
	"total_engagements",
	"since_ratio",
	"before_ratio",
	"ongoing_age_months",
	"score",
	"label",
	"reasons",
}

// WriteRankedResults outputs ranked consultants, dispatching based on the output format configured.
func WriteRankedResults(list schema.RankedList, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, list)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankedCSV(w, list, cfg.Precision)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.ConvertRankedList(list))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeRankedTable(w, list, cfg); err != nil {
				return err
			}
			return writeSummary(w, cfg, duration, "Showing %d ranked consultants", len(list))
		}, "Wrote table")
	}
	return nil
}

// writeRankedTable renders the worst-first consultant table.
func writeRankedTable(w io.Writer, list schema.RankedList, cfg *contract.Config) error {
	fmtFloat, fmtPct := createFormatters(cfg.Precision)
	nameWidth := GetMaxTableNameWidth(cfg)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Name", "Department", "Team", "Since", "Before", "Age", "Score", "Label", "Reasons"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(list))
	for _, e := range list {
		data = append(data, []string{
			strconv.Itoa(e.Rank),
			contract.TruncateText(e.Record.FullName, nameWidth),
			contract.TruncateText(e.Record.Department, 20),
			contract.TruncateText(e.Record.Team, 20),
			fmtPct(e.Metrics.SelectedRatioSince),
			fmtPct(e.Metrics.SelectedRatioBefore),
			formatMonths(e.Metrics.OngoingAgeMonths),
			fmtFloat(e.Metrics.AnomalyScore),
			labelFor(cfg, e.Metrics.AnomalyScore),
			formatReasons(e.Metrics.AnomalyReasons),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeRankedCSV writes one row per ranked entry. Ratios keep full precision.
func writeRankedCSV(w io.Writer, list schema.RankedList, precision int) error {
	fmtFloat, _ := createFormatters(precision)
	return writeCSVWithHeader(w, rankedCSVHeader, func(cw *csv.Writer) error {
		for _, e := range list {
			rec := []string{
				strconv.Itoa(e.Rank),
				e.Record.FullName,
				formatDate(e.Record.EntryDate),
				e.Record.URL,
				e.Record.Department,
				e.Record.Team,
				e.Record.Lead,
				strconv.Itoa(e.Record.TotalEngagements),
				rawFloat(e.Metrics.SelectedRatioSince),
				rawFloat(e.Metrics.SelectedRatioBefore),
				rawInt(e.Metrics.OngoingAgeMonths),
				fmtFloat(e.Metrics.AnomalyScore),
				e.Label,
				schema.JoinReasons(e.Metrics.AnomalyReasons),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
