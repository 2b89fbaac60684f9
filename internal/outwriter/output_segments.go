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

var segmentCSVHeader = []string{"dimension", "segment", "count", "low_count", "low_rate"}

// WriteSegmentResults outputs the Top-N segments of a report, dispatching based on the output format configured.
func WriteSegmentResults(report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	result := []schema.DimensionSegments{{
		Dimension:     report.Filter.SegmentDimension,
		IncludedCount: report.Evaluation.IncludedCount,
		Segments:      report.Evaluation.Segments,
	}}

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result[0])
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut, schema.ParquetOut:
		return writeSegmentRows(result, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeSegmentTable(w, result[0], cfg); err != nil {
				return err
			}
			return writeSummary(w, cfg, duration, "Showing %d segments over %d included consultants",
				len(result[0].Segments), result[0].IncludedCount)
		}, "Wrote table")
	}
	return nil
}

// WriteSweepResults outputs the Top-N segments of every dimension, dispatching based on the output format configured.
func WriteSweepResults(results []schema.DimensionSegments, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut, schema.ParquetOut:
		return writeSegmentRows(results, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			total := 0
			for i, r := range results {
				if i > 0 {
					if _, err := fmt.Fprintln(w); err != nil {
						return err
					}
				}
				if err := writeSegmentTable(w, r, cfg); err != nil {
					return err
				}
				total += len(r.Segments)
			}
			return writeSummary(w, cfg, duration, "Showing %d segments across %d dimensions", total, len(results))
		}, "Wrote table")
	}
	return nil
}

// writeSegmentRows writes segments of one or more dimensions as flat CSV or Parquet rows.
func writeSegmentRows(results []schema.DimensionSegments, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut {
		var rows []parquet.SegmentRow
		for _, r := range results {
			rows = append(rows, parquet.ConvertSegments(r.Dimension, r.Segments)...)
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, rows)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		return nil
	}
	if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeSegmentCSV(w, results)
	}, "Wrote CSV"); err != nil {
		return fmt.Errorf("error writing CSV output: %w", err)
	}
	return nil
}

// writeSegmentTable renders one dimension's segments under a title line.
func writeSegmentTable(w io.Writer, result schema.DimensionSegments, cfg *contract.Config) error {
	_, fmtPct := createFormatters(cfg.Precision)
	if _, err := fmt.Fprintf(w, "Top segments by %s\n", result.Dimension); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Segment", "Count", "Low", "Low Rate"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(result.Segments))
	for _, s := range result.Segments {
		rate := s.LowRate
		data = append(data, []string{
			contract.TruncateText(s.SegmentValue, maxNameWidth),
			strconv.Itoa(s.Count),
			strconv.Itoa(s.LowCount),
			fmtPct(&rate),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeSegmentCSV(w io.Writer, results []schema.DimensionSegments) error {
	return writeCSVWithHeader(w, segmentCSVHeader, func(cw *csv.Writer) error {
		for _, r := range results {
			for _, s := range r.Segments {
				rec := []string{
					string(r.Dimension),
					s.SegmentValue,
					strconv.Itoa(s.Count),
					strconv.Itoa(s.LowCount),
					strconv.FormatFloat(s.LowRate, 'f', -1, 64),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
