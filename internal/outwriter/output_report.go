package outwriter

import (
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

// WriteReportResults outputs the full report, dispatching based on the output format configured.
// CSV and Parquet carry the ranked list, the only per-consultant part of the report.
func WriteReportResults(report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	ranked := schema.TopRanked(report.Evaluation.Ranked, cfg.ResultLimit)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankedCSV(w, ranked, cfg.Precision)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.ConvertRankedList(ranked))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(w, report, ranked, cfg, duration)
		}, "Wrote report")
	}
	return nil
}

// writeReportText renders KPIs, bands, segments and the ranked list in dashboard order.
func writeReportText(w io.Writer, report *schema.Report, ranked schema.RankedList, cfg *contract.Config, duration time.Duration) error {
	if err := writeKPITable(w, report.KPIs, cfg); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := writeBandTable(w, report.Bands); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	segments := schema.DimensionSegments{
		Dimension:     report.Filter.SegmentDimension,
		IncludedCount: report.Evaluation.IncludedCount,
		Segments:      report.Evaluation.Segments,
	}
	if err := writeSegmentTable(w, segments, cfg); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Ranked consultants"); err != nil {
		return err
	}
	if err := writeRankedTable(w, ranked, cfg); err != nil {
		return err
	}
	return writeSummary(w, cfg, duration, "Showing top %d of %d included consultants (%d records)",
		len(ranked), report.Evaluation.IncludedCount, report.TotalRecords)
}

func writeKPITable(w io.Writer, kpi schema.KPISummary, cfg *contract.Config) error {
	_, fmtPct := createFormatters(cfg.Precision)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"KPI", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data := [][]string{
		{"Consultants", countPrinter.Sprintf("%d", kpi.ConsultantCount)},
		{"Median weighted since entry", fmtPct(kpi.MedianWeightedSince)},
		{"Median absolute since entry", fmtPct(kpi.MedianAbsoluteSince)},
		{"Median weighted before entry", fmtPct(kpi.MedianWeightedBefore)},
		{"Median absolute before entry", fmtPct(kpi.MedianAbsoluteBefore)},
		{"Stale engagements (>=24m)", strconv.Itoa(kpi.StaleEngagementCount)},
		{"Invalid engagement dates", strconv.Itoa(kpi.InvalidDatesCount)},
		{"Anomalies", strconv.Itoa(kpi.AnomalyCount)},
		{"Low coverage", strconv.Itoa(kpi.LowCoverageCount)},
		{"Availability inconsistent", strconv.Itoa(kpi.AvailabilityInconsistentCount)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeBandTable shows the coverage bands side by side, then the age buckets.
func writeBandTable(w io.Writer, bands schema.BandSummary) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Band", "Since Entry", "Before Entry"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for i, b := range bands.SinceCoverage {
		before := 0
		if i < len(bands.BeforeCoverage) {
			before = bands.BeforeCoverage[i].Count
		}
		data = append(data, []string{b.Band, strconv.Itoa(b.Count), strconv.Itoa(before)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	ages := tablewriter.NewWriter(w)
	ages.Header([]string{"Ongoing Age", "Consultants"})
	ages.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data = data[:0]
	for _, b := range bands.OngoingAge {
		data = append(data, []string{b.Band, strconv.Itoa(b.Count)})
	}
	if err := ages.Bulk(data); err != nil {
		return err
	}
	return ages.Render()
}
