package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/schema"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// countPrinter groups thousands in summary lines.
var countPrinter = message.NewPrinter(language.English)

// noValue is shown in tables for undefined values.
const noValue = "-"

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return writeRows(csvWriter)
}

// createFormatters creates the number formatters shared by the text tables.
// fmtFloat renders scores and fmtPct renders ratios as percentages, "-" when undefined.
func createFormatters(precision int) (fmtFloat func(float64) string, fmtPct func(*float64) string) {
	fmtFloat = func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
	fmtPct = func(v *float64) string {
		if v == nil {
			return noValue
		}
		return fmt.Sprintf("%.*f%%", precision, *v*100)
	}
	return fmtFloat, fmtPct
}

// rawFloat keeps full precision for machine-readable output; undefined is empty.
func rawFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func rawInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatMonths(v *int) string {
	if v == nil {
		return noValue
	}
	return strconv.Itoa(*v) + "m"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(contract.DateFormat)
}

// formatReasons lists anomaly reasons for tables, "-" when there are none.
func formatReasons(reasons []schema.AnomalyReason) string {
	if len(reasons) == 0 {
		return noValue
	}
	return schema.JoinReasons(reasons)
}

// labelFor returns the severity label, colored when the config asks for it.
func labelFor(cfg *contract.Config, score float64) string {
	if cfg.UseColors {
		return contract.GetColorLabel(score)
	}
	return schema.GetPlainLabel(score)
}

// writeSummary prints the trailing lines shared by every text table.
func writeSummary(w io.Writer, cfg *contract.Config, duration time.Duration, format string, args ...any) error {
	if _, err := countPrinter.Fprintf(w, format+"\n", args...); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Evaluated in %v with %d workers. Cache backend: %s\n", duration.Round(time.Millisecond), cfg.Workers, backendName(cfg.CacheBackend))
	return err
}

func backendName(backend schema.DatabaseBackend) schema.DatabaseBackend {
	if backend == "" {
		return schema.NoneBackend
	}
	return backend
}
