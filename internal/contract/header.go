package contract

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/huangsam/coverspot/schema"
)

// maxSourceWidth bounds the input file name shown in the header.
const maxSourceWidth = 48

// LogReportHeader prints a concise, 2-line header for each report.
func LogReportHeader(w io.Writer, cfg *Config, set *schema.RecordSet) {
	source := TruncatePath(filepath.Base(set.Source), maxSourceWidth)
	if set.Sheet != "" {
		source = fmt.Sprintf("%s [%s]", source, set.Sheet)
	}

	// Line 1: The input summary (file and metric)
	_, _ = fmt.Fprintf(w, "%sInput: %s (Metric: %s, Dimension: %s)\n",
		headerPrefix(cfg, "🔎 "), source, cfg.Filter.MetricType, cfg.Filter.SegmentDimension)

	// Line 2: The evaluation date and record count
	_, _ = fmt.Fprintf(w, "%sAs of: %s (%d records)\n",
		headerPrefix(cfg, "📅 "), cfg.AsOf.Format(DateFormat), len(set.Records))
}

func headerPrefix(cfg *Config, emoji string) string {
	if cfg.UseEmojis {
		return emoji
	}
	return ""
}
