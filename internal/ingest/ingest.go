// Package ingest loads consultant exports from workbooks and CSV files into record sets.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/huangsam/coverspot/schema"
)

// RawDataSheet is the fallback sheet checked after the active sheet.
const RawDataSheet = "Raw_data"

// recordSetNamespace scopes record set versions.
var recordSetNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/huangsam/coverspot/record-set"))

// Load reads a consultant export. Workbooks (.xlsx, .xlsm) and CSV files are supported.
// sheet selects a workbook sheet explicitly and is ignored for CSV input.
func Load(path, sheet string) (*schema.RecordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var set *schema.RecordSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		set, err = loadWorkbook(data, sheet)
	case ".csv":
		set, err = loadCSV(data)
	default:
		return nil, fmt.Errorf("unsupported input format '%s'. must be .xlsx, .xlsm or .csv", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	set.Source = path
	set.Version = RecordSetVersion(data)
	return set, nil
}

// RecordSetVersion derives a deterministic identifier from the raw input bytes.
func RecordSetVersion(data []byte) string {
	return uuid.NewSHA1(recordSetNamespace, data).String()
}

// rowCollector accumulates records and warnings across data rows.
type rowCollector struct {
	index    headerIndex
	records  []schema.ConsultantRecord
	warnings []string
}

// add parses one data row; rowNum is the 1-based row number in the source.
func (c *rowCollector) add(rowNum int, cells []string) {
	if isBlankRow(cells) {
		return
	}
	p := rowParser{index: c.index, cells: cells, rowNum: rowNum}
	c.records = append(c.records, p.record())
	c.warnings = append(c.warnings, p.warnings...)
}
