package ingest

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/huangsam/coverspot/schema"
	"github.com/xuri/excelize/v2"
)

// errHeaderRejected stops a sheet scan once its header row lacks required columns.
var errHeaderRejected = errors.New("header rejected")

// loadWorkbook reads the first candidate sheet whose header row has every required column.
func loadWorkbook(data []byte, sheet string) (*schema.RecordSet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	candidates, err := candidateSheets(f, sheet)
	if err != nil {
		return nil, err
	}

	var firstMissing *MissingFieldError
	for _, name := range candidates {
		collector, missing, err := scanSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		if len(missing) > 0 {
			if firstMissing == nil {
				firstMissing = &MissingFieldError{Sheet: name, Missing: missing}
			}
			continue
		}
		return &schema.RecordSet{
			Sheet:    name,
			Records:  collector.records,
			Warnings: collector.warnings,
		}, nil
	}
	return nil, firstMissing
}

// candidateSheets returns the explicit sheet, or the active sheet followed by Raw_data.
func candidateSheets(f *excelize.File, sheet string) ([]string, error) {
	if sheet != "" {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			return nil, fmt.Errorf("sheet %q not found", sheet)
		}
		return []string{sheet}, nil
	}
	candidates := []string{f.GetSheetName(f.GetActiveSheetIndex())}
	if idx, err := f.GetSheetIndex(RawDataSheet); err == nil && idx >= 0 && candidates[0] != RawDataSheet {
		candidates = append(candidates, RawDataSheet)
	}
	return candidates, nil
}

// scanSheet streams a sheet row by row. The first row is the header.
// Raw cell values are read so dates arrive as serial numbers regardless of display format.
func scanSheet(f *excelize.File, name string) (*rowCollector, []string, error) {
	rows, err := f.Rows(name)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	collector := &rowCollector{}
	var missing []string
	rowNum := 0
	for rows.Next() {
		rowNum++
		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, nil, err
		}
		if rowNum == 1 {
			collector.index, missing = resolveHeaders(cells)
			if len(missing) > 0 {
				return nil, missing, nil
			}
			continue
		}
		collector.add(rowNum, cells)
	}
	if err := rows.Error(); err != nil {
		return nil, nil, err
	}
	if rowNum == 0 {
		return nil, append([]string(nil), RequiredHeaders...), nil
	}
	return collector, nil, nil
}
