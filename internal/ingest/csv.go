package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/coverspot/schema"
)

// loadCSV reads a comma-separated export whose first line is the header.
func loadCSV(data []byte) (*schema.RecordSet, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MissingFieldError{Missing: append([]string(nil), RequiredHeaders...)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	index, missing := resolveHeaders(header)
	if len(missing) > 0 {
		return nil, &MissingFieldError{Missing: missing}
	}

	collector := &rowCollector{index: index}
	rowNum := 1
	for {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", rowNum, err)
		}
		collector.add(rowNum, cells)
	}
	return &schema.RecordSet{Records: collector.records, Warnings: collector.warnings}, nil
}
