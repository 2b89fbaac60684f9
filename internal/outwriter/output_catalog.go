package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/schema"
)

// availabilityFilter names the availability list in flat catalog output.
const availabilityFilter = "Is available"

// WriteCatalogResults outputs the selectable filter values, dispatching based on the output format configured.
func WriteCatalogResults(catalog schema.FilterCatalog, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, catalog)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCatalogCSV(w, catalog)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for the catalog")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCatalogText(w, catalog)
		}, "Wrote catalog")
	}
	return nil
}

// catalogEntry is one filter with its selectable values.
type catalogEntry struct {
	filter string
	values []string
}

// catalogEntries flattens the catalog in display order.
func catalogEntries(catalog schema.FilterCatalog) []catalogEntry {
	metrics := make([]string, len(catalog.MetricTypes))
	for i, m := range catalog.MetricTypes {
		metrics[i] = string(m)
	}
	dims := make([]string, len(catalog.SegmentDimensions))
	for i, d := range catalog.SegmentDimensions {
		dims[i] = string(d)
	}

	entries := []catalogEntry{{"Metric", metrics}, {"Dimension", dims}}
	for _, dim := range schema.AllSegmentDimensions {
		entries = append(entries, catalogEntry{string(dim), catalog.Values[dim]})
	}
	return append(entries, catalogEntry{availabilityFilter, catalog.Availability})
}

func writeCatalogText(w io.Writer, catalog schema.FilterCatalog) error {
	for _, e := range catalogEntries(catalog) {
		if _, err := fmt.Fprintf(w, "%-14s %s\n", e.filter+":", strings.Join(e.values, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func writeCatalogCSV(w io.Writer, catalog schema.FilterCatalog) error {
	return writeCSVWithHeader(w, []string{"filter", "value"}, func(cw *csv.Writer) error {
		for _, e := range catalogEntries(catalog) {
			for _, v := range e.values {
				if err := cw.Write([]string{e.filter, v}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
