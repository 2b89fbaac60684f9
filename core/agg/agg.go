// Package agg has the group-by logic for segment aggregation and filter catalogs.
package agg

import (
	"sort"
	"strings"

	"github.com/huangsam/coverspot/core/algo"
	"github.com/huangsam/coverspot/schema"
)

// Catalog returns the distinct non-empty values of a dimension, trimmed and sorted ascending.
func Catalog(records []schema.ConsultantRecord, dim schema.SegmentDimension) []string {
	seen := make(map[string]struct{})
	for i := range records {
		v := strings.TrimSpace(records[i].SegmentValue(dim))
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// TopSegments groups the included records by a dimension and returns at most
// limit segments ordered by low-coverage rate. Segments without included
// records are skipped, and equal rates keep catalog order.
// metrics must be aligned with records.
func TopSegments(records []schema.ConsultantRecord, metrics []schema.DerivedRecordMetrics, dim schema.SegmentDimension, limit int) []schema.SegmentAggregate {
	catalog := Catalog(records, dim)

	// 1. Count included and low-coverage records per segment value
	counts := make(map[string]*schema.SegmentAggregate, len(catalog))
	for _, m := range metrics {
		if !m.Included {
			continue
		}
		value := strings.TrimSpace(records[m.Index].SegmentValue(dim))
		if value == "" {
			continue
		}
		seg, ok := counts[value]
		if !ok {
			seg = &schema.SegmentAggregate{SegmentValue: value}
			counts[value] = seg
		}
		seg.Count++
		if m.LowCoverageFlag {
			seg.LowCount++
		}
	}

	// 2. Emit non-empty segments in catalog order
	segments := make([]schema.SegmentAggregate, 0, len(counts))
	for _, value := range catalog {
		seg, ok := counts[value]
		if !ok || seg.Count == 0 {
			continue
		}
		seg.LowRate = float64(seg.LowCount) / float64(seg.Count)
		segments = append(segments, *seg)
	}

	// 3. Rank by rate and truncate
	return algo.RankSegments(segments, limit)
}

// BuildFilterCatalog lists the selectable values of every filter.
// Each value list starts with All.
func BuildFilterCatalog(records []schema.ConsultantRecord) schema.FilterCatalog {
	catalog := schema.FilterCatalog{
		MetricTypes:       append([]schema.MetricType(nil), schema.AllMetricTypes...),
		SegmentDimensions: append([]schema.SegmentDimension(nil), schema.AllSegmentDimensions...),
		Values:            make(map[schema.SegmentDimension][]string, len(schema.AllSegmentDimensions)),
	}
	for _, dim := range schema.AllSegmentDimensions {
		catalog.Values[dim] = append([]string{schema.AllValue}, Catalog(records, dim)...)
	}
	catalog.Availability = append([]string{schema.AllValue}, availabilityValues(records)...)
	return catalog
}

func availabilityValues(records []schema.ConsultantRecord) []string {
	seen := make(map[string]struct{})
	for i := range records {
		if v := string(records[i].IsAvailable); v != "" {
			seen[v] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
