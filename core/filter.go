package core

import (
	"time"

	"github.com/huangsam/coverspot/schema"
)

// IsIncluded reports whether a record passes the filter state on the given day.
// Every segment filter and the availability filter must be All or an exact match,
// and a record with an entry date after today is held back.
func IsIncluded(rec *schema.ConsultantRecord, fs schema.FilterState, today time.Time) bool {
	for _, dim := range schema.AllSegmentDimensions {
		if !matchesSelection(fs.Selection(dim), rec.SegmentValue(dim)) {
			return false
		}
	}
	if !matchesSelection(fs.Availability, string(rec.IsAvailable)) {
		return false
	}
	if rec.EntryDate != nil && schema.DateOf(*rec.EntryDate).After(schema.DateOf(today)) {
		return false
	}
	return true
}

// matchesSelection compares case-sensitively, as stored.
func matchesSelection(selected, value string) bool {
	return selected == schema.AllValue || selected == value
}
