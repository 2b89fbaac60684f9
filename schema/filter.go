package schema

import (
	"fmt"
	"strings"
)

// FilterState holds the parameters of one analysis request.
// It is built per request and never mutated during an evaluation.
type FilterState struct {
	MetricType       MetricType       `json:"metric_type"`
	Department       string           `json:"department"`
	Team             string           `json:"team"`
	Unit             string           `json:"unit"`
	LegalEntity      string           `json:"legal_entity"`
	Location         string           `json:"location"`
	Lead             string           `json:"lead"`
	Availability     string           `json:"availability"`
	SegmentDimension SegmentDimension `json:"segment_dimension"`
}

// DefaultFilterState returns the dashboard defaults: weighted metric, no filters, grouped by department.
func DefaultFilterState() FilterState {
	return FilterState{
		MetricType:       WeightedMetric,
		Department:       AllValue,
		Team:             AllValue,
		Unit:             AllValue,
		LegalEntity:      AllValue,
		Location:         AllValue,
		Lead:             AllValue,
		Availability:     AllValue,
		SegmentDimension: DepartmentDimension,
	}
}

// Selection returns the selected filter value for a segment dimension.
func (fs FilterState) Selection(dim SegmentDimension) string {
	switch dim {
	case DepartmentDimension:
		return fs.Department
	case TeamDimension:
		return fs.Team
	case UnitDimension:
		return fs.Unit
	case LegalEntityDimension:
		return fs.LegalEntity
	case LocationDimension:
		return fs.Location
	case LeadDimension:
		return fs.Lead
	default:
		return AllValue
	}
}

// WithDimension returns a copy of the state grouped by another dimension.
func (fs FilterState) WithDimension(dim SegmentDimension) FilterState {
	fs.SegmentDimension = dim
	return fs
}

// Validate rejects unknown metric types and segment dimensions.
func (fs FilterState) Validate() error {
	if _, ok := ValidMetricTypes[fs.MetricType]; !ok {
		return fmt.Errorf("invalid metric type '%s'. must be %s", fs.MetricType, joinMetricTypes())
	}
	if _, ok := ValidSegmentDimensions[fs.SegmentDimension]; !ok {
		return fmt.Errorf("invalid segment dimension '%s'. must be one of %s", fs.SegmentDimension, joinSegmentDimensions())
	}
	return nil
}

// ParseMetricType resolves a metric type case-insensitively.
func ParseMetricType(s string) (MetricType, error) {
	for _, m := range AllMetricTypes {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid metric type '%s'. must be %s", s, joinMetricTypes())
}

// ParseSegmentDimension resolves a segment dimension case-insensitively.
// Underscores and hyphens are accepted in place of spaces (legal_entity, legal-entity).
func ParseSegmentDimension(s string) (SegmentDimension, error) {
	norm := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s))
	for _, d := range AllSegmentDimensions {
		if strings.EqualFold(string(d), norm) {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid segment dimension '%s'. must be one of %s", s, joinSegmentDimensions())
}

func joinMetricTypes() string {
	parts := make([]string, len(AllMetricTypes))
	for i, m := range AllMetricTypes {
		parts[i] = string(m)
	}
	return strings.Join(parts, ", ")
}

func joinSegmentDimensions() string {
	parts := make([]string, len(AllSegmentDimensions))
	for i, d := range AllSegmentDimensions {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}
