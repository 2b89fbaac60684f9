package schema

import "time"

// CoverageFigures holds the upstream coverage computation for one time window.
// Every field is optional; a nil pointer means the source cell was empty.
type CoverageFigures struct {
	BaselineMonths        *float64 `json:"baseline_months,omitempty"`
	AbsoluteMonths        *float64 `json:"absolute_months,omitempty"`
	WeightedMonths        *float64 `json:"weighted_months,omitempty"`
	AbsoluteMissingMonths *float64 `json:"absolute_missing_months,omitempty"`
	WeightedMissingMonths *float64 `json:"weighted_missing_months,omitempty"`
	AbsoluteRatio         *float64 `json:"absolute_ratio,omitempty"`
	WeightedRatio         *float64 `json:"weighted_ratio,omitempty"`
}

// Ratio returns the coverage ratio for the given metric type.
func (c CoverageFigures) Ratio(metric MetricType) *float64 {
	if metric == AbsoluteMetric {
		return c.AbsoluteRatio
	}
	return c.WeightedRatio
}

// ConsultantRecord is one row of the consultant export.
// Records are read-only once loaded.
type ConsultantRecord struct {
	External string `json:"external,omitempty"`
	Mat      string `json:"mat,omitempty"`
	URL      string `json:"url"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`

	EntryDate           *time.Time `json:"entry_date,omitempty"`
	WorkExperienceSince *time.Time `json:"work_experience_since,omitempty"`

	TotalEngagements             int        `json:"total_engagements"`
	EngagementsWithInvalidDates  int        `json:"engagements_with_invalid_dates"`
	OngoingEngagements           int        `json:"ongoing_engagements"`
	OldestOngoingEngagementStart *time.Time `json:"oldest_ongoing_engagement_start,omitempty"`
	LastFinishedEngagementStart  *time.Time `json:"last_finished_engagement_start,omitempty"`
	LastFinishedEngagementEnd    *time.Time `json:"last_finished_engagement_end,omitempty"`

	SinceEntry  CoverageFigures `json:"since_entry"`
	BeforeEntry CoverageFigures `json:"before_entry"`

	// Upstream quality flags, carried through for display.
	ProfilePhotoMissing      *bool `json:"profile_photo_missing,omitempty"`
	EntryDateMissing         *bool `json:"entry_date_missing,omitempty"`
	WorkExperienceMissing    *bool `json:"work_experience_missing,omitempty"`
	WorkExperienceAfterEntry *bool `json:"work_experience_after_entry,omitempty"`

	IsAvailable          Availability `json:"is_available"`
	AvailableFrom        *time.Time   `json:"available_from,omitempty"`
	AvailableTo          *time.Time   `json:"available_to,omitempty"`
	WillingToTravel      string       `json:"willing_to_travel,omitempty"`
	AvailableDaysPerWeek *float64     `json:"available_days_per_week,omitempty"`
	AvailabilityComment  string       `json:"availability_comment,omitempty"`

	Department  string `json:"department"`
	Team        string `json:"team"`
	Unit        string `json:"unit"`
	LegalEntity string `json:"legal_entity"`
	Location    string `json:"location"`
	Lead        string `json:"lead"`
}

// SegmentValue returns the record's value for the given segment dimension.
func (r *ConsultantRecord) SegmentValue(dim SegmentDimension) string {
	switch dim {
	case DepartmentDimension:
		return r.Department
	case TeamDimension:
		return r.Team
	case UnitDimension:
		return r.Unit
	case LegalEntityDimension:
		return r.LegalEntity
	case LocationDimension:
		return r.Location
	case LeadDimension:
		return r.Lead
	default:
		return ""
	}
}

// RecordSet is a loaded, immutable collection of consultant records.
type RecordSet struct {
	// Version is a deterministic identifier of the source content.
	Version  string             `json:"version"`
	Source   string             `json:"source"`
	Sheet    string             `json:"sheet,omitempty"`
	Records  []ConsultantRecord `json:"records"`
	Warnings []string           `json:"warnings,omitempty"`
}
