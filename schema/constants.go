package schema

// Custom string types for type safety.
type (
	// MetricType selects which coverage weighting drives the selected ratios.
	MetricType string

	// SegmentDimension names the organisational field used for grouping.
	SegmentDimension string

	// Availability is the tri-state availability of a consultant.
	Availability string

	// AnomalyReason names one triggering cause of an anomaly.
	AnomalyReason string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string
)

// AllValue is the filter selection that matches every record.
const AllValue = "All"

// All metric types supported.
const (
	WeightedMetric MetricType = "Weighted" // default
	AbsoluteMetric MetricType = "Absolute"
)

// All segment dimensions supported, in catalog order.
const (
	DepartmentDimension  SegmentDimension = "Department" // default
	TeamDimension        SegmentDimension = "Team"
	UnitDimension        SegmentDimension = "Unit"
	LegalEntityDimension SegmentDimension = "Legal entity"
	LocationDimension    SegmentDimension = "Location"
	LeadDimension        SegmentDimension = "Lead"
)

// Availability states. The zero value is unknown.
const (
	AvailableYes     Availability = "Yes"
	AvailableNo      Availability = "No"
	AvailableUnknown Availability = ""
)

// Anomaly reasons.
const (
	LowCoverageStale        AnomalyReason = "low-coverage-stale"
	LowCoverageInvalidDates AnomalyReason = "low-coverage-invalid-dates"
	TimelineInverted        AnomalyReason = "timeline-inverted"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Thresholds used by the derived metrics.
const (
	LowCoverageThreshold  = 0.5
	StaleEngagementMonths = 24
)

// AllMetricTypes lists the metric types in catalog order.
var AllMetricTypes = []MetricType{WeightedMetric, AbsoluteMetric}

// AllSegmentDimensions lists the segment dimensions in catalog order.
var AllSegmentDimensions = []SegmentDimension{
	DepartmentDimension,
	TeamDimension,
	UnitDimension,
	LegalEntityDimension,
	LocationDimension,
	LeadDimension,
}

// ValidMetricTypes lists all valid metric types.
var ValidMetricTypes = map[MetricType]struct{}{
	WeightedMetric: {},
	AbsoluteMetric: {},
}

// ValidSegmentDimensions lists all valid segment dimensions.
var ValidSegmentDimensions = map[SegmentDimension]struct{}{
	DepartmentDimension:  {},
	TeamDimension:        {},
	UnitDimension:        {},
	LegalEntityDimension: {},
	LocationDimension:    {},
	LeadDimension:        {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
