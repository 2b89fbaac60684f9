package ingest

// Column headers of the consultant export.
const (
	colExternal                 = "External"
	colMat                      = "Mat"
	colURL                      = "Url"
	colFullName                 = "Full name"
	colEmail                    = "Email"
	colEntryDate                = "Entry date"
	colWorkExperienceSince      = "Work experience since"
	colTotalEngagements         = "Total engagements"
	colInvalidDateEngagements   = "Engagements with invalid dates"
	colOngoingEngagements       = "Ongoing engagements"
	colOldestOngoingStart       = "Oldest ongoing engagement start date"
	colLastFinishedStart        = "Last finished engagement start date"
	colLastFinishedEnd          = "Last finished engagement end date"
	colProfilePhotoMissing      = "Is profile photo missing"
	colSinceBaseline            = "Months since entry baseline"
	colSinceAbsoluteMonths      = "Absolute months since entry"
	colSinceWeightedMonths      = "Weighted months since entry"
	colSinceAbsoluteMissing     = "Absolute missing months since entry"
	colSinceWeightedMissing     = "Weighted missing months since entry"
	colSinceAbsoluteRatio       = "Absolute coverage ratio since entry"
	colSinceWeightedRatio       = "Weighted coverage ratio since entry"
	colBeforeBaseline           = "Months before entry baseline"
	colBeforeAbsoluteMonths     = "Absolute months before entry"
	colBeforeWeightedMonths     = "Weighted months before entry"
	colBeforeAbsoluteMissing    = "Absolute missing months before entry"
	colBeforeWeightedMissing    = "Weighted missing months before entry"
	colBeforeAbsoluteRatio      = "Absolute coverage ratio before entry"
	colBeforeWeightedRatio      = "Weighted coverage ratio before entry"
	colEntryDateMissing         = "Is entry date missing"
	colWorkExperienceMissing    = "Is work experience since missing"
	colWorkExperienceAfterEntry = "Is work experience since after entry date"
	colIsAvailable              = "Is available"
	colAvailableFrom            = "Available from"
	colAvailableTo              = "Available to"
	colWillingToTravel          = "Is willing to travel"
	colAvailableDaysPerWeek     = "Available days per week"
	colAvailabilityComment      = "Availability comment"
	colDepartment               = "Department"
	colTeam                     = "Team"
	colUnit                     = "Unit"
	colLegalEntity              = "Legal entity"
	colLocation                 = "Location"
	colLead                     = "Lead"
)

// RequiredHeaders lists every column the export must provide, in export order.
var RequiredHeaders = []string{
	colExternal,
	colMat,
	colURL,
	colFullName,
	colEmail,
	colEntryDate,
	colWorkExperienceSince,
	colTotalEngagements,
	colInvalidDateEngagements,
	colOngoingEngagements,
	colOldestOngoingStart,
	colLastFinishedStart,
	colLastFinishedEnd,
	colProfilePhotoMissing,
	colSinceBaseline,
	colSinceAbsoluteMonths,
	colSinceWeightedMonths,
	colSinceAbsoluteMissing,
	colSinceWeightedMissing,
	colSinceAbsoluteRatio,
	colSinceWeightedRatio,
	colBeforeBaseline,
	colBeforeAbsoluteMonths,
	colBeforeWeightedMonths,
	colBeforeAbsoluteMissing,
	colBeforeWeightedMissing,
	colBeforeAbsoluteRatio,
	colBeforeWeightedRatio,
	colEntryDateMissing,
	colWorkExperienceMissing,
	colWorkExperienceAfterEntry,
	colIsAvailable,
	colAvailableFrom,
	colAvailableTo,
	colWillingToTravel,
	colAvailableDaysPerWeek,
	colAvailabilityComment,
	colDepartment,
	colTeam,
	colUnit,
	colLegalEntity,
	colLocation,
	colLead,
}

// headerIndex maps trimmed header names to column positions.
// The first occurrence of a duplicated header wins.
type headerIndex map[string]int

// resolveHeaders indexes a header row and lists the required headers it lacks.
func resolveHeaders(row []string) (headerIndex, []string) {
	idx := make(headerIndex, len(row))
	for i, h := range row {
		h = trimCell(h)
		if h == "" {
			continue
		}
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	var missing []string
	for _, h := range RequiredHeaders {
		if _, ok := idx[h]; !ok {
			missing = append(missing, h)
		}
	}
	return idx, missing
}
