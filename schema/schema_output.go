package schema

import "strings"

// Severity labels for anomaly scores.
const (
	CriticalValue = "Critical"
	HighValue     = "High"
	ModerateValue = "Moderate"
	LowValue      = "Low"
)

// GetPlainLabel returns a plain text severity label for an anomaly score.
// The score is bounded by 100 (50 coverage points plus three flags).
func GetPlainLabel(score float64) string {
	switch {
	case score >= 60:
		return CriticalValue
	case score >= 40:
		return HighValue
	case score >= 20:
		return ModerateValue
	default:
		return LowValue
	}
}

// JoinReasons renders anomaly reasons as a single pipe-separated string.
func JoinReasons(reasons []AnomalyReason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, "|")
}

// TopRanked returns at most limit entries from the ranked list.
func TopRanked(list RankedList, limit int) RankedList {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
