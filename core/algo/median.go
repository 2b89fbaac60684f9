package algo

import "sort"

// Median returns the median of the defined values, or nil when there are none.
// Nil entries are skipped rather than treated as zero.
func Median(values []*float64) *float64 {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			defined = append(defined, *v)
		}
	}
	if len(defined) == 0 {
		return nil
	}
	sort.Float64s(defined)
	mid := len(defined) / 2
	m := defined[mid]
	if len(defined)%2 == 0 {
		m = (defined[mid-1] + defined[mid]) / 2
	}
	return &m
}
