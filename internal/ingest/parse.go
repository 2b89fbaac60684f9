package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/huangsam/coverspot/internal/contract"
	"github.com/huangsam/coverspot/schema"
	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order for text dates.
var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02.01.2006",
	"2.1.2006",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
}

// trimCell removes surrounding whitespace and byte order marks.
func trimCell(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
}

// rowParser converts the cells of one data row into typed values.
// Malformed cells degrade to undefined values and are reported as warnings.
type rowParser struct {
	index    headerIndex
	cells    []string
	rowNum   int
	warnings []string
}

func (p *rowParser) warn(header, value, kind string) {
	p.warnings = append(p.warnings, fmt.Sprintf("row %d: %s %q is not a valid %s", p.rowNum, header, value, kind))
}

func (p *rowParser) text(header string) string {
	i, ok := p.index[header]
	if !ok || i >= len(p.cells) {
		return ""
	}
	return trimCell(p.cells[i])
}

func (p *rowParser) date(header string) *time.Time {
	v := p.text(header)
	if v == "" {
		return nil
	}
	if t, ok := parseDate(v); ok {
		return &t
	}
	p.warn(header, v, "date")
	return nil
}

func (p *rowParser) number(header string) *float64 {
	v := p.text(header)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.warn(header, v, "number")
		return nil
	}
	return &f
}

func (p *rowParser) ratio(header string) *float64 {
	v := p.text(header)
	if v == "" {
		return nil
	}
	if r, ok := parseRatio(v); ok {
		return &r
	}
	p.warn(header, v, "ratio")
	return nil
}

// count parses a non-negative counter; malformed values count as 0.
func (p *rowParser) count(header string) int {
	v := p.text(header)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		p.warn(header, v, "count")
		return 0
	}
	return int(f)
}

func (p *rowParser) flag(header string) *bool {
	v := p.text(header)
	if v == "" {
		return nil
	}
	b, err := contract.ParseBoolString(v)
	if err != nil {
		p.warn(header, v, "flag")
		return nil
	}
	return &b
}

func (p *rowParser) availability(header string) schema.Availability {
	v := p.text(header)
	if v == "" {
		return schema.AvailableUnknown
	}
	b, err := contract.ParseBoolString(v)
	if err != nil {
		p.warn(header, v, "availability")
		return schema.AvailableUnknown
	}
	if b {
		return schema.AvailableYes
	}
	return schema.AvailableNo
}

// record builds the consultant record for the current row.
func (p *rowParser) record() schema.ConsultantRecord {
	return schema.ConsultantRecord{
		External: p.text(colExternal),
		Mat:      p.text(colMat),
		URL:      p.text(colURL),
		FullName: p.text(colFullName),
		Email:    p.text(colEmail),

		EntryDate:           p.date(colEntryDate),
		WorkExperienceSince: p.date(colWorkExperienceSince),

		TotalEngagements:             p.count(colTotalEngagements),
		EngagementsWithInvalidDates:  p.count(colInvalidDateEngagements),
		OngoingEngagements:           p.count(colOngoingEngagements),
		OldestOngoingEngagementStart: p.date(colOldestOngoingStart),
		LastFinishedEngagementStart:  p.date(colLastFinishedStart),
		LastFinishedEngagementEnd:    p.date(colLastFinishedEnd),

		SinceEntry: schema.CoverageFigures{
			BaselineMonths:        p.number(colSinceBaseline),
			AbsoluteMonths:        p.number(colSinceAbsoluteMonths),
			WeightedMonths:        p.number(colSinceWeightedMonths),
			AbsoluteMissingMonths: p.number(colSinceAbsoluteMissing),
			WeightedMissingMonths: p.number(colSinceWeightedMissing),
			AbsoluteRatio:         p.ratio(colSinceAbsoluteRatio),
			WeightedRatio:         p.ratio(colSinceWeightedRatio),
		},
		BeforeEntry: schema.CoverageFigures{
			BaselineMonths:        p.number(colBeforeBaseline),
			AbsoluteMonths:        p.number(colBeforeAbsoluteMonths),
			WeightedMonths:        p.number(colBeforeWeightedMonths),
			AbsoluteMissingMonths: p.number(colBeforeAbsoluteMissing),
			WeightedMissingMonths: p.number(colBeforeWeightedMissing),
			AbsoluteRatio:         p.ratio(colBeforeAbsoluteRatio),
			WeightedRatio:         p.ratio(colBeforeWeightedRatio),
		},

		ProfilePhotoMissing:      p.flag(colProfilePhotoMissing),
		EntryDateMissing:         p.flag(colEntryDateMissing),
		WorkExperienceMissing:    p.flag(colWorkExperienceMissing),
		WorkExperienceAfterEntry: p.flag(colWorkExperienceAfterEntry),

		IsAvailable:          p.availability(colIsAvailable),
		AvailableFrom:        p.date(colAvailableFrom),
		AvailableTo:          p.date(colAvailableTo),
		WillingToTravel:      p.text(colWillingToTravel),
		AvailableDaysPerWeek: p.number(colAvailableDaysPerWeek),
		AvailabilityComment:  p.text(colAvailabilityComment),

		Department:  p.text(colDepartment),
		Team:        p.text(colTeam),
		Unit:        p.text(colUnit),
		LegalEntity: p.text(colLegalEntity),
		Location:    p.text(colLocation),
		Lead:        p.text(colLead),
	}
}

// parseDate accepts Excel serial numbers and common text layouts.
// The result is a calendar date in UTC.
func parseDate(v string) (time.Time, bool) {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		if f <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, false
		}
		return schema.DateOf(t), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return schema.DateOf(t), true
		}
	}
	return time.Time{}, false
}

// parseRatio accepts fractions like 0.45 and percentages like 45%.
func parseRatio(v string) (float64, bool) {
	pct := strings.HasSuffix(v, "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "%")), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if pct {
		f /= 100
	}
	return f, true
}

// isBlankRow reports whether every cell is empty after trimming.
func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if trimCell(c) != "" {
			return false
		}
	}
	return true
}
