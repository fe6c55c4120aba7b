package report

import (
	"strconv"
	"strings"
	"time"
)

// Enrichment derives a well identifier, a sampling depth and a sample date
// from the raw sample-code string. The date heuristics are legacy field
// conventions and are preserved exactly, century pivot included; "fixing"
// them would silently reclassify historical sample dates.

const (
	tripBlankPrefix      = "TB-"
	equipmentBlankPrefix = "EB-"
)

// Enrich derives the well id, depth and sample date for every row.
// studyStart feeds the last-resort date fallback.
func Enrich(rows []Row, studyStart time.Time) []EnrichedRow {
	enriched := make([]EnrichedRow, 0, len(rows))
	for _, r := range rows {
		enriched = append(enriched, EnrichedRow{
			Row:        r,
			WellID:     WellIDFromCode(r.SampleCode),
			Depth:      DepthFromCode(r.SampleCode),
			SampleDate: SampleDateFromCode(r.SampleCode, studyStart),
		})
	}
	return enriched
}

// WellIDFromCode extracts the well identifier from a sample code. Trip and
// equipment blanks map to the literal well ids "TB"/"EB"; otherwise the
// second dash-delimited segment is the well id ("MW-01-1.5" -> "01"). A nil
// result means the code carried no recognizable well segment.
func WellIDFromCode(code string) *string {
	if strings.HasPrefix(code, tripBlankPrefix) {
		well := "TB"
		return &well
	}
	if strings.HasPrefix(code, equipmentBlankPrefix) {
		well := "EB"
		return &well
	}
	parts := strings.Split(code, "-")
	if len(parts) < 2 || parts[1] == "" {
		return nil
	}
	return &parts[1]
}

// DepthFromCode parses the third dash-delimited segment as a depth in feet;
// nil when absent or non-numeric.
func DepthFromCode(code string) *float64 {
	parts := strings.Split(code, "-")
	if len(parts) < 3 {
		return nil
	}
	depth, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return nil
	}
	return &depth
}

// SampleDateFromCode resolves the sample date from the code, trying each
// heuristic in order; the first match wins. When none applies, the study's
// start date truncated to the first day of its month is used.
func SampleDateFromCode(code string, studyStart time.Time) time.Time {
	if d, ok := blankCodeDate(code); ok {
		return d
	}
	if d, ok := eventCodeDate(code); ok {
		return d
	}
	if d, ok := generalCodeDate(code); ok {
		return d
	}
	return truncateToMonth(studyStart)
}

// blankCodeDate handles trip/equipment blank codes, which encode the full
// date as MMDDYY right after the prefix: "TB-031524" -> 2024-03-15.
func blankCodeDate(code string) (time.Time, bool) {
	if !strings.HasPrefix(code, tripBlankPrefix) && !strings.HasPrefix(code, equipmentBlankPrefix) {
		return time.Time{}, false
	}
	if len(code) < 9 {
		return time.Time{}, false
	}
	digits := code[3:9]
	month, okM := atoi2(digits[0:2])
	day, okD := atoi2(digits[2:4])
	year, okY := atoi2(digits[4:6])
	if !okM || !okD || !okY {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(expandYear(year), time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// eventCodeDate handles event codes of the form E<nn>...: month and year sit
// in the two character pairs before the end, "E01GW1224" -> 2024-12-01.
func eventCodeDate(code string) (time.Time, bool) {
	if len(code) < 9 {
		return time.Time{}, false
	}
	if code[0] != 'E' || !isDigit(code[1]) || !isDigit(code[2]) {
		return time.Time{}, false
	}
	month, okM := atoi2(code[5:7])
	year, okY := atoi2(code[7:9])
	if !okM || !okY || month < 1 || month > 12 {
		return time.Time{}, false
	}
	return time.Date(expandYear(year), time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}

// generalCodeDate is the positional fallback: month after the four-character
// site prefix, two-digit year in the trailing pair ("XXYY07-09" -> 2009-07).
func generalCodeDate(code string) (time.Time, bool) {
	if len(code) < 9 {
		return time.Time{}, false
	}
	month, okM := atoi2(code[4:6])
	year, okY := atoi2(code[7:9])
	if !okM || !okY || month < 1 || month > 12 {
		return time.Time{}, false
	}
	return time.Date(expandYear(year), time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}

// expandYear widens a two-digit year; values above 50 fall in the 1900s.
// The pivot is a legacy convention carried over verbatim.
func expandYear(yy int) int {
	if yy > 50 {
		return 1900 + yy
	}
	return 2000 + yy
}

func truncateToMonth(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func atoi2(s string) (int, bool) {
	if len(s) != 2 || !isDigit(s[0]) || !isDigit(s[1]) {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
