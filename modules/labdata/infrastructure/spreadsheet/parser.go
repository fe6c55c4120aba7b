package spreadsheet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/hydrosense/hydrosense/modules/labdata/domain/aggregates/report"
	"github.com/hydrosense/hydrosense/pkg/serrors"
)

// Column names as they must appear (case-insensitively) in the header row of
// an uploaded laboratory spreadsheet.
const (
	ColSiteID         = "site id"
	ColSubstanceName  = "substance name"
	ColSubstanceCode  = "substance code"
	ColLabID          = "lab id"
	ColSampleCode     = "sample code"
	ColMethod         = "analytical method"
	ColAnalysisDate   = "analysis date"
	ColResult         = "lab result"
	ColUnits          = "lab units"
	ColDetectionLimit = "lab detection limit"
	ColMatrix         = "lab matrix"
	ColLabSampleID    = "lab sample id"
)

// RequiredColumns is the contract with the laboratories: a sheet missing any
// of these is rejected before any row is read.
var RequiredColumns = []string{
	ColSiteID,
	ColSubstanceName,
	ColSubstanceCode,
	ColLabID,
	ColSampleCode,
	ColMethod,
	ColAnalysisDate,
	ColResult,
	ColUnits,
	ColDetectionLimit,
	ColMatrix,
	ColLabSampleID,
}

var ErrNoValidRows = serrors.NewError(
	"LABDATA_NO_VALID_ROWS",
	"no rows with a sample code survived filtering",
	"",
)

// MissingColumnsError lists the required columns absent from the header row,
// in contract order, for the upload UI to show verbatim.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Dates arrive as display strings from GetRows; labs are not consistent
// about formats.
var dateLayouts = []string{
	"2006-01-02",
	"01-02-06",
	"1/2/06",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// Parse reads the first sheet of an xlsx byte buffer into normalized rows.
// It fails closed: a missing required column or zero surviving rows rejects
// the whole file, so a malformed upload never partially ingests.
func Parse(data []byte) ([]report.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open spreadsheet")
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &MissingColumnsError{Columns: RequiredColumns}
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "failed to read sheet "+sheets[0])
	}
	if len(cells) == 0 {
		return nil, &MissingColumnsError{Columns: RequiredColumns}
	}

	index := headerIndex(cells[0])
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var rows []report.Row
	for _, line := range cells[1:] {
		cell := func(col string) string {
			i := index[col]
			if i >= len(line) {
				return ""
			}
			return strings.TrimSpace(line[i])
		}

		sampleCode := cell(ColSampleCode)
		if sampleCode == "" {
			continue
		}

		rows = append(rows, report.Row{
			SiteID:         cell(ColSiteID),
			SubstanceName:  cell(ColSubstanceName),
			SubstanceCode:  cell(ColSubstanceCode),
			LabID:          cell(ColLabID),
			SampleCode:     sampleCode,
			Method:         cell(ColMethod),
			AnalysisDate:   parseDate(cell(ColAnalysisDate)),
			Result:         parseFloat(cell(ColResult)),
			Units:          cell(ColUnits),
			DetectionLimit: parseFloat(cell(ColDetectionLimit)),
			Matrix:         cell(ColMatrix),
			LabSampleID:    cell(ColLabSampleID),
		})
	}

	if len(rows) == 0 {
		return nil, ErrNoValidRows
	}
	return rows, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		normalized := strings.Join(strings.Fields(strings.ToLower(name)), " ")
		if normalized == "" {
			continue
		}
		if _, ok := index[normalized]; !ok {
			index[normalized] = i
		}
	}
	return index
}

// parseFloat returns nil for blanks and non-numeric markers ("ND", "<0.5").
func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	return nil
}
