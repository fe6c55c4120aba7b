package report_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosense/hydrosense/modules/labdata/domain/aggregates/report"
)

func testMeta() report.UploadMeta {
	return report.UploadMeta{
		TenantID:          uuid.New(),
		Filename:          "q1-results.xlsx",
		Classification:    "lab-data",
		SubClassification: "groundwater",
		Provider:          "Acme Labs",
		ReportName:        "Q1 Groundwater",
		StartDate:         date(2024, time.February, 10),
		EndDate:           date(2024, time.April, 10),
	}
}

func enrichRows(rows []report.Row, start time.Time) []report.EnrichedRow {
	return report.Enrich(rows, start)
}

func TestExtractSharedHierarchy(t *testing.T) {
	meta := testMeta()
	rows := []report.Row{
		{SampleCode: "MW-01-1.5", SubstanceCode: "X", SubstanceName: "Benzene", Method: "EPA 8260"},
		{SampleCode: "MW-01-1.5", SubstanceCode: "Y", SubstanceName: "Toluene", Method: "EPA 8260"},
	}

	set := report.Extract(meta, enrichRows(rows, meta.StartDate))

	require.Len(t, set.Studies, 1)
	require.Len(t, set.Documents, 1)
	require.Len(t, set.StudyWells, 1)
	require.Len(t, set.Samples, 1)
	require.Len(t, set.Concentrations, 2)

	study := set.Studies[0]
	assert.Equal(t, report.StudyID(meta.Provider, meta.ReportName, meta.StartDate, meta.EndDate), study.ID)

	doc := set.Documents[0]
	assert.Equal(t, study.ID, doc.StudyID)
	assert.Equal(t, meta.Filename, doc.Filename)

	well := set.StudyWells[0]
	assert.Equal(t, study.ID, well.StudyID)
	require.NotNil(t, well.WellID)
	assert.Equal(t, "01", *well.WellID)

	sample := set.Samples[0]
	assert.Equal(t, well.ID, sample.StudyWellID)

	for _, c := range set.Concentrations {
		assert.Equal(t, sample.ID, c.SampleID)
		assert.Equal(t, meta.Filename, c.SourceDocument)
	}
	assert.NotEqual(t, set.Concentrations[0].ID, set.Concentrations[1].ID)
}

func TestExtractFiltersUnclassifiedConcentrations(t *testing.T) {
	meta := testMeta()
	rows := []report.Row{
		{SampleCode: "MW-01", SubstanceCode: "", SubstanceName: "unknown peak", Method: "EPA 8260"},
		{SampleCode: "MW-01", SubstanceCode: "X", SubstanceName: "Benzene", Method: "EPA 8260"},
	}

	set := report.Extract(meta, enrichRows(rows, meta.StartDate))

	// The unclassifiable row still contributes its sample, just no measurement.
	require.Len(t, set.Samples, 1)
	require.Len(t, set.Concentrations, 1)
	assert.Equal(t, "X", set.Concentrations[0].SubstanceID)
}

func TestExtractDeduplicatesByIdentity(t *testing.T) {
	meta := testMeta()
	row := report.Row{SampleCode: "MW-01-1.5", SubstanceCode: "X", Method: "EPA 8260"}
	rows := []report.Row{row, row, row}

	set := report.Extract(meta, enrichRows(rows, meta.StartDate))

	assert.Len(t, set.StudyWells, 1)
	assert.Len(t, set.Samples, 1)
	assert.Len(t, set.Concentrations, 1)
}

func TestExtractNilWellStillParentsSample(t *testing.T) {
	meta := testMeta()
	rows := []report.Row{
		{SampleCode: "NOWELL", SubstanceCode: "X", Method: "EPA 8260"},
	}

	set := report.Extract(meta, enrichRows(rows, meta.StartDate))

	require.Len(t, set.StudyWells, 1)
	assert.Nil(t, set.StudyWells[0].WellID)
	require.Len(t, set.Samples, 1)
	assert.Equal(t, set.StudyWells[0].ID, set.Samples[0].StudyWellID)
}

func TestExtractPreservesFirstSeenOrder(t *testing.T) {
	meta := testMeta()
	rows := []report.Row{
		{SampleCode: "MW-02", SubstanceCode: "X", Method: "EPA 8260"},
		{SampleCode: "MW-01", SubstanceCode: "X", Method: "EPA 8260"},
		{SampleCode: "MW-02", SubstanceCode: "Y", Method: "EPA 8260"},
	}

	set := report.Extract(meta, enrichRows(rows, meta.StartDate))

	require.Len(t, set.StudyWells, 2)
	require.NotNil(t, set.StudyWells[0].WellID)
	assert.Equal(t, "02", *set.StudyWells[0].WellID)
	assert.Equal(t, "01", *set.StudyWells[1].WellID)
}
