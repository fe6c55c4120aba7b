package persistence

import (
	"time"

	"github.com/google/uuid"

	"github.com/hydrosense/hydrosense/modules/labdata/domain/aggregates/report"
	"github.com/hydrosense/hydrosense/modules/labdata/infrastructure/persistence/models"
)

// Zero times persist as NULL so the content-addressed identifiers and the
// stored rows agree on what "no date" means.
func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func dateOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func toDBStudy(entity report.Study, tenantID uuid.UUID) models.Study {
	return models.Study{
		ID:         entity.ID,
		TenantID:   tenantID.String(),
		Provider:   entity.Provider,
		ReportName: entity.ReportName,
		StartDate:  nullableDate(entity.StartDate),
		EndDate:    nullableDate(entity.EndDate),
	}
}

func toDBDocument(entity report.Document, tenantID uuid.UUID) models.Document {
	return models.Document{
		ID:                entity.ID,
		TenantID:          tenantID.String(),
		StudyID:           entity.StudyID,
		Filename:          entity.Filename,
		Classification:    entity.Classification,
		SubClassification: entity.SubClassification,
	}
}

func toDBStudyWell(entity report.StudyWell, tenantID uuid.UUID) models.StudyWell {
	return models.StudyWell{
		ID:       entity.ID,
		TenantID: tenantID.String(),
		StudyID:  entity.StudyID,
		WellID:   entity.WellID,
	}
}

func toDBSample(entity report.Sample, tenantID uuid.UUID) models.Sample {
	return models.Sample{
		ID:          entity.ID,
		TenantID:    tenantID.String(),
		StudyWellID: entity.StudyWellID,
		SampleCode:  entity.SampleCode,
		SampleDate:  nullableDate(entity.SampleDate),
		Depth:       entity.Depth,
		Matrix:      entity.Matrix,
		LabSampleID: entity.LabSampleID,
	}
}

func toDBConcentration(entity report.Concentration, tenantID uuid.UUID) models.Concentration {
	return models.Concentration{
		ID:             entity.ID,
		TenantID:       tenantID.String(),
		SampleID:       entity.SampleID,
		SubstanceID:    entity.SubstanceID,
		SubstanceName:  entity.SubstanceName,
		Method:         entity.Method,
		AnalysisDate:   entity.AnalysisDate,
		Result:         entity.Result,
		Units:          entity.Units,
		DetectionLimit: entity.DetectionLimit,
		LabID:          entity.LabID,
		SourceDocument: entity.SourceDocument,
	}
}

func toDomainSample(row *models.Sample) (report.Sample, error) {
	tenantID, err := uuid.Parse(row.TenantID)
	if err != nil {
		return report.Sample{}, err
	}
	return report.Sample{
		ID:          row.ID,
		StudyWellID: row.StudyWellID,
		TenantID:    tenantID,
		SampleCode:  row.SampleCode,
		SampleDate:  dateOrZero(row.SampleDate),
		Depth:       row.Depth,
		Matrix:      row.Matrix,
		LabSampleID: row.LabSampleID,
	}, nil
}

func toDomainConcentration(row *models.Concentration) (report.Concentration, error) {
	tenantID, err := uuid.Parse(row.TenantID)
	if err != nil {
		return report.Concentration{}, err
	}
	return report.Concentration{
		ID:             row.ID,
		SampleID:       row.SampleID,
		TenantID:       tenantID,
		SubstanceID:    row.SubstanceID,
		SubstanceName:  row.SubstanceName,
		Method:         row.Method,
		AnalysisDate:   row.AnalysisDate,
		Result:         row.Result,
		Units:          row.Units,
		DetectionLimit: row.DetectionLimit,
		LabID:          row.LabID,
		SourceDocument: row.SourceDocument,
	}, nil
}
