package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/hydrosense/hydrosense/modules/labdata/domain/aggregates/report"
	"github.com/hydrosense/hydrosense/modules/labdata/infrastructure/persistence/models"
	"github.com/hydrosense/hydrosense/pkg/composables"
	"github.com/hydrosense/hydrosense/pkg/configuration"
	"github.com/hydrosense/hydrosense/pkg/repo"
)

const (
	insertStudyPrefix = `INSERT INTO studies (id, tenant_id, provider, report_name, start_date, end_date) VALUES`
	// Mutable fields only; the identity columns never change under the same id.
	upsertStudySuffix = `ON CONFLICT (tenant_id, id) DO UPDATE SET
		provider = EXCLUDED.provider,
		report_name = EXCLUDED.report_name,
		start_date = EXCLUDED.start_date,
		end_date = EXCLUDED.end_date,
		updated_at = now()`

	insertDocumentPrefix = `INSERT INTO documents (id, tenant_id, study_id, filename, classification, sub_classification) VALUES`
	upsertDocumentSuffix = `ON CONFLICT (tenant_id, id) DO UPDATE SET
		filename = EXCLUDED.filename,
		classification = EXCLUDED.classification,
		sub_classification = EXCLUDED.sub_classification,
		updated_at = now()`

	insertStudyWellPrefix = `INSERT INTO study_wells (id, tenant_id, study_id, well_id) VALUES`
	upsertStudyWellSuffix = `ON CONFLICT (tenant_id, id) DO UPDATE SET
		well_id = EXCLUDED.well_id,
		updated_at = now()`

	insertSamplePrefix = `INSERT INTO samples (id, tenant_id, study_well_id, sample_code, sample_date, depth, matrix, lab_sample_id) VALUES`
	upsertSampleSuffix = `ON CONFLICT (tenant_id, id) DO UPDATE SET
		sample_code = EXCLUDED.sample_code,
		sample_date = EXCLUDED.sample_date,
		depth = EXCLUDED.depth,
		matrix = EXCLUDED.matrix,
		lab_sample_id = EXCLUDED.lab_sample_id,
		updated_at = now()`

	insertConcentrationPrefix = `INSERT INTO concentrations (id, tenant_id, sample_id, substance_id, substance_name, method, analysis_date, result, units, detection_limit, lab_id, source_document) VALUES`
	// Measurements are never updated in place. Replacement happens through
	// PurgeDocument followed by a fresh merge.
	insertConcentrationSuffix = `ON CONFLICT (tenant_id, id) DO NOTHING`
)

// The sweep order is mandatory. Each step after the first is a global orphan
// scan: a parent survives as long as any row anywhere still references it,
// including rows owned by other source documents.
var purgeSteps = []struct {
	kind  string
	query string
	byDoc bool
}{
	{
		kind:  "concentrations",
		query: `DELETE FROM concentrations WHERE tenant_id = $1 AND source_document = $2`,
		byDoc: true,
	},
	{
		kind: "samples",
		query: `DELETE FROM samples WHERE tenant_id = $1
			AND id NOT IN (SELECT sample_id FROM concentrations WHERE tenant_id = $1)`,
	},
	{
		kind: "study_wells",
		query: `DELETE FROM study_wells WHERE tenant_id = $1
			AND id NOT IN (SELECT study_well_id FROM samples WHERE tenant_id = $1)`,
	},
	{
		kind: "documents",
		query: `DELETE FROM documents WHERE tenant_id = $1
			AND study_id NOT IN (SELECT study_id FROM study_wells WHERE tenant_id = $1)`,
	},
	{
		kind: "studies",
		query: `DELETE FROM studies WHERE tenant_id = $1
			AND id NOT IN (SELECT study_id FROM documents WHERE tenant_id = $1)`,
	},
}

type PgReportRepository struct{}

func NewReportRepository() report.Repository {
	return &PgReportRepository{}
}

func (r *PgReportRepository) Merge(ctx context.Context, set *report.EntitySet) (*report.KindCounts, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	batchSize := configuration.Use().Ingestion.BatchSize

	counts := &report.KindCounts{}

	counts.Studies, err = batchUpsert(ctx, tx, insertStudyPrefix, upsertStudySuffix, studyRows(set.Studies, tenantID), batchSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge studies")
	}
	counts.Documents, err = batchUpsert(ctx, tx, insertDocumentPrefix, upsertDocumentSuffix, documentRows(set.Documents, tenantID), batchSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge documents")
	}
	counts.StudyWells, err = batchUpsert(ctx, tx, insertStudyWellPrefix, upsertStudyWellSuffix, studyWellRows(set.StudyWells, tenantID), batchSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge study wells")
	}
	counts.Samples, err = batchUpsert(ctx, tx, insertSamplePrefix, upsertSampleSuffix, sampleRows(set.Samples, tenantID), batchSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge samples")
	}
	counts.Concentrations, err = batchUpsert(ctx, tx, insertConcentrationPrefix, insertConcentrationSuffix, concentrationRows(set.Concentrations, tenantID), batchSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge concentrations")
	}
	return counts, nil
}

func (r *PgReportRepository) PurgeDocument(ctx context.Context, filename string) (*report.KindCounts, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	counts := &report.KindCounts{}
	for _, step := range purgeSteps {
		args := []interface{}{tenantID}
		if step.byDoc {
			args = append(args, filename)
		}
		tag, err := tx.Exec(ctx, step.query, args...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to purge "+step.kind)
		}
		switch step.kind {
		case "concentrations":
			counts.Concentrations = tag.RowsAffected()
		case "samples":
			counts.Samples = tag.RowsAffected()
		case "study_wells":
			counts.StudyWells = tag.RowsAffected()
		case "documents":
			counts.Documents = tag.RowsAffected()
		case "studies":
			counts.Studies = tag.RowsAffected()
		}
	}
	return counts, nil
}

func (r *PgReportRepository) Counts(ctx context.Context) (*report.KindCounts, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	counts := &report.KindCounts{}
	query := repo.Join(
		`SELECT`,
		`(SELECT COUNT(*) FROM studies WHERE tenant_id = $1),`,
		`(SELECT COUNT(*) FROM documents WHERE tenant_id = $1),`,
		`(SELECT COUNT(*) FROM study_wells WHERE tenant_id = $1),`,
		`(SELECT COUNT(*) FROM samples WHERE tenant_id = $1),`,
		`(SELECT COUNT(*) FROM concentrations WHERE tenant_id = $1)`,
	)
	if err := tx.QueryRow(ctx, query, tenantID).Scan(
		&counts.Studies,
		&counts.Documents,
		&counts.StudyWells,
		&counts.Samples,
		&counts.Concentrations,
	); err != nil {
		return nil, errors.Wrap(err, "failed to count rows")
	}
	return counts, nil
}

func (r *PgReportRepository) ConcentrationsByDocument(ctx context.Context, filename string) ([]report.Concentration, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, tenant_id, sample_id, substance_id, substance_name, method,
			analysis_date, result, units, detection_limit, lab_id, source_document
		FROM concentrations
		WHERE tenant_id = $1 AND source_document = $2
		ORDER BY sample_id, substance_id
	`, tenantID, filename)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []report.Concentration
	for rows.Next() {
		var row models.Concentration
		if err := rows.Scan(
			&row.ID, &row.TenantID, &row.SampleID, &row.SubstanceID, &row.SubstanceName, &row.Method,
			&row.AnalysisDate, &row.Result, &row.Units, &row.DetectionLimit, &row.LabID, &row.SourceDocument,
		); err != nil {
			return nil, err
		}
		entity, err := toDomainConcentration(&row)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *PgReportRepository) SamplesByWell(ctx context.Context, studyWellID string) ([]report.Sample, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, tenant_id, study_well_id, sample_code, sample_date, depth, matrix, lab_sample_id
		FROM samples
		WHERE tenant_id = $1 AND study_well_id = $2
		ORDER BY sample_date DESC NULLS LAST, sample_code
	`, tenantID, studyWellID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []report.Sample
	for rows.Next() {
		var row models.Sample
		if err := rows.Scan(
			&row.ID, &row.TenantID, &row.StudyWellID, &row.SampleCode,
			&row.SampleDate, &row.Depth, &row.Matrix, &row.LabSampleID,
		); err != nil {
			return nil, err
		}
		entity, err := toDomainSample(&row)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// batchUpsert writes rows in fixed-size chunks. Chunk boundaries carry no
// transactional meaning; the caller owns the enclosing transaction.
func batchUpsert(ctx context.Context, tx repo.Tx, prefix, suffix string, rows [][]interface{}, batchSize int) (int64, error) {
	var affected int64
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		query, args := repo.BatchInsertQueryN(prefix, rows[start:end])
		tag, err := tx.Exec(ctx, query+" "+suffix, args...)
		if err != nil {
			return affected, err
		}
		affected += tag.RowsAffected()
	}
	return affected, nil
}

func studyRows(entities []report.Study, tenantID uuid.UUID) [][]interface{} {
	rows := make([][]interface{}, 0, len(entities))
	for _, e := range entities {
		m := toDBStudy(e, tenantID)
		rows = append(rows, []interface{}{m.ID, m.TenantID, m.Provider, m.ReportName, m.StartDate, m.EndDate})
	}
	return rows
}

func documentRows(entities []report.Document, tenantID uuid.UUID) [][]interface{} {
	rows := make([][]interface{}, 0, len(entities))
	for _, e := range entities {
		m := toDBDocument(e, tenantID)
		rows = append(rows, []interface{}{m.ID, m.TenantID, m.StudyID, m.Filename, m.Classification, m.SubClassification})
	}
	return rows
}

func studyWellRows(entities []report.StudyWell, tenantID uuid.UUID) [][]interface{} {
	rows := make([][]interface{}, 0, len(entities))
	for _, e := range entities {
		m := toDBStudyWell(e, tenantID)
		rows = append(rows, []interface{}{m.ID, m.TenantID, m.StudyID, m.WellID})
	}
	return rows
}

func sampleRows(entities []report.Sample, tenantID uuid.UUID) [][]interface{} {
	rows := make([][]interface{}, 0, len(entities))
	for _, e := range entities {
		m := toDBSample(e, tenantID)
		rows = append(rows, []interface{}{m.ID, m.TenantID, m.StudyWellID, m.SampleCode, m.SampleDate, m.Depth, m.Matrix, m.LabSampleID})
	}
	return rows
}

func concentrationRows(entities []report.Concentration, tenantID uuid.UUID) [][]interface{} {
	rows := make([][]interface{}, 0, len(entities))
	for _, e := range entities {
		m := toDBConcentration(e, tenantID)
		rows = append(rows, []interface{}{
			m.ID, m.TenantID, m.SampleID, m.SubstanceID, m.SubstanceName, m.Method,
			m.AnalysisDate, m.Result, m.Units, m.DetectionLimit, m.LabID, m.SourceDocument,
		})
	}
	return rows
}
