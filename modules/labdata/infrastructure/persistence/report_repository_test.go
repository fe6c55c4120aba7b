package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosense/hydrosense/modules/labdata/domain/aggregates/report"
	"github.com/hydrosense/hydrosense/pkg/composables"
	"github.com/hydrosense/hydrosense/pkg/constants"
)

type execCall struct {
	sql  string
	args []any
}

type stubTx struct {
	execCalls    []execCall
	execAffected []int64
	execErr      error
	queryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if s.execErr != nil {
		return pgconn.CommandTag{}, s.execErr
	}
	s.execCalls = append(s.execCalls, execCall{sql: sql, args: args})
	var affected int64
	if len(s.execAffected) > 0 {
		affected = s.execAffected[0]
		s.execAffected = s.execAffected[1:]
	}
	return pgconn.NewCommandTag(fmt.Sprintf("INSERT 0 %d", affected)), nil
}

func (s *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if s.queryFunc == nil {
		return nil, errors.New("query not implemented")
	}
	return s.queryFunc(ctx, sql, args...)
}

func (s *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if s.queryRowFunc == nil {
		return stubRow{scan: func(dest ...any) error { return errors.New("query row not implemented") }}
	}
	return s.queryRowFunc(ctx, sql, args...)
}

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

func testCtx(tx *stubTx, tenantID uuid.UUID) context.Context {
	ctx := composables.WithTenantID(context.Background(), tenantID)
	return context.WithValue(ctx, constants.TxKey, tx)
}

func sampleSet(tenantID uuid.UUID) *report.EntitySet {
	meta := report.UploadMeta{
		TenantID:   tenantID,
		Filename:   "q1.xlsx",
		Provider:   "Acme Labs",
		ReportName: "Q1",
		StartDate:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
	rows := []report.Row{
		{SampleCode: "MW-01-1.5", SubstanceCode: "X", SubstanceName: "Benzene", Method: "EPA 8260"},
		{SampleCode: "MW-01-1.5", SubstanceCode: "Y", SubstanceName: "Toluene", Method: "EPA 8260"},
	}
	return report.Extract(meta, report.Enrich(rows, meta.StartDate))
}

func TestReportRepository_Merge_ParentToChildOrder(t *testing.T) {
	tenantID := uuid.New()
	tx := &stubTx{execAffected: []int64{1, 1, 1, 1, 2}}
	repo := NewReportRepository()

	counts, err := repo.Merge(testCtx(tx, tenantID), sampleSet(tenantID))
	require.NoError(t, err)
	require.Len(t, tx.execCalls, 5)

	assert.Contains(t, tx.execCalls[0].sql, "INSERT INTO studies")
	assert.Contains(t, tx.execCalls[1].sql, "INSERT INTO documents")
	assert.Contains(t, tx.execCalls[2].sql, "INSERT INTO study_wells")
	assert.Contains(t, tx.execCalls[3].sql, "INSERT INTO samples")
	assert.Contains(t, tx.execCalls[4].sql, "INSERT INTO concentrations")

	// Parent kinds converge via update; measurements never update in place.
	for i := 0; i < 4; i++ {
		assert.Contains(t, tx.execCalls[i].sql, "DO UPDATE")
	}
	assert.Contains(t, tx.execCalls[4].sql, "DO NOTHING")
	assert.NotContains(t, tx.execCalls[4].sql, "DO UPDATE")

	assert.Equal(t, int64(1), counts.Studies)
	assert.Equal(t, int64(1), counts.Documents)
	assert.Equal(t, int64(1), counts.StudyWells)
	assert.Equal(t, int64(1), counts.Samples)
	assert.Equal(t, int64(2), counts.Concentrations)
}

func TestReportRepository_Merge_TenantScopesEveryRow(t *testing.T) {
	tenantID := uuid.New()
	tx := &stubTx{execAffected: []int64{1, 1, 1, 1, 2}}
	repo := NewReportRepository()

	_, err := repo.Merge(testCtx(tx, tenantID), sampleSet(tenantID))
	require.NoError(t, err)

	for _, call := range tx.execCalls {
		assert.Contains(t, call.args, tenantID.String())
	}
}

func TestReportRepository_Merge_PropagatesError(t *testing.T) {
	tenantID := uuid.New()
	tx := &stubTx{execErr: errors.New("deadlock detected")}
	repo := NewReportRepository()

	_, err := repo.Merge(testCtx(tx, tenantID), sampleSet(tenantID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to merge studies")
}

func TestReportRepository_PurgeDocument_StepOrder(t *testing.T) {
	tenantID := uuid.New()
	tx := &stubTx{execAffected: []int64{2, 1, 1, 1, 1}}
	repo := NewReportRepository()

	counts, err := repo.PurgeDocument(testCtx(tx, tenantID), "q1.xlsx")
	require.NoError(t, err)
	require.Len(t, tx.execCalls, 5)

	assert.Contains(t, tx.execCalls[0].sql, "DELETE FROM concentrations")
	assert.Contains(t, tx.execCalls[0].sql, "source_document")
	assert.Contains(t, tx.execCalls[1].sql, "DELETE FROM samples")
	assert.Contains(t, tx.execCalls[2].sql, "DELETE FROM study_wells")
	assert.Contains(t, tx.execCalls[3].sql, "DELETE FROM documents")
	assert.Contains(t, tx.execCalls[4].sql, "DELETE FROM studies")

	// Only the first step is scoped to the document; the sweeps are global
	// orphan scans so parents shared with other documents survive.
	assert.Equal(t, []any{tenantID, "q1.xlsx"}, tx.execCalls[0].args)
	for i := 1; i < 5; i++ {
		assert.Equal(t, []any{tenantID}, tx.execCalls[i].args)
		assert.Contains(t, tx.execCalls[i].sql, "NOT IN")
	}

	assert.Equal(t, int64(2), counts.Concentrations)
	assert.Equal(t, int64(1), counts.Samples)
	assert.Equal(t, int64(1), counts.StudyWells)
	assert.Equal(t, int64(1), counts.Documents)
	assert.Equal(t, int64(1), counts.Studies)
	assert.Equal(t, int64(6), counts.Total())
}

func TestReportRepository_Counts(t *testing.T) {
	tenantID := uuid.New()
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Equal(t, []any{tenantID}, args)
			return stubRow{scan: func(dest ...any) error {
				require.Len(t, dest, 5)
				*dest[0].(*int64) = 1
				*dest[1].(*int64) = 2
				*dest[2].(*int64) = 3
				*dest[3].(*int64) = 4
				*dest[4].(*int64) = 5
				return nil
			}}
		},
	}
	repo := NewReportRepository()

	counts, err := repo.Counts(testCtx(tx, tenantID))
	require.NoError(t, err)
	assert.Equal(t, int64(15), counts.Total())
}

func TestReportRepository_NoTenantInContext(t *testing.T) {
	tx := &stubTx{}
	ctx := context.WithValue(context.Background(), constants.TxKey, tx)
	repo := NewReportRepository()

	_, err := repo.Merge(ctx, &report.EntitySet{})
	require.ErrorIs(t, err, composables.ErrNoTenantID)
	assert.Empty(t, tx.execCalls)
}

func TestBatchUpsertChunks(t *testing.T) {
	tx := &stubTx{execAffected: []int64{2, 2, 1}}
	rows := [][]interface{}{
		{"a", 1}, {"b", 2}, {"c", 3}, {"d", 4}, {"e", 5},
	}

	affected, err := batchUpsert(context.Background(), tx, "INSERT INTO t (k, v) VALUES", "ON CONFLICT DO NOTHING", rows, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), affected)
	require.Len(t, tx.execCalls, 3)

	assert.Contains(t, tx.execCalls[0].sql, "($1, $2), ($3, $4)")
	assert.Len(t, tx.execCalls[0].args, 4)
	assert.Len(t, tx.execCalls[2].args, 2)
}

func TestBatchUpsertEmptySet(t *testing.T) {
	tx := &stubTx{}

	affected, err := batchUpsert(context.Background(), tx, "INSERT INTO t (k) VALUES", "ON CONFLICT DO NOTHING", nil, 500)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.Empty(t, tx.execCalls)
}
