package services_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosense/hydrosense/modules"
	"github.com/hydrosense/hydrosense/modules/labdata/infrastructure/persistence"
	"github.com/hydrosense/hydrosense/modules/labdata/services"
	"github.com/hydrosense/hydrosense/pkg/composables"
	"github.com/hydrosense/hydrosense/pkg/itf"
)

func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("LABDATA_INTEGRATION") == "" {
		t.Skip("set LABDATA_INTEGRATION=1 and point DB_* at a reachable Postgres")
	}
}

func TestIngestService_Lifecycle_Integration(t *testing.T) {
	skipUnlessIntegration(t)

	env := itf.NewTestContext().
		WithDBName(t, "labdata_lifecycle").
		WithModules(modules.BuiltInModules...).
		Build(t)
	svc := itf.GetService[services.IngestService](env)
	ctx := env.PoolCtx()
	meta := testMeta()
	meta.TenantID = env.TenantID()
	data := twoRowSheet(t)

	first, err := svc.Ingest(ctx, meta, data)
	env.AssertNoError(t, err)
	assert.Equal(t, 2, first.RowsParsed)
	assert.Equal(t, int64(0), first.Deleted)
	assert.Equal(t, int64(2), first.Inserted)

	counts, err := svc.Counts(ctx, env.TenantID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Studies)
	assert.Equal(t, int64(1), counts.Documents)
	assert.Equal(t, int64(1), counts.StudyWells)
	assert.Equal(t, int64(1), counts.Samples)
	assert.Equal(t, int64(2), counts.Concentrations)

	// Re-ingesting the unchanged file deletes and reinserts its measurements
	// while every parent converges onto the same identifiers.
	second, err := svc.Ingest(ctx, meta, data)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Deleted)
	assert.Equal(t, int64(2), second.Inserted)

	countsAfter, err := svc.Counts(ctx, env.TenantID())
	require.NoError(t, err)
	assert.Equal(t, counts, countsAfter)

	removed, err := svc.Delete(ctx, env.TenantID(), meta.Filename)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed.Concentrations)

	empty, err := svc.Counts(ctx, env.TenantID())
	require.NoError(t, err)
	assert.Zero(t, empty.Total())
}

func TestIngestService_SharedParentsSurvive_Integration(t *testing.T) {
	skipUnlessIntegration(t)

	env := itf.NewTestContext().WithModules(modules.BuiltInModules...).Build(t)
	svc := itf.GetService[services.IngestService](env)
	ctx := env.PoolCtx()

	// Two documents attributed to the same study: identical provider, report
	// name and date range, different filenames and samples.
	metaA := testMeta()
	metaA.TenantID = env.TenantID()
	metaA.Filename = "spring.xlsx"
	metaB := metaA
	metaB.Filename = "autumn.xlsx"

	dataA := labSheet(t,
		[]interface{}{"S-1", "Benzene", "X", "LAB-9", "MW-01-1.5", "EPA 8260", "2024-03-18", "0.42", "ug/L", "0.1", "water", "L-100"},
	)
	dataB := labSheet(t,
		[]interface{}{"S-1", "Benzene", "X", "LAB-9", "MW-02-3.0", "EPA 8260", "2024-09-02", "0.11", "ug/L", "0.1", "water", "L-200"},
	)

	_, err := svc.Ingest(ctx, metaA, dataA)
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, metaB, dataB)
	require.NoError(t, err)

	counts, err := svc.Counts(ctx, env.TenantID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Studies)
	assert.Equal(t, int64(2), counts.Documents)
	assert.Equal(t, int64(2), counts.StudyWells)

	removed, err := svc.Delete(ctx, env.TenantID(), metaA.Filename)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed.Concentrations)
	assert.Equal(t, int64(0), removed.Studies)

	remaining, err := svc.Counts(ctx, env.TenantID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining.Studies)
	assert.Equal(t, int64(1), remaining.Documents)
	assert.Equal(t, int64(1), remaining.StudyWells)
	assert.Equal(t, int64(1), remaining.Samples)
	assert.Equal(t, int64(1), remaining.Concentrations)
}

func TestIngestService_Atomicity_Integration(t *testing.T) {
	skipUnlessIntegration(t)

	env := itf.NewTestContext().WithModules(modules.BuiltInModules...).Build(t)
	svc := itf.GetService[services.IngestService](env)
	ctx := env.PoolCtx()
	meta := testMeta()
	meta.TenantID = env.TenantID()

	_, err := svc.Ingest(ctx, meta, twoRowSheet(t))
	require.NoError(t, err)

	before, err := svc.Counts(ctx, env.TenantID())
	require.NoError(t, err)

	// A failure after the purge but before the merge must roll the whole
	// transaction back, leaving the pre-transaction state intact.
	repo := persistence.NewReportRepository()
	err = composables.InTenantTx(ctx, func(txCtx context.Context) error {
		purged, err := repo.PurgeDocument(txCtx, meta.Filename)
		if err != nil {
			return err
		}
		require.Equal(t, int64(2), purged.Concentrations)
		return errors.New("injected failure")
	})
	require.Error(t, err)

	after, err := svc.Counts(ctx, env.TenantID())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestIngestService_ConcentrationsByDocument_Integration(t *testing.T) {
	skipUnlessIntegration(t)

	env := itf.NewTestContext().WithModules(modules.BuiltInModules...).Build(t)
	svc := itf.GetService[services.IngestService](env)
	ctx := env.PoolCtx()
	meta := testMeta()
	meta.TenantID = env.TenantID()

	_, err := svc.Ingest(ctx, meta, twoRowSheet(t))
	require.NoError(t, err)

	// Read back through the fixture's transaction; under read committed it
	// sees the rows the ingest committed on the pool.
	repo := persistence.NewReportRepository()
	txCtx := env.WithTx(composables.WithTenantID(context.Background(), env.TenantID()))
	rows, err := repo.ConcentrationsByDocument(txCtx, meta.Filename)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, meta.Filename, row.SourceDocument)
		assert.Equal(t, env.TenantID(), row.TenantID)
	}
}
