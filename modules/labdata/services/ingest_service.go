package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/hydrosense/hydrosense/modules/labdata/domain/aggregates/report"
	"github.com/hydrosense/hydrosense/modules/labdata/infrastructure/spreadsheet"
	"github.com/hydrosense/hydrosense/pkg/composables"
	"github.com/hydrosense/hydrosense/pkg/eventbus"
	"github.com/hydrosense/hydrosense/pkg/metrics"
)

// IngestService coordinates one document's pipeline: parse, enrich, extract,
// then purge-and-merge inside a single transaction. A failed parse opens no
// transaction; a failure inside the transaction rolls everything back, so
// callers never observe a partial merge or a partial purge.
type IngestService struct {
	repo      report.Repository
	publisher eventbus.EventBus
}

func NewIngestService(repo report.Repository, publisher eventbus.EventBus) *IngestService {
	return &IngestService{
		repo:      repo,
		publisher: publisher,
	}
}

// Ingest processes one uploaded spreadsheet. Deleted and Inserted in the
// result count Concentration rows; parent kinds converge in place under
// their content-addressed identifiers.
func (s *IngestService) Ingest(ctx context.Context, meta report.UploadMeta, data []byte) (*report.IngestResult, error) {
	ctx = composables.WithTenantID(ctx, meta.TenantID)
	tenant := meta.TenantID.String()
	logger := composables.UseLogger(ctx).
		WithField("document", meta.Filename).
		WithField("tenant", tenant)

	rows, err := spreadsheet.Parse(data)
	if err != nil {
		metrics.IngestFailures.WithLabelValues(tenant, "parse").Inc()
		logger.WithError(err).Error("document rejected at parse")
		return &report.IngestResult{Errors: []string{err.Error()}}, err
	}

	enriched := report.Enrich(rows, meta.StartDate)
	set := report.Extract(meta, enriched)

	result := &report.IngestResult{RowsParsed: len(rows)}
	err = composables.InTenantTx(ctx, func(txCtx context.Context) error {
		purged, err := s.repo.PurgeDocument(txCtx, meta.Filename)
		if err != nil {
			return errors.Wrap(err, "purge phase for document "+meta.Filename)
		}
		merged, err := s.repo.Merge(txCtx, set)
		if err != nil {
			return errors.Wrap(err, "merge phase for document "+meta.Filename)
		}
		result.Deleted = purged.Concentrations
		result.Inserted = merged.Concentrations
		return nil
	})
	if err != nil {
		metrics.IngestFailures.WithLabelValues(tenant, "transaction").Inc()
		logger.WithError(err).Error("ingestion rolled back")
		return &report.IngestResult{
			RowsParsed: len(rows),
			Errors:     []string{err.Error()},
		}, err
	}

	metrics.RowsParsed.WithLabelValues(tenant).Add(float64(result.RowsParsed))
	metrics.RowsDeleted.WithLabelValues(tenant).Add(float64(result.Deleted))
	metrics.RowsInserted.WithLabelValues(tenant).Add(float64(result.Inserted))
	logger.WithField("parsed", result.RowsParsed).
		WithField("deleted", result.Deleted).
		WithField("inserted", result.Inserted).
		Info("document ingested")

	s.publisher.Publish(report.NewIngestedEvent(meta, result))
	return result, nil
}

// Delete removes a document without replacement: the document's measurements
// go first, then every parent left childless, in one transaction.
func (s *IngestService) Delete(ctx context.Context, tenantID uuid.UUID, filename string) (*report.KindCounts, error) {
	ctx = composables.WithTenantID(ctx, tenantID)
	tenant := tenantID.String()

	counts, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*report.KindCounts, error) {
		return s.repo.PurgeDocument(txCtx, filename)
	})
	if err != nil {
		metrics.IngestFailures.WithLabelValues(tenant, "delete").Inc()
		return nil, errors.Wrap(err, "delete for document "+filename)
	}

	metrics.RowsDeleted.WithLabelValues(tenant).Add(float64(counts.Concentrations))
	composables.UseLogger(ctx).
		WithField("document", filename).
		WithField("removed", counts.Total()).
		Info("document deleted")

	s.publisher.Publish(report.NewPurgedEvent(tenantID, filename, counts))
	return counts, nil
}

// Counts reports current per-kind row totals for the tenant.
func (s *IngestService) Counts(ctx context.Context, tenantID uuid.UUID) (*report.KindCounts, error) {
	ctx = composables.WithTenantID(ctx, tenantID)
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*report.KindCounts, error) {
		return s.repo.Counts(txCtx)
	})
}
