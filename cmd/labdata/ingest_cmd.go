package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hydrosense/hydrosense/modules/labdata/domain/aggregates/report"
	"github.com/hydrosense/hydrosense/modules/labdata/domain/entities/documents"
	"github.com/hydrosense/hydrosense/modules/labdata/services"
)

type ingestOptions struct {
	tenantID          uuid.UUID
	file              string
	provider          string
	reportName        string
	classification    string
	subClassification string
	startDate         time.Time
	endDate           time.Time
}

func newIngestCmd() *cobra.Command {
	var opts ingestOptions
	var tenant, start, end string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest one laboratory spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, ctx, closeFn, err := setupApp(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			store := documents.NewLocalStore(filepath.Dir(opts.file))
			data, err := store.Get(ctx, filepath.Base(opts.file))
			if err != nil {
				return err
			}

			meta := report.UploadMeta{
				TenantID:          opts.tenantID,
				Filename:          filepath.Base(opts.file),
				Classification:    opts.classification,
				SubClassification: opts.subClassification,
				Provider:          opts.provider,
				ReportName:        opts.reportName,
				StartDate:         opts.startDate,
				EndDate:           opts.endDate,
			}

			processors := app.Service(services.ProcessorService{}).(*services.ProcessorService)
			result, err := processors.Process(ctx, meta, data)
			if err != nil {
				return err
			}

			fmt.Printf("parsed=%d deleted=%d inserted=%d\n", result.RowsParsed, result.Deleted, result.Inserted)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Path to the spreadsheet (required)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Laboratory name (required)")
	cmd.Flags().StringVar(&opts.reportName, "report-name", "", "Report name (required)")
	cmd.Flags().StringVar(&opts.classification, "classification", services.ClassificationLabData, "Document classification")
	cmd.Flags().StringVar(&opts.subClassification, "sub-classification", "", "Document sub-classification")
	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (required)")
	cmd.Flags().StringVar(&start, "start", "", "Study start date (yyyy-mm-dd)")
	cmd.Flags().StringVar(&end, "end", "", "Study end date (yyyy-mm-dd)")

	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("report-name")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(strings.TrimSpace(tenant))
		if err != nil {
			return fmt.Errorf("invalid --tenant: %w", err)
		}
		opts.tenantID = id

		if opts.startDate, err = parseDateFlag("start", start); err != nil {
			return err
		}
		if opts.endDate, err = parseDateFlag("end", end); err != nil {
			return err
		}
		return nil
	}

	return cmd
}

func parseDateFlag(name, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return t, nil
}
