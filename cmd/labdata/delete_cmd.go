package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hydrosense/hydrosense/modules/labdata/services"
)

func newDeleteCmd() *cobra.Command {
	var tenant, filename string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a document and sweep orphaned parents",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := uuid.Parse(strings.TrimSpace(tenant))
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}

			app, ctx, closeFn, err := setupApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			ingest := app.Service(services.IngestService{}).(*services.IngestService)
			counts, err := ingest.Delete(ctx, tenantID, filename)
			if err != nil {
				return err
			}

			fmt.Printf(
				"removed %d rows (studies=%d documents=%d wells=%d samples=%d concentrations=%d)\n",
				counts.Total(), counts.Studies, counts.Documents, counts.StudyWells, counts.Samples, counts.Concentrations,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (required)")
	cmd.Flags().StringVar(&filename, "file", "", "Document filename to delete (required)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newCountsCmd() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Show per-kind row counts for a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := uuid.Parse(strings.TrimSpace(tenant))
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}

			app, ctx, closeFn, err := setupApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			ingest := app.Service(services.IngestService{}).(*services.IngestService)
			counts, err := ingest.Counts(ctx, tenantID)
			if err != nil {
				return err
			}

			fmt.Printf(
				"studies=%d documents=%d wells=%d samples=%d concentrations=%d\n",
				counts.Studies, counts.Documents, counts.StudyWells, counts.Samples, counts.Concentrations,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (required)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}
