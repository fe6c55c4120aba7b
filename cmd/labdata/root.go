package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/hydrosense/hydrosense/modules"
	"github.com/hydrosense/hydrosense/pkg/application"
	"github.com/hydrosense/hydrosense/pkg/composables"
	"github.com/hydrosense/hydrosense/pkg/configuration"
	"github.com/hydrosense/hydrosense/pkg/eventbus"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "labdata",
		Short:         "Laboratory data ingestion tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newCountsCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// setupApp connects, registers the built-in modules and applies their
// schemas. The returned context carries the pool for the service layer.
func setupApp(ctx context.Context) (application.Application, context.Context, func(), error) {
	conf := configuration.Use()
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(conf.Logger()),
		Logger:   conf.Logger(),
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	if err := app.Migrations().Run(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	return app, composables.WithPool(ctx, pool), pool.Close, nil
}
