package labdata

import (
	"embed"

	"github.com/hydrosense/hydrosense/modules/labdata/infrastructure/persistence"
	"github.com/hydrosense/hydrosense/modules/labdata/services"
	"github.com/hydrosense/hydrosense/pkg/application"
)

//go:embed infrastructure/persistence/schema/labdata-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	ingestService := services.NewIngestService(
		persistence.NewReportRepository(),
		app.EventPublisher(),
	)
	app.RegisterServices(
		ingestService,
		services.NewProcessorService(
			services.NewLabSheetProcessor(ingestService),
		),
	)
	return nil
}

func (m *Module) Name() string {
	return "labdata"
}
