package modules

import (
	"github.com/hydrosense/hydrosense/modules/labdata"
	"github.com/hydrosense/hydrosense/pkg/application"
)

var BuiltInModules = []application.Module{
	labdata.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
