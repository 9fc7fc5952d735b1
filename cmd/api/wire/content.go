//go:build wireinject
// +build wireinject

package wire

import (
	"fieldpress-server/internal/content/httpapi"
	"fieldpress-server/internal/content/persistence"
	"fieldpress-server/internal/content/usecases"
	schemapersistence "fieldpress-server/internal/schema/persistence"
	schemausecases "fieldpress-server/internal/schema/usecases"

	"github.com/google/wire"
)

func InitializeEntryController() (*httpapi.EntryController, error) {
	wire.Build(
		provideAppConfig,
		provideDatabase,
		SchemaRegistrySet,
		persistence.NewEntryRepository,
		wire.Bind(new(usecases.EntryRepository), new(*persistence.SimpleEntryRepository)),
		usecases.NewEntryService,
		wire.Bind(new(usecases.EntryService), new(*usecases.SimpleEntryService)),
		httpapi.NewEntryController,
	)
	return nil, nil
}

var SchemaRegistrySet = wire.NewSet(
	schemapersistence.NewSchemaRepository,
	wire.Bind(new(schemausecases.SchemaRegistry), new(*schemapersistence.SimpleSchemaRepository)),
)
