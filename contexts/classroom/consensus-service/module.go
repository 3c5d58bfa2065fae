package consensusservice

import (
	"log/slog"

	httpadapter "classconsensus/contexts/classroom/consensus-service/adapters/http"
	"classconsensus/contexts/classroom/consensus-service/adapters/memory"
	"classconsensus/contexts/classroom/consensus-service/application/commands"
	"classconsensus/contexts/classroom/consensus-service/application/queries"
	"classconsensus/contexts/classroom/consensus-service/application/workers"
	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	"classconsensus/contexts/classroom/consensus-service/domain/services"
	"classconsensus/contexts/classroom/consensus-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Registry commands.RegistryUseCase
	Store    *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	TASecret   services.SecretDigest
	Categories entities.Categories
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	categories := deps.Categories
	if categories.Len() == 0 {
		categories = entities.NewCategories(entities.DefaultCategories)
	}
	registry := commands.RegistryUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		TASecret:   deps.TASecret,
		Logger:     deps.Logger,
	}
	return Module{
		Registry: registry,
		Handler: httpadapter.Handler{
			Registry: registry,
			Presentations: commands.PresentationUseCase{
				Repository: deps.Repository,
				Categories: categories,
				Clock:      deps.Clock,
				IDGen:      deps.IDGen,
				Logger:     deps.Logger,
			},
			Votes: commands.VoteUseCase{
				Repository: deps.Repository,
				Clock:      deps.Clock,
				Logger:     deps.Logger,
			},
			Finalizer: commands.FinalizeUseCase{
				Repository: deps.Repository,
				Clock:      deps.Clock,
				IDGen:      deps.IDGen,
				Logger:     deps.Logger,
			},
			Roles: queries.RoleLookupUseCase{
				Repository: deps.Repository,
			},
			Views: queries.PresentationQueryUseCase{
				Repository: deps.Repository,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(secret services.SecretDigest, categories entities.Categories, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Clock:      store,
		IDGen:      store,
		TASecret:   secret,
		Categories: categories,
		Logger:     logger,
	})
	module.Store = store
	return module
}

// NewOutboxRelay builds the relay that drains outbox rows written by this
// module's commands.
func NewOutboxRelay(outbox ports.OutboxRepository, publisher ports.EventPublisher, batchSize int, logger *slog.Logger) workers.OutboxRelay {
	return workers.OutboxRelay{
		Outbox:    outbox,
		Publisher: publisher,
		BatchSize: batchSize,
		Logger:    logger,
	}
}
