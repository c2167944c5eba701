package api

import (
	"github.com/JaimeStill/docsort/internal/classifications"
	"github.com/JaimeStill/docsort/internal/config"
	"github.com/JaimeStill/docsort/internal/infrastructure"
	"github.com/JaimeStill/docsort/internal/store"
	"github.com/JaimeStill/docsort/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// assembled persistence backend.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Store      classifications.Store

	async *store.Async
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	rt := &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
	}
	rt.Store = rt.buildStore(&cfg.Store, cfg.Storage.Prefix)
	return rt
}

// buildStore layers the configured decorators over the primary backend:
// postgres or nothing, then the blob archive, then the async queue.
func (rt *Runtime) buildStore(cfg *config.StoreConfig, prefix string) classifications.Store {
	s := classifications.NopStore()

	if cfg.BackendKind() == store.Postgres && rt.Database != nil {
		s = store.NewPostgres(rt.Database.Connection())
	}
	if cfg.Archive {
		s = store.NewArchive(s, rt.Storage, prefix, rt.Logger)
	}
	if cfg.Async {
		rt.async = store.NewAsync(s, cfg.Buffer, rt.Logger)
		s = rt.async
	}
	return s
}

// Start registers the async store worker when one is configured.
func (rt *Runtime) Start() error {
	if rt.async == nil {
		return nil
	}
	return rt.async.Start(rt.Lifecycle)
}
