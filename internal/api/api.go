// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"github.com/JaimeStill/docsort/internal/config"
	"github.com/JaimeStill/docsort/internal/infrastructure"
	"github.com/JaimeStill/docsort/pkg/middleware"
	"github.com/JaimeStill/docsort/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware,
// and registers the domain systems with the lifecycle coordinator.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	if err := domain.Start(runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, domain.mux())
	m.Use(middleware.RequestID())
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.BodyLimit(cfg.API.MaxBodySizeBytes()))

	return m, nil
}
