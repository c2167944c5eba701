package main

import (
	"fmt"
	"time"

	"github.com/JaimeStill/docsort/internal/api"
	"github.com/JaimeStill/docsort/internal/config"
	"github.com/JaimeStill/docsort/internal/infrastructure"
	"github.com/JaimeStill/docsort/pkg/module"
)

// Server owns the infrastructure, the mounted router and the HTTP listener.
type Server struct {
	infra  *infrastructure.Infrastructure
	router *module.Router
	http   *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	router, err := newRouter(cfg, infra)
	if err != nil {
		return nil, err
	}

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"store", cfg.Store.Backend,
		"modules", router.Prefixes(),
	)

	return &Server{
		infra:  infra,
		router: router,
		http:   newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

func newRouter(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Router, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, fmt.Errorf("api module: %w", err)
	}

	router := module.NewRouter()
	router.Mount(apiModule)
	mountHealth(router, infra.Lifecycle, cfg.Version)
	return router, nil
}

func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
			s.infra.Logger.Error("startup failed", "error", err)
			return
		}
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
