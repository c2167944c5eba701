package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/JaimeStill/docsort/internal/config"
	"github.com/JaimeStill/docsort/pkg/lifecycle"
)

type httpServer struct {
	http   *http.Server
	logger *slog.Logger
	drain  time.Duration
	addr   net.Addr
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) *httpServer {
	return &httpServer{
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeoutDuration(),
			WriteTimeout: cfg.WriteTimeoutDuration(),
			IdleTimeout:  cfg.IdleTimeoutDuration(),
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		logger: logger.With("system", "http"),
		drain:  cfg.DrainTimeoutDuration(),
	}
}

// Start binds the listen address before returning, so a port conflict
// fails startup instead of surfacing later in a log line.
func (s *httpServer) Start(lc *lifecycle.Coordinator) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	s.addr = ln.Addr()

	go func() {
		s.logger.Info("server listening", "addr", s.addr.String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.drain)
		defer cancel()

		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Warn("drain incomplete, closing connections", "error", err)
			s.http.Close()
			return
		}
		s.logger.Info("server stopped accepting requests")
	})

	return nil
}
