// Package database opens a pgx-backed database/sql pool and ties its
// readiness and shutdown to the lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/docsort/pkg/lifecycle"
)

// ErrNotReady is returned by Ping until the startup ping has succeeded.
var ErrNotReady = errors.New("database not ready")

// System is a managed connection pool.
type System interface {
	Connection() *sql.DB
	Start(lc *lifecycle.Coordinator) error
	Ready() bool
	Ping(ctx context.Context) error
}

type database struct {
	conn    *sql.DB
	logger  *slog.Logger
	timeout time.Duration
	ready   atomic.Bool
}

// New opens the pool without connecting. The first connection is made by
// the startup ping registered in Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configurePool(db, cfg)

	return &database{
		conn:    db,
		logger:  logger.With("system", "database", "host", cfg.Host, "name", cfg.Name),
		timeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func configurePool(db *sql.DB, cfg *Config) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())
	db.SetConnMaxIdleTime(cfg.ConnMaxLifetimeDuration() / 2)
}

func (d *database) Connection() *sql.DB { return d.conn }

func (d *database) Ready() bool { return d.ready.Load() }

func (d *database) Ping(ctx context.Context) error {
	if !d.Ready() {
		return ErrNotReady
	}
	return d.ping(ctx)
}

func (d *database) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.conn.PingContext(ctx)
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.Track(d)

	lc.OnStartup(func() error {
		start := time.Now()
		if err := d.ping(lc.Context()); err != nil {
			return fmt.Errorf("database ping: %w", err)
		}
		d.ready.Store(true)
		d.logger.Info("database ready", "elapsed", time.Since(start))
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.ready.Store(false)

		stats := d.conn.Stats()
		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database closed", "open_connections", stats.OpenConnections, "wait_count", stats.WaitCount)
	})

	return nil
}
