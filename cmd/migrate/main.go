// Command migrate applies the embedded schema migrations.
//
//	migrate [-dsn url] up|down|version
//	migrate [-dsn url] steps N
//	migrate [-dsn url] force V
//
// Without -dsn the connection comes from DOCSORT_DB_DSN, then from the
// [database] section of config.toml and DOCSORT_DB_* variables.
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/docsort/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "DOCSORT_DB_DSN"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(out)
	dsn := fs.String("dsn", "", "postgres:// connection URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd, arg, err := parseCommand(fs.Args())
	if err != nil {
		fs.Usage()
		return err
	}

	url, err := resolveDSN(*dsn)
	if err != nil {
		return err
	}

	src, err := newSource()
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer m.Close()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(arg)
	case "force":
		err = m.Force(arg)
	case "version":
		v, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Fprintln(out, "no migrations applied")
			return nil
		}
		if verr != nil {
			return verr
		}
		fmt.Fprintf(out, "version %d (dirty: %t)\n", v, dirty)
		return nil
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already current", "command", cmd)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}

	v, _, _ := m.Version()
	logger.Info("migration complete", "command", cmd, "version", v)
	return nil
}

// parseCommand validates the positional arguments. steps and force take an
// integer operand.
func parseCommand(args []string) (string, int, error) {
	if len(args) == 0 {
		return "", 0, errors.New("missing command")
	}

	switch cmd := args[0]; cmd {
	case "up", "down", "version":
		if len(args) != 1 {
			return "", 0, fmt.Errorf("%s takes no arguments", cmd)
		}
		return cmd, 0, nil
	case "steps", "force":
		if len(args) != 2 {
			return "", 0, fmt.Errorf("%s requires one integer argument", cmd)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "", 0, fmt.Errorf("%s: %w", cmd, err)
		}
		if cmd == "steps" && n == 0 {
			return "", 0, errors.New("steps must be non-zero")
		}
		return cmd, n, nil
	default:
		return "", 0, fmt.Errorf("unknown command %q", cmd)
	}
}

func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.Database.URL(), nil
}

func newSource() (source.Driver, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}
	return src, nil
}
