package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"sqlgateway/internal/catalog"
	"sqlgateway/internal/config"
	"sqlgateway/internal/dbexec"
	"sqlgateway/internal/engine"
	"sqlgateway/internal/logging"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
	Commit  = "none"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	pflag.Bool("version", false, "Print version and exit")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if showVersion, _ := pflag.CommandLine.GetBool("version"); showVersion {
		fmt.Printf("sqlgateway %s (%s)\n", Version, Commit)
		return nil
	}

	logger := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	slog.SetDefault(logger.Logger)

	kind, err := engine.KindFromString(cfg.Database.Engine)
	if err != nil {
		return err
	}
	eng, err := engine.ForKind(kind)
	if err != nil {
		return err
	}

	db, err := sql.Open(eng.DriverName(), cfg.Database.ConnectionString)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()
	db.SetMaxOpenConns(cfg.Database.Pool.MaxOpen)
	db.SetMaxIdleConns(cfg.Database.Pool.MaxIdle)
	db.SetConnMaxLifetime(cfg.Database.Pool.MaxLifetime)

	exec := dbexec.NewStandardExecutor(db)
	provider := catalog.NewProvider(func(ctx context.Context) (*catalog.Snapshot, error) {
		return catalog.NewBuilder(cfg, eng, exec, logger).Build(ctx)
	}, logger)

	initCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectionTimeout)
	defer cancel()
	if err := provider.Init(initCtx); err != nil {
		return fmt.Errorf("catalog initialization failed: %w", err)
	}

	for name, obj := range provider.Snapshot().GetEntityNamesAndDbObjects() {
		collection, _ := provider.Snapshot().CollectionName(name)
		logger.Info("entity ready",
			"entity", name,
			"collection", collection,
			"object", obj.ID.String(),
			"kind", string(obj.Kind),
		)
	}

	// SIGHUP rebuilds the catalog from scratch and swaps the published
	// snapshot; SIGINT/SIGTERM exit.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	for sig := range signals {
		if sig != syscall.SIGHUP {
			logger.Info("shutting down", "signal", sig.String())
			return nil
		}
		reloadCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectionTimeout)
		if err := provider.Reload(reloadCtx); err != nil {
			logger.Error("catalog reload failed; previous snapshot stays active",
				"error", err.Error())
		}
		cancel()
	}
	return nil
}
