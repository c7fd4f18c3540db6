// Command migrate manages migrations across tenant schemas. Every schema keeps
// its own alembic_version marker and is migrated independently.
//
//	migrate list-schemas
//	migrate current --all
//	migrate upgrade --schema qa
//	migrate upgrade 3de7e59774a2 --schema qa
//	migrate downgrade --revision -1 --all
//	migrate stamp head --all
//	migrate revision -m "add member notes"
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubhouse/backend/internal/infrastructure/config"
	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/clubhouse/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	app := &cli{
		out:     os.Stdout,
		logger:  zap.NewNop(),
		connect: connectDatabase,
	}
	defer app.close()

	root := app.rootCommand()
	root.SetContext(ctx)
	if err := root.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// connectDatabase opens the configured database through lib/pq and builds a
// runner over the embedded migrations.
func connectDatabase(ctx context.Context, c *cli) (migrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	level := c.logLevel
	if level == "" {
		level = cfg.Log.Level
	}
	log, err := logger.New(logger.CLI(level))
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	c.logger = log

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s: %w", cfg.Database.Redacted(), err)
	}
	c.closers = append(c.closers, db.Close)

	plan, err := migration.Embedded()
	if err != nil {
		return nil, err
	}
	log.Debug("Migration CLI connected",
		zap.String("database", cfg.Database.Redacted()),
		zap.String("head", plan.Head()),
	)
	return migration.NewRunner(db, plan, log, migration.WithOutput(c.out)), nil
}
