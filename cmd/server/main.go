// Package main implements the entry point for the Lexis API server, which
// schedules vocabulary reviews and merges snapshots exported by other devices.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/phrazzld/lexis/internal/config"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/platform/postgres"

	// Session timezones resolve even on hosts without a zoneinfo database.
	_ "time/tzdata"
)

// options are the command-line flags of the server binary.
type options struct {
	// migrate runs one goose command and exits instead of serving.
	migrate string
	// migrateOnStart applies pending migrations before serving.
	migrateOnStart bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&opts.migrate, "migrate", "",
		"run a migration command and exit ("+strings.Join(postgres.MigrationCommands, "|")+")")
	fs.BoolVar(&opts.migrateOnStart, "migrate-on-start", false, "apply pending migrations before serving")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.migrate != "" && !slices.Contains(postgres.MigrationCommands, opts.migrate) {
		return options{}, fmt.Errorf("unknown migration command %q", opts.migrate)
	}
	return opts, nil
}

// run loads configuration, connects to the database and either executes a
// migration command or serves HTTP until ctx is canceled.
func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("timezone", cfg.Session.Timezone),
		slog.Bool("auth_enabled", cfg.Auth.Enabled()))

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if opts.migrate != "" {
		return postgres.Migrate(ctx, db, opts.migrate, log)
	}
	if opts.migrateOnStart {
		if err := postgres.Migrate(ctx, db, "up", log); err != nil {
			return err
		}
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
