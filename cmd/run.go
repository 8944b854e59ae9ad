package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pabean-labs/bc20-explorer/internal/config"
	"github.com/pabean-labs/bc20-explorer/internal/handlers"
	"github.com/pabean-labs/bc20-explorer/internal/server"
	"github.com/pabean-labs/bc20-explorer/internal/services"
	"github.com/pabean-labs/bc20-explorer/internal/store"
	"github.com/pabean-labs/bc20-explorer/internal/store/migrations"
	"github.com/pabean-labs/bc20-explorer/pkg/scheduler"
)

func NewRunCommand(cfg *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the declaration search API",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateConfiguration(cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	registerFlags(cmd, cfg)
	return cmd
}

func registerFlags(cmd *cobra.Command, cfg *config.Configuration) {
	flags := cmd.Flags()

	flags.IntVar(&cfg.Server.HTTPPort, "server-http-port", cfg.Server.HTTPPort, "port the API listens on")
	flags.StringVar(&cfg.Server.ServerMode, "server-mode", cfg.Server.ServerMode, "server mode: dev or prod (TLS)")
	flags.StringVar(&cfg.Server.StaticsFolder, "server-statics-folder", cfg.Server.StaticsFolder, "folder with the UI served in prod mode")
	flags.StringVar(&cfg.Server.TLSCertFile, "server-tls-cert", cfg.Server.TLSCertFile, "TLS certificate file, self signed when empty")
	flags.StringVar(&cfg.Server.TLSKeyFile, "server-tls-key", cfg.Server.TLSKeyFile, "TLS private key file")
	flags.DurationVar(&cfg.Server.ShutdownTimeout, "server-shutdown-timeout", cfg.Server.ShutdownTimeout, "graceful shutdown timeout")

	flags.StringVar(&cfg.Database.Driver, "db-driver", cfg.Database.Driver, "database driver: duckdb or postgres")
	flags.StringVar(&cfg.Database.DSN, "db-dsn", cfg.Database.DSN, "duckdb file path or postgres connection string")

	flags.BoolVar(&cfg.Auth.Enabled, "authentication-enabled", cfg.Auth.Enabled, "require RS256 bearer tokens")
	flags.StringVar(&cfg.Auth.PublicKeyFile, "authentication-public-key", cfg.Auth.PublicKeyFile, "PEM file with the token signing public key")

	flags.IntVar(&cfg.Search.NumWorkers, "num-workers", cfg.Search.NumWorkers, "workers hydrating search pages")
	flags.IntVar(&cfg.Search.ExportLimit, "export-limit", cfg.Search.ExportLimit, "maximum rows per export")
	flags.BoolVar(&cfg.Search.StrictFilters, "strict-filters", cfg.Search.StrictFilters, "reject unknown filter fields and operators")
}

func validateConfiguration(cfg *config.Configuration) error {
	switch cfg.Server.ServerMode {
	case server.DevServer, server.ProductionServer:
	default:
		return fmt.Errorf("invalid server mode %q: must be %q or %q", cfg.Server.ServerMode, server.DevServer, server.ProductionServer)
	}

	if cfg.Server.HTTPPort < 1 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http-port %d", cfg.Server.HTTPPort)
	}

	if (cfg.Server.TLSCertFile == "") != (cfg.Server.TLSKeyFile == "") {
		return errors.New("server-tls-cert and server-tls-key must be set together")
	}

	if _, err := store.ParseDialect(cfg.Database.Driver); err != nil {
		return fmt.Errorf("invalid db-driver: %w", err)
	}
	if cfg.Database.DSN == "" {
		return errors.New("db-dsn cannot be empty")
	}

	if cfg.Auth.Enabled && cfg.Auth.PublicKeyFile == "" {
		return errors.New("authentication-public-key must be set when authentication is enabled")
	}

	if cfg.Search.NumWorkers < 1 {
		return fmt.Errorf("invalid num-workers %d", cfg.Search.NumWorkers)
	}
	if cfg.Search.ExportLimit < 1 {
		return fmt.Errorf("invalid export-limit %d", cfg.Search.ExportLimit)
	}

	return nil
}

func run(ctx context.Context, cfg *config.Configuration) error {
	logger := zap.S().Named("run")

	dialect, err := store.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}

	db, err := store.Open(dialect, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if dialect == store.Postgres {
		err = migrations.RunPostgres(db)
	} else {
		err = migrations.Run(ctx, db)
	}
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	st := store.NewStore(db, store.WithDialect(dialect))

	sched := scheduler.NewScheduler(cfg.Search.NumWorkers)
	defer sched.Close()

	declOpts := []services.DeclarationOption{
		services.WithScheduler(sched),
		services.WithExportLimit(cfg.Search.ExportLimit),
	}
	if cfg.Search.StrictFilters {
		declOpts = append(declOpts, services.WithStrictFilters())
	}

	h := handlers.New(
		services.NewDeclarationService(st, declOpts...),
		services.NewCompanyService(st),
		st,
	)

	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		handlers.RegisterHandlers(router, h)
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()
	logger.Infow("server started", "port", cfg.Server.HTTPPort, "mode", cfg.Server.ServerMode, "db", dialect)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	srv.Stop(shutdownCtx)

	return nil
}
