package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AR-Project/wpt-v3/internal/asset"
	"github.com/AR-Project/wpt-v3/internal/bootstrap"
	"github.com/AR-Project/wpt-v3/internal/handler"
	"github.com/AR-Project/wpt-v3/internal/identity"
	"github.com/AR-Project/wpt-v3/internal/middleware"
	"github.com/AR-Project/wpt-v3/internal/principal"
	"github.com/AR-Project/wpt-v3/internal/service"
	"github.com/AR-Project/wpt-v3/internal/txn"
	"github.com/AR-Project/wpt-v3/pkg/blob"
	"github.com/AR-Project/wpt-v3/pkg/config"
	"github.com/AR-Project/wpt-v3/pkg/database"
	"github.com/AR-Project/wpt-v3/pkg/jwtutil"
	"github.com/AR-Project/wpt-v3/pkg/logger"
	"github.com/AR-Project/wpt-v3/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "inventory-service",
		Short:         "Multi-tenant inventory and purchasing back office",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCommand(), migrateCommand(), reconcileCommand())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration, the logger and the database shared by every command
func setup(migrate bool) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", cfg.LogConfig()...)

	db, err := database.Open(&cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	log.Info("Database connection established")

	if migrate {
		if err := database.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("Database schema migrated")
	}
	return cfg, db, nil
}

func serveCommand() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, !skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run schema migration on start")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	cfg, db, err := setup(migrate)
	if err != nil {
		return err
	}
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()

	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	store, err := blob.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	log.Info("Blob store ready", zap.String("driver", string(store.Driver())))

	tx := txn.NewManager(db, cfg.Tx)
	jwt := jwtutil.NewJWTUtil(&cfg.JWT)

	ids := identity.NewService(tx, jwt)
	ids.AfterCreate(bootstrap.Hook)
	resolver := principal.NewResolver(db, jwt)
	h := handler.New(ids, service.New(tx), asset.NewService(tx, store, cfg.Storage.MaxUploadBytes))

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dB", cfg.Storage.MaxUploadBytes+64*1024)))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.AccessLog())
	e.Use(middleware.MetricsMiddleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	h.Register(e, middleware.AuthMiddleware(resolver))

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, _, err := setup(true)
			return err
		},
	}
}

func reconcileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile-images",
		Short: "List image rows whose stored file is missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := setup(false)
			if err != nil {
				return err
			}
			store, err := blob.Open(cmd.Context(), cfg.Storage)
			if err != nil {
				return fmt.Errorf("open blob store: %w", err)
			}

			assets := asset.NewService(txn.NewManager(db, cfg.Tx), store, cfg.Storage.MaxUploadBytes)
			missing, err := assets.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			for _, img := range missing {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", img.ID, img.OwnerID, img.Key)
			}
			logger.GetLogger().Info("Image reconciliation finished", zap.Int("missing", len(missing)))
			return nil
		},
	}
}
