package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joestump/journey-web/internal/auth"
	"github.com/joestump/journey-web/internal/config"
	"github.com/joestump/journey-web/internal/db"
	"github.com/joestump/journey-web/internal/handler"
	"github.com/joestump/journey-web/internal/health"
	"github.com/joestump/journey-web/internal/logging"
	"github.com/joestump/journey-web/internal/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			database, err := db.New(ctx, cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database.DB, cfg.DB.Driver); err != nil {
				return err
			}

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)
			flashes := auth.NewFlashes(sessionManager, logger.Named("flash"))

			checker := health.NewClient(cfg.Healthz.URL, nil, logger.Named("healthz"))
			guardCfg := view.DefaultGuardConfig()
			guardCfg.LandingPath = cfg.Guard.LandingPath
			guardCfg.RedirectPath = cfg.Guard.RedirectPath
			registry := view.NewRegistry(guardCfg, checker, view.RegistryOptions{
				IdleTTL:   cfg.Guard.IdleTTL,
				MaxGuards: cfg.Guard.MaxGuards,
			}, logger.Named("guard"))

			router := handler.NewRouter(handler.Deps{
				SessionManager:  sessionManager,
				Flashes:         flashes,
				Registry:        registry,
				Probes:          health.NewProbes(database.DB, prometheus.DefaultRegisterer),
				InsecureCookies: cfg.InsecureCookies,
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return registry.Run(gctx, cfg.Guard.SweepInterval)
			})
			g.Go(func() error {
				logger.Info("listening",
					zap.String("addr", cfg.HTTP.Addr),
					zap.String("healthz", checker.URL()))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}
