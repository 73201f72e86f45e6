package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"funnelscope/api/config"
	"funnelscope/api/database"
	"funnelscope/api/handlers"
	"funnelscope/api/middleware"
	"funnelscope/api/store"
	"funnelscope/api/utils"
)

var signalNotifyContext = signal.NotifyContext

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tracking and reporting HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalNotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := config.SetupLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}

	pg, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL database: %w", err)
	}
	defer pg.Close()

	ch, err := database.NewClickHouseDB(cfg.ClickHouse())
	if err != nil {
		return fmt.Errorf("failed to initialize ClickHouse database: %w", err)
	}
	defer ch.Close()

	schemaCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()
	if err := store.EnsurePostgresSchema(schemaCtx, pg.DB); err != nil {
		return err
	}
	analyticsStore := store.NewAnalyticsStore(ch.DB)
	if err := analyticsStore.EnsureSchema(schemaCtx); err != nil {
		return err
	}

	reports, err := handlers.NewReportHandlers(
		analyticsStore,
		store.NewDemographicsStore(pg.DB),
		store.NewCampaignStore(pg.DB),
		cfg.ReportCacheSize, cfg.QueryTimeout, cfg.DefaultWindow,
	)
	if err != nil {
		return err
	}
	analytics := handlers.NewAnalyticsHandlers(analyticsStore, cfg.QueryTimeout, cfg.DefaultWindow)
	analytics.OnInsert = reports.Purge

	router := handlers.NewRouter(handlers.Router{
		Auth:         handlers.NewAuthHandlers(store.NewUserStore(pg.DB), tokens, cfg.IsRelease()),
		Analytics:    analytics,
		Reports:      reports,
		AuthRequired: middleware.AuthRequired(tokens, cfg.AuthDefaultKey),
		CORSOrigin:   cfg.FrontendOrigin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("API server starting.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		log.Info("Server exiting.")
		return nil
	}
}
