package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"explorewithme/config"
	_ "explorewithme/docs"
	"explorewithme/internal/adapters/auth"
	"explorewithme/internal/adapters/email"
	"explorewithme/internal/adapters/stats"
	deliveryhttp "explorewithme/internal/delivery/http"
	"explorewithme/internal/delivery/http/controllers"
	"explorewithme/internal/domain"
	"explorewithme/internal/metrics"
	"explorewithme/internal/repository/postgres"
	"explorewithme/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	var migrateFirst bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrateFirst bool) error {
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, postgres.DBConfig{
		URL:          cfg.DBUrl,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to postgres")

	if migrateFirst {
		if err := postgres.Migrate(db.DB, "up"); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
		},
	}, logger)
	emailService := services.NewEmailService(mailer, renderer, logger)

	viewStats := newViewStats(cfg, logger)

	tx := postgres.NewTransactor(db)
	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	reactionRepo := postgres.NewReactionRepository(db)
	userRepo := postgres.NewUserRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)

	eventService := services.NewEventService(tx, eventRepo, userRepo, categoryRepo, viewStats, emailService, m, logger, cfg.ContextTimeout)
	admissionService := services.NewAdmissionService(tx, eventRepo, requestRepo, userRepo, emailService, m, logger, cfg.ContextTimeout)
	engagementService := services.NewEngagementService(tx, eventRepo, userRepo, reactionRepo, m, cfg.ContextTimeout)

	router := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		Logger:         logger,
		Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Events:         controllers.NewEventController(logger, eventService),
		Requests:       controllers.NewRequestController(logger, admissionService),
		Reactions:      controllers.NewReactionController(logger, engagementService),
		Admin:          controllers.NewAdminController(logger, eventService),
		Public:         controllers.NewPublicController(logger, eventService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func newViewStats(cfg *config.Config, logger *slog.Logger) domain.ViewStats {
	if cfg.Stats.ServiceURL == "" {
		logger.Warn("STATS_SERVICE_URL is empty, hits are not recorded")
		return stats.NewNoop()
	}
	return stats.NewClient(stats.Config{
		BaseURL:    cfg.Stats.ServiceURL,
		App:        cfg.Stats.AppName,
		CacheTTL:   cfg.Stats.CacheTTL,
		CacheBytes: cfg.Stats.CacheBytes,
		Timeout:    cfg.Stats.Timeout,
	}, &http.Client{Timeout: cfg.Stats.Timeout}, logger)
}
