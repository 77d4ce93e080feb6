package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"estudios/internal/identity"
	notifhandler "estudios/internal/notification/handler"
	"estudios/internal/platform/config"
	"estudios/internal/platform/httpserver"
	"estudios/internal/platform/logger"
	"estudios/internal/platform/metrics"
	"estudios/internal/platform/middleware"
	studyhandler "estudios/internal/study/handler"
	studymetrics "estudios/internal/study/metrics"
	"estudios/internal/study/service"
	"estudios/internal/study/store"
)

// main wires infrastructure, the study service and the HTTP router, then
// keeps the server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise infrastructure", "error", err)
		os.Exit(1)
	}
	defer infra.Close()

	// Workers outlive the signal context so Close can drain the queue.
	infra.Dispatcher.Start(context.WithoutCancel(ctx))

	studyService := service.New(infra.Stores, infra.Tx,
		service.WithLogger(log),
		service.WithMetrics(studymetrics.New()),
		service.WithAuditPublisher(infra.Audit),
		service.WithNotifier(infra.Dispatcher),
		service.WithFrontendURL(cfg.FrontendURL),
	)

	if cfg.SeedDemo {
		seed, err := store.SeedDemo(ctx, infra.Stores, time.Now())
		if err != nil {
			log.Error("failed to seed demo data", "error", err)
			infra.Close()
			os.Exit(1)
		}
		if seed != nil {
			log.Info("demo data seeded", "estudio_id", seed.EstudioID.String())
		}
	}

	httpMetrics := metrics.New()
	validator := identity.NewValidator(cfg.JWTSigningKey, cfg.JWTIssuer)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(log, httpMetrics))

	r.Get("/healthz", infra.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, log))
		studyhandler.New(studyService, log).Register(r)
		notifhandler.New(infra.Inbox, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting estudios", "addr", cfg.Addr, "store", infra.StoreKind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
