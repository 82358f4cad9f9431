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

	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/marcelsud/attendance-relay/attendance"
	"github.com/marcelsud/attendance-relay/attendance/memory"
	"github.com/marcelsud/attendance-relay/config"
	"github.com/marcelsud/attendance-relay/internal/http/chi"
	"github.com/marcelsud/attendance-relay/metrics"
	"github.com/marcelsud/attendance-relay/routes"
)

/* main wires the packages together: config, store, forwarder, reaper and the HTTP API
 * Imports only go one direction: down. The application imports the business layer,
 * which imports the storage layer
 */

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	logger := httplog.NewLogger("attendance-relay", httplog.Options{
		JSON: !cfg.IsDev(),
	})

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	endpoints, err := loadRoutes(cfg)
	if err != nil {
		return err
	}

	repo := memory.NewRepository()

	exporter, err := metrics.NewOTelExporter(metrics.NewRepositoryCollector(repo))
	if err != nil {
		return fmt.Errorf("creating metrics exporter: %w", err)
	}
	defer exporter.Shutdown(context.Background())

	forwarder, err := attendance.NewForwarder(attendance.ForwarderOptions{
		Repo:      repo,
		Endpoints: endpoints,
		Client:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		Timeout:   cfg.WebhookTimeout,
		Logger:    logger,
		Recorder:  exporter,
	})
	if err != nil {
		return fmt.Errorf("creating forwarder: %w", err)
	}

	reaper, err := attendance.NewReaper(attendance.ReaperOptions{
		Repo:      repo,
		Interval:  cfg.ReaperInterval,
		Retention: cfg.JobRetention,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("creating reaper: %w", err)
	}

	svc := attendance.NewService(repo, forwarder, logger)
	r := chi.Handlers(ctx, svc, chi.Options{
		Logger:      logger,
		Dev:         cfg.IsDev(),
		RecentLimit: cfg.RecentActivityLimit,
		Metrics:     exporter.ServeHTTP(),
	})
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         cfg.Addr(),
		Handler:      r,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info().Str("port", cfg.Port).Bool("dev", cfg.IsDev()).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		return reaper.Run(gctx)
	})
	group.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, svc, cfg.ShutdownTimeout, logger)
	})

	return group.Wait()
}

func loadRoutes(cfg *config.Config) (*routes.Loader, error) {
	if cfg.RoutesFile != "" {
		loader := routes.NewLoader()
		if err := loader.Load(cfg.RoutesFile); err != nil {
			return nil, fmt.Errorf("loading routes: %w", err)
		}
		return loader, nil
	}
	loader, err := routes.FromURLs(cfg.LoginWebhookURL, cfg.LogoutWebhookURL, cfg.WebhookSigningKey)
	if err != nil {
		return nil, fmt.Errorf("configuring routes: %w", err)
	}
	return loader, nil
}

// shutdown stops accepting requests, then gives in-flight deliveries the same budget to finish
func shutdown(server *http.Server, svc *attendance.Service, timeout time.Duration, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down server")

	ctxTimeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctxTimeout); err != nil {
		return fmt.Errorf("forcing closing the server: %w", err)
	}
	if err := svc.Wait(ctxTimeout); err != nil {
		return fmt.Errorf("abandoning deliveries: %w", err)
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
