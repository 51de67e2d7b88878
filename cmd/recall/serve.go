package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recall/internal/domain"
	"github.com/kailas-cloud/recall/internal/domain/payload"
	"github.com/kailas-cloud/recall/internal/metrics"
	documentrepo "github.com/kailas-cloud/recall/internal/repository/document"
	searchrepo "github.com/kailas-cloud/recall/internal/repository/search"
	chiTransport "github.com/kailas-cloud/recall/internal/transport/chi"
	collectionuc "github.com/kailas-cloud/recall/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/recall/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/recall/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/recall/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/recall/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/recall/internal/usecase/search"
	taskuc "github.com/kailas-cloud/recall/internal/usecase/task"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := newApp(ctx, "api")
	if err != nil {
		return err
	}
	defer a.Close()
	cfg, logger := a.cfg, a.logger

	validator, err := payload.NewValidator(cfg.Validator.CacheSize,
		payload.WithCacheObserver(metrics.ObserveValidatorCache))
	if err != nil {
		return fmt.Errorf("create payload validator: %w", err)
	}

	resolver, err := a.newResolver()
	if err != nil {
		return err
	}

	docRepo := documentrepo.New(a.vectors)
	searchRepo := searchrepo.New(a.vectors)

	textModel, err := embeddinguc.Lookup(a.models.DefaultModel(domain.ModalityText))
	if err != nil {
		return fmt.Errorf("default text model: %w", err)
	}

	server := chiTransport.NewServer(
		collectionuc.New(a.colls, a.models),
		ingestuc.New(a.colls, validator, a.jobs),
		documentuc.New(docRepo, a.colls),
		searchuc.New(searchRepo, a.colls, a.models, resolver),
		taskuc.New(a.jobs),
		healthuc.New(a.redis, a.vectors, a.baseEmbedder(textModel)),
		logger,
	)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{APIKeys: cfg.Auth.APIKeys})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
