package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/ishtml5-service/internal/adapter/fetcher"
	"github.com/user/ishtml5-service/internal/delivery/http/handler"
	"github.com/user/ishtml5-service/internal/delivery/http/router"
	"github.com/user/ishtml5-service/internal/doctype"
	"github.com/user/ishtml5-service/internal/repository"
	"github.com/user/ishtml5-service/internal/usecase"
	"github.com/user/ishtml5-service/pkg/config"
	"github.com/user/ishtml5-service/pkg/logger"
	"github.com/user/ishtml5-service/pkg/metrics"
)

func main() {
	listHost := flag.String("list-host", "", "print cached verdicts for a host as JSON and exit")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// --- Cache ---
	ctx := context.Background()
	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal("could not open cache backend", zap.String("backend", cfg.CacheBackend), zap.Error(err))
	}
	defer func() {
		if err := backend.close(); err != nil {
			log.Error("failed to close cache backend", zap.Error(err))
		}
	}()

	if *listHost != "" {
		if err := printHost(ctx, os.Stdout, backend.repo, *listHost); err != nil {
			log.Error("could not list host", zap.String("host", *listHost), zap.Error(err))
		}
		return
	}

	// --- Metrics ---
	m := metrics.New(prometheus.DefaultRegisterer)

	// --- Use Cases ---
	collyFetcher := fetcher.NewCollyFetcher(cfg.UserAgent, cfg.FetchTimeout(), log)
	resolver := usecase.NewDoctypeResolver(backend.repo, collyFetcher, m, log,
		usecase.WithDetector(doctype.ForMode(doctype.Mode(cfg.DetectionMode))),
	)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(resolver, cfg.CacheBackend, backend.pinger(), log)
	httpRouter := router.New(apiHandler, m, prometheus.DefaultGatherer, log)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.FetchTimeout() + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	log.Info("server started",
		zap.String("port", cfg.ServerPort),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("detection_mode", cfg.DetectionMode),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		log.Error("could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		return
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}

// printHost writes every cached verdict for host to w as indented JSON.
func printHost(ctx context.Context, w io.Writer, repo repository.TestedURLRepository, host string) error {
	lister, ok := repo.(repository.HostLister)
	if !ok {
		return errors.New("cache backend cannot list entries by host")
	}
	entries, err := lister.ListByHost(ctx, host)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
