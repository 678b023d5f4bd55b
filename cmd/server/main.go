package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/eduverify/api"
	"github.com/garnizeh/eduverify/internal/config"
	"github.com/garnizeh/eduverify/internal/skills"
	"github.com/garnizeh/eduverify/internal/store"
	"github.com/garnizeh/eduverify/pkg/ollama"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	api.SetLogger(logger)
	ollama.SetLogger(logger)
	skills.SetLogger(logger)

	logger.Info("starting eduverify",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("env", cfg.Env),
		slog.String("store", cfg.Store.Backend),
		slog.String("skills_provider", cfg.Skills.Provider),
	)

	ctx := context.Background()

	h, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", slog.Any("err", err))
		os.Exit(1)
	}

	extractor, closeExtractor, err := skills.New(ctx, cfg.Skills, h.Prompts)
	if err != nil {
		logger.Error("failed to build skill extractor", slog.Any("err", err))
		h.Close()
		os.Exit(1)
	}

	handler := api.SetupRoutes(cfg, version, buildTime, h.Directory, skills.NewSuggester(extractor, cfg.Skills.Timeout))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server; SIGHUP
	// reloads the skills prompt schemas from the store.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range quit {
		if sig != syscall.SIGHUP {
			break
		}
		reloader, ok := extractor.(skills.Reloader)
		if !ok {
			logger.Info("skills provider has no reloadable schemas", slog.String("provider", cfg.Skills.Provider))
			continue
		}
		if err := reloader.ReloadSchemas(ctx); err != nil {
			logger.Warn("reload skills schemas", slog.Any("err", err))
			continue
		}
		logger.Info("skills schemas reloaded")
	}
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}

	if err := closeExtractor(); err != nil {
		logger.Warn("error closing skill extractor", slog.Any("err", err))
	}
	if err := h.Close(); err != nil {
		logger.Warn("error closing store", slog.Any("err", err))
	}

	logger.Info("server exited")
}
