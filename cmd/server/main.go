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

	"go.uber.org/zap"

	"commute-route-service/internal/adapters/repositories"
	"commute-route-service/internal/api"
	"commute-route-service/internal/app"
	"commute-route-service/internal/config"
	"commute-route-service/internal/platform/obs"
)

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := obs.NewLogger(cfg.AppEnv, "server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	log.Info("starting commute-route-service",
		zap.String("port", cfg.Server.Port),
		zap.String("provider", cfg.Directions.Provider),
		zap.String("cache_store", cfg.Database.Driver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open backends", zap.Error(err))
	}
	defer a.Close()

	// Import the survey on startup for local runs; rows are replaced by number.
	if _, err := os.Stat(cfg.Survey.Path); err == nil {
		n, err := repositories.SeedFromCSV(ctx, a.Store, cfg.Survey.Path, app.SurveyOptions(cfg), log.Named("survey"))
		if err != nil {
			log.Fatal("failed to import survey", zap.String("path", cfg.Survey.Path), zap.Error(err))
		}
		log.Info("survey imported", zap.String("path", cfg.Survey.Path), zap.Int("rows", n))
	} else {
		log.Warn("no survey file, serving stored commutes", zap.String("path", cfg.Survey.Path))
	}

	router := api.NewRouter(api.Deps{
		Plotter:   a.Plotter(),
		Commutes:  a.Commutes,
		Routes:    a.Routes,
		LayerName: cfg.Plot.LayerName,
		Log:       log.Named("http"),
	})

	// Write timeout is tuned for cold-cache plotting (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down commute-route-service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("commute-route-service stopped")
}
