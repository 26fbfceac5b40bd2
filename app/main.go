package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/rss-rank/app/api"
	"github.com/lysyi3m/rss-rank/app/archive"
	"github.com/lysyi3m/rss-rank/app/cfg"
	"github.com/lysyi3m/rss-rank/app/domains"
	"github.com/lysyi3m/rss-rank/app/feed"
	"github.com/lysyi3m/rss-rank/app/pipeline"
	"github.com/lysyi3m/rss-rank/app/scoring"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting RSS Rank", "version", appCfg.Version, "archive", appCfg.ArchiveDriver)

	classifier, err := domains.Load(appCfg.DomainsFile)
	if err != nil {
		slog.Error("Failed to load domain tables", "error", err)
		os.Exit(1)
	}

	store, err := openStore(appCfg)
	if err != nil {
		slog.Error("Failed to open archive", "driver", appCfg.ArchiveDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	writer := archive.NewWriter(store)
	writer.Start()
	defer writer.Stop()

	httpClient := &http.Client{}

	ranker := pipeline.NewRanker(
		feed.NewFetcher(httpClient, appCfg.UserAgent, appCfg.FeedTimeout),
		feed.NewParser(),
		classifier,
		feed.NewPublishTimeResolver(httpClient, classifier, appCfg.UserAgent, appCfg.PageTimeout),
		scoring.NewScorer(classifier, time.Now),
		writer,
		pipeline.Options{
			FetchLimit:  appCfg.FetchLimit,
			ResultLimit: appCfg.ResultLimit,
		},
	)

	handler := api.NewHandler(ranker, writer, appCfg.Version)

	// No WriteTimeout: a query runs one page fetch per trusted entry
	// sequentially and has no overall deadline.
	httpServer := &http.Server{
		Addr:        ":" + appCfg.Port,
		Handler:     api.NewServer(handler),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("RSS Rank shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func openStore(appCfg *cfg.Cfg) (archive.Store, error) {
	switch appCfg.ArchiveDriver {
	case cfg.DriverSQLite:
		return archive.NewSQLiteStore(appCfg.SQLitePath)
	case cfg.DriverRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return archive.NewRedisStore(ctx, appCfg.RedisAddr, appCfg.RedisKey)
	default:
		return archive.NewJSONStore(appCfg.ArchivePath), nil
	}
}
