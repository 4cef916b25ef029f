package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"holdco/internal/api"
	"holdco/internal/config"
	"holdco/internal/db"
	"holdco/internal/game"
	"holdco/internal/persistence"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if err := config.LoadDotEnv(); err != nil {
		logger.Error("load .env", "err", err)
		os.Exit(1)
	}
	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	saves, err := persistence.Open(cfg.SavesPath)
	if err != nil {
		logger.Error("open saves failed", "path", cfg.SavesPath, "err", err)
		os.Exit(1)
	}
	defer saves.Close()

	var board game.LeaderboardStore = game.NewMemoryLeaderboard()
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		pg, err := db.NewLeaderboardStore(pool)
		if err != nil {
			logger.Error("leaderboard store init failed", "err", err)
			os.Exit(1)
		}
		board = pg
	} else {
		logger.Warn("DATABASE_URL not set; leaderboard kept in memory")
	}

	gameSvc := game.NewService(saves, board, logger)
	server := api.New(cfg, logger, gameSvc)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("holdco api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
