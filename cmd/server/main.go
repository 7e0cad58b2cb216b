package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/puzzle-hub/puzzle-hub/internal/api/http"
	"github.com/puzzle-hub/puzzle-hub/internal/application/auth"
	"github.com/puzzle-hub/puzzle-hub/internal/application/games"
	"github.com/puzzle-hub/puzzle-hub/internal/application/play"
	"github.com/puzzle-hub/puzzle-hub/internal/config"
	"github.com/puzzle-hub/puzzle-hub/internal/infrastructure/postgres"
	"github.com/puzzle-hub/puzzle-hub/internal/infrastructure/ws"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, "internal/migrations"); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	gameRepo := postgres.NewGameRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	// infrastructure
	hub := ws.NewHub(logger)

	// services
	authSvc := auth.NewService(sessionRepo, userRepo, cfg.SessionTTL, logger)
	gameSvc := games.NewService(gameRepo, hub, nil, logger)
	playSvc := play.NewService(gameRepo, gameRepo, play.NewLedger(), hub, logger)

	// API server
	apiServer := httpapi.NewServer(authSvc, gameSvc, playSvc, hub, cfg.AllowedOrigins, logger)

	// No WriteTimeout: websocket connections outlive any sane value.
	httpServer := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     apiServer.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// background loops
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := authSvc.PurgeExpiredSessions(context.Background()); err != nil {
				logger.Error().Err(err).Msg("session purge failed")
			} else if n > 0 {
				logger.Info().Int("purged", n).Msg("expired sessions removed")
			}
		}
	}()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
	hub.Shutdown()
}
