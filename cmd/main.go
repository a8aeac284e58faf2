package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pitchside/matchday/config"
	"github.com/pitchside/matchday/db"
	"github.com/pitchside/matchday/handlers"
	"github.com/pitchside/matchday/live"
	"github.com/pitchside/matchday/localstore"
	"github.com/pitchside/matchday/middleware"
	"github.com/pitchside/matchday/queue"
	"github.com/pitchside/matchday/repositories"
	api "github.com/pitchside/matchday/routes"
	"github.com/pitchside/matchday/services"
	"github.com/pitchside/matchday/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Device-local event store. Falls back to memory when the path is
	// unusable so the app still runs (events then only survive until the
	// process exits, which the log makes loud).
	var localStore localstore.Store
	sqliteStore, err := localstore.OpenSQLiteStore(cfg.LocalStorePath)
	if err != nil {
		logger.Error("failed to open local event store, falling back to memory",
			slog.String("path", cfg.LocalStorePath),
			slog.Any("error", err))
		localStore = localstore.NewMemoryStore()
	} else {
		defer sqliteStore.Close()
		localStore = sqliteStore
		logger.Info("local event store opened", slog.String("path", cfg.LocalStorePath))
	}

	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 not configured, crest uploads disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run()

	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	tournamentTeamRepo := repositories.NewPostgresTournamentTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	matchEventRepo := repositories.NewPostgresMatchEventRepository(dbConn)
	lineupRepo := repositories.NewPostgresLineupRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)

	eventQueue := queue.New(localStore, matchEventRepo, logger)

	teamService := services.NewTeamService(teamRepo, playerRepo, uploader)
	playerService := services.NewPlayerService(playerRepo, teamRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, tournamentTeamRepo, teamRepo)
	standingService := services.NewStandingService(dbConn, tournamentRepo, matchRepo, standingRepo, teamRepo, uploader, logger)
	matchService := services.NewMatchService(matchRepo, lineupRepo, tournamentTeamRepo, standingService, hub, logger)
	logger.Info("services initialized")

	// Background retry of pending event syncs: app resume and
	// connectivity-regain triggers collapse into this periodic pass.
	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		logger.Info("event sync scheduler started", slog.Duration("interval", cfg.SyncInterval))
		for range ticker.C {
			result, err := eventQueue.SyncAll(context.Background())
			if err != nil {
				logger.Error("scheduled event sync failed", slog.Any("error", err))
				continue
			}
			if result.Synced > 0 || result.Pending > 0 {
				logger.Info("scheduled event sync",
					slog.Int("synced", result.Synced),
					slog.Int("pending", result.Pending))
			}
		}
	}()

	teamHandler := handlers.NewTeamHandler(teamService, playerService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, matchService, standingService)
	matchHandler := handlers.NewMatchHandler(matchService)
	eventHandler := handlers.NewEventHandler(eventQueue, matchEventRepo, hub)
	liveHandler := handlers.NewLiveHandler(hub, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(logger))
	api.SetupRoutes(router, teamHandler, playerHandler, tournamentHandler, matchHandler, eventHandler, liveHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
