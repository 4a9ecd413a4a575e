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
	_ "github.com/lib/pq"

	"github.com/mvallesteros/ligastar/config"
	"github.com/mvallesteros/ligastar/db"
	"github.com/mvallesteros/ligastar/handlers"
	"github.com/mvallesteros/ligastar/live"
	"github.com/mvallesteros/ligastar/repositories"
	api "github.com/mvallesteros/ligastar/routes"
	"github.com/mvallesteros/ligastar/services"
	"github.com/mvallesteros/ligastar/storage"
)

// standingsRefreshInterval paces the background sweep that recomputes every
// active tournament's table, catching any drift from out-of-band edits.
const standingsRefreshInterval = 24 * time.Hour

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

	var uploader storage.FileUploader
	if cfg.StorageConfigured() {
		uploader, err = storage.NewS3Uploader(storage.S3UploaderConfig{
			Endpoint:        cfg.StorageEndpoint,
			AccessKeyID:     cfg.StorageAccessKeyID,
			SecretAccessKey: cfg.StorageSecretKey,
			BucketName:      cfg.StorageBucket,
			PublicBaseURL:   cfg.StoragePublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize object storage uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("object storage uploader initialized")
	} else {
		logger.Warn("object storage not configured, uploads disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("live event hub started")

	notifier := services.NewEmailService(services.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}, logger)
	if notifier == nil {
		logger.Warn("smtp not configured, notices disabled")
	}

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	cardRepo := repositories.NewPostgresCardRepository(dbConn)
	goalRepo := repositories.NewPostgresGoalRepository(dbConn)
	participationRepo := repositories.NewPostgresParticipationRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)
	financeRepo := repositories.NewPostgresFinanceRepository(dbConn)
	logger.Info("repositories initialized")

	txRunner := services.NewSQLTxRunner(dbConn)

	authService := services.NewAuthService(userRepo)
	disciplineService := services.NewDisciplineService(txRunner, playerRepo, matchRepo, cardRepo, categoryRepo, logger)
	standingService := services.NewStandingService(txRunner, matchRepo, cardRepo, goalRepo, standingRepo, tournamentRepo, logger)
	matchService := services.NewMatchService(
		txRunner,
		matchRepo,
		teamRepo,
		playerRepo,
		cardRepo,
		goalRepo,
		participationRepo,
		categoryRepo,
		standingRepo,
		disciplineService,
		standingService,
		hub,
		notifier,
		logger,
	)
	qualificationService := services.NewQualificationService(tournamentRepo, matchRepo, standingRepo, logger)
	bracketService := services.NewBracketService(txRunner, bracketRepo, matchRepo, teamRepo, hub, logger)
	financeService := services.NewFinanceService(txRunner, financeRepo, cardRepo, playerRepo, teamRepo, categoryRepo, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, categoryRepo, teamRepo, standingRepo, bracketRepo, standingService, logger)
	teamService := services.NewTeamService(teamRepo, tournamentRepo, playerRepo, uploader, logger)
	playerService := services.NewPlayerService(playerRepo, teamRepo, uploader, logger)
	logger.Info("services initialized")

	go func() {
		ticker := time.NewTicker(standingsRefreshInterval)
		defer ticker.Stop()
		logger.Info("standings refresh scheduler started", slog.Duration("interval", standingsRefreshInterval))

		for range ticker.C {
			if err := tournamentService.RefreshStandings(context.Background()); err != nil {
				logger.Error("scheduled standings refresh failed", slog.Any("error", err))
			}
		}
	}()

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, standingService)
	teamHandler := handlers.NewTeamHandler(teamService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	matchHandler := handlers.NewMatchHandler(matchService)
	disciplineHandler := handlers.NewDisciplineHandler(disciplineService)
	bracketHandler := handlers.NewBracketHandler(bracketService, qualificationService)
	financeHandler := handlers.NewFinanceHandler(financeService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		tournamentHandler,
		teamHandler,
		playerHandler,
		matchHandler,
		disciplineHandler,
		bracketHandler,
		financeHandler,
		webSocketHandler,
	)
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
		logger.Info("server stopped gracefully")
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
	logger.Info("application exited")
}
