package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightpools/charity-draw-backend/api/routes"
	"github.com/brightpools/charity-draw-backend/internal/config"
	"github.com/brightpools/charity-draw-backend/internal/handlers"
	"github.com/brightpools/charity-draw-backend/internal/repositories"
	mongorepo "github.com/brightpools/charity-draw-backend/internal/repositories/mongodb"
	"github.com/brightpools/charity-draw-backend/internal/services"
	"github.com/brightpools/charity-draw-backend/pkg/mongodb"
	"github.com/brightpools/charity-draw-backend/pkg/paygate"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogger(cfg.LogLevel)

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	var drawRepo repositories.DrawCycleRepository = mongorepo.NewDrawCycleRepository(db)
	var winnerRepo repositories.WinnerRepository = mongorepo.NewWinnerRepository(db)
	var donationRepo repositories.DonationRepository = mongorepo.NewDonationRepository(db)
	var payoutRepo repositories.CharityPayoutRepository = mongorepo.NewCharityPayoutRepository(db)
	var scoreRepo repositories.ScoreRepository = mongorepo.NewScoreRepository(db)
	var subscriptionRepo repositories.SubscriptionRepository = mongorepo.NewSubscriptionRepository(db)
	var settingsRepo repositories.SettingsRepository = mongorepo.NewSettingsRepository(db)
	var rolloverRepo repositories.JackpotRolloverRepository = mongorepo.NewJackpotRolloverRepository(db)
	var adminRepo repositories.AdminUserRepository = mongorepo.NewAdminUserRepository(db)

	// External payment provider
	gateway := paygate.NewClient(cfg.PayGate.BaseURL, cfg.PayGate.APIKey, cfg.PayGate.Mock)

	// Services
	authService := services.NewAuthService(adminRepo, cfg)
	drawService := services.NewDrawService(drawRepo, winnerRepo, donationRepo, scoreRepo, subscriptionRepo, settingsRepo, rolloverRepo)
	settlementService := services.NewSettlementService(winnerRepo, donationRepo, payoutRepo, gateway)
	settingsService := services.NewSettingsService(settingsRepo)

	// Handlers
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:       handlers.NewAuthHandler(authService),
		DrawHandler:       handlers.NewDrawHandler(drawService),
		SettlementHandler: handlers.NewSettlementHandler(settlementService),
		SettingsHandler:   handlers.NewSettingsHandler(settingsService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	slog.Info("Server starting", "port", cfg.Server.Port)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	slog.Info("Server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
