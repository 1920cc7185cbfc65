package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"club-commerce-backend/internal/client"
	"club-commerce-backend/internal/config"
	"club-commerce-backend/internal/handler"
	"club-commerce-backend/internal/repository"
	"club-commerce-backend/internal/server"
	"club-commerce-backend/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := buildLogger(&cfg.Log)
	slog.SetDefault(logger)

	ledgerDB, err := client.InitLedgerDB(cfg.LedgerPath)
	if err != nil {
		logger.Error("ledger db init failed", "error", err)
		os.Exit(1)
	}

	store := client.NewStore(&cfg.Store)
	gateway := client.NewGatewayClient(&cfg.Gateway)

	orderRepo := repository.NewOrderRepository(store)
	productRepo := repository.NewProductRepository(store)
	applicationRepo := repository.NewApplicationRepository(store)
	settingsRepo := repository.NewSettingsRepository(store)
	eventLedger := repository.NewEventLedger(ledgerDB)

	receipts := service.NewReceiptGenerator("Club Store", "Thank you for supporting the club.")
	notifier := service.NewNotifier(&cfg.SMTP, receipts, logger)

	authService := service.NewAuthService(&cfg.Auth)
	checkoutService := service.NewCheckoutService(gateway, productRepo, orderRepo, cfg.BaseURL, logger)
	reconciler := service.NewReconciler(orderRepo, eventLedger, notifier, logger)
	applicationService := service.NewApplicationService(applicationRepo, logger)

	srv := server.NewServer(
		handler.NewAuthHandler(authService),
		handler.NewCheckoutHandler(checkoutService, reconciler, gateway, logger),
		handler.NewOrderHandler(orderRepo, receipts),
		handler.NewApplicationHandler(applicationService),
		handler.NewSettingsHandler(settingsRepo),
		authService,
		logger,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Info("starting HTTP server", "addr", serverAddr, "env", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		os.Exit(1)
	}
}

func buildLogger(cfg *config.Log) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
