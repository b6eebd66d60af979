package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"cryptodesk/configs"
	"cryptodesk/internal/adapter/binance"
	"cryptodesk/internal/adapter/telegram"
	"cryptodesk/internal/database"
	delivery "cryptodesk/internal/delivery/http"
	"cryptodesk/internal/domain"
	"cryptodesk/internal/infra"
	"cryptodesk/internal/logger"
	"cryptodesk/internal/market"
	"cryptodesk/internal/repository"
	"cryptodesk/internal/service"
	"cryptodesk/internal/usecase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := configs.Load()
	logger.Init()

	ctx := context.Background()

	// Database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	strategyRepo := repository.NewStrategyRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// In-memory market state, seeded from the persisted asset registry so
	// prices survive a restart until the first feed poll lands.
	marketState := market.NewState(cfg.Market.HistoryLimit)
	seedMarketState(ctx, marketState, assetRepo)

	// Adapters
	notifier := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	feed := binance.NewPriceFeed(assetRepo, marketState)

	// Services
	threshold := decimal.NewFromFloat(cfg.Market.SharpMoveThreshold)
	ledger := service.NewLedgerService(walletRepo, assetRepo, txRepo, marketState)
	simulators := service.NewSimulatorService(marketState)
	volatility := service.NewVolatilityService(marketState, assetRepo, walletRepo, alertRepo, notifier, threshold)
	engine := usecase.NewStrategyEngine(strategyRepo, walletRepo, assetRepo, txRepo, alertRepo, marketState, notifier)

	// Scheduler: feed poll, strategy passes, volatility sweep
	scheduler := infra.NewScheduler(feed, engine, volatility)
	if err := scheduler.Start(cfg.Market.FeedSeconds, cfg.Market.EngineSeconds); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	// Public API server
	e := echo.New()
	e.HideBanner = true
	delivery.SetupRoutes(e, &delivery.RouterConfig{
		UserHandler:      delivery.NewUserHandler(userRepo, alertRepo),
		WalletHandler:    delivery.NewWalletHandler(ledger, walletRepo),
		MarketHandler:    delivery.NewMarketHandler(assetRepo, marketState, threshold),
		StrategyHandler:  delivery.NewStrategyHandler(strategyRepo, walletRepo, assetRepo),
		SimulatorHandler: delivery.NewSimulatorHandler(simulators),
	})

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("api server starting", "addr", addr, "env", cfg.Server.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("api server stopped", "error", err)
			os.Exit(1)
		}
	}()

	// Internal ops server
	opsSrv := &http.Server{
		Addr:         ":" + cfg.Server.OpsPort,
		Handler:      opsRouter(db, scheduler, alertRepo),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("ops server starting", "addr", opsSrv.Addr)
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ops server stopped", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server forced to shutdown", "error", err)
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server forced to shutdown", "error", err)
	}
	logger.Info("server exited gracefully")
}

// seedMarketState loads persisted asset prices into the live price table.
func seedMarketState(ctx context.Context, state *market.State, assetRepo domain.AssetRepository) {
	assets, err := assetRepo.GetAll(ctx)
	if err != nil {
		logger.Warn("failed to seed market state", "error", err)
		return
	}
	updates := make(map[uuid.UUID]decimal.Decimal)
	for _, asset := range assets {
		if asset.CurrentPrice.IsPositive() {
			updates[asset.ID] = asset.CurrentPrice
		}
	}
	if len(updates) == 0 {
		return
	}
	if err := state.UpdatePrices(updates); err != nil {
		logger.Warn("failed to seed market state", "error", err)
		return
	}
	logger.Info("market state seeded", "assets", len(updates))
}

func opsRouter(db interface{ Ping(context.Context) error }, scheduler *infra.Scheduler, alertRepo domain.AlertRepository) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "healthy"
		if err := db.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "cryptodesk", "database": %q, "timestamp": %q}`,
			dbStatus, time.Now().Format(time.RFC3339))
	})

	r.Post("/feed/trigger", func(w http.ResponseWriter, req *http.Request) {
		go func() {
			if err := scheduler.RunFeedNow(context.Background()); err != nil {
				logger.Error("manual feed poll failed", "error", err)
			}
		}()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"message": "feed poll triggered", "status": "processing"}`))
	})

	r.Post("/engine/trigger", func(w http.ResponseWriter, req *http.Request) {
		go func() {
			if err := scheduler.RunEngineNow(context.Background()); err != nil {
				logger.Error("manual strategy pass failed", "error", err)
			}
		}()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"message": "strategy pass triggered", "status": "processing"}`))
	})

	r.Get("/alerts/recent", func(w http.ResponseWriter, req *http.Request) {
		limit := 20
		if raw := req.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}
		alerts, err := alertRepo.GetRecent(req.Context(), limit)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, `{"error": %q}`, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{"alerts": alerts}); err != nil {
			logger.Error("failed to encode alerts", "error", err)
		}
	})

	return r
}
