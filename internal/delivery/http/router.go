package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	UserHandler      *UserHandler
	WalletHandler    *WalletHandler
	MarketHandler    *MarketHandler
	StrategyHandler  *StrategyHandler
	SimulatorHandler *SimulatorHandler
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging for polling endpoints to reduce noise
			path := c.Request().URL.Path
			return path == "/health" || path == "/api/market/prices"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":  "healthy",
			"service": "cryptodesk-api",
		})
	})

	// API group
	api := e.Group("/api")

	// Users
	users := api.Group("/users")
	{
		users.POST("", config.UserHandler.Create)
		users.GET("", config.UserHandler.List)
		users.GET("/:id", config.UserHandler.Get)
		users.GET("/:id/alerts", config.UserHandler.Alerts)
		users.GET("/:id/wallets", config.WalletHandler.ListByUser)
		users.GET("/:id/strategies", config.StrategyHandler.ListByUser)
	}

	// Assets and market state
	api.POST("/assets", config.MarketHandler.CreateAsset)
	api.GET("/assets", config.MarketHandler.ListAssets)
	marketGroup := api.Group("/market")
	{
		marketGroup.GET("/prices", config.MarketHandler.Prices)
		marketGroup.POST("/prices", config.MarketHandler.UpdatePrices)
		marketGroup.GET("/movers", config.MarketHandler.Movers)
		marketGroup.GET("/:id/price", config.MarketHandler.Price)
		marketGroup.GET("/:id/variation", config.MarketHandler.Variation)
	}

	// Wallets
	wallets := api.Group("/wallets")
	{
		wallets.POST("", config.WalletHandler.Create)
		wallets.GET("/:id", config.WalletHandler.Get)
		wallets.GET("/:id/value", config.WalletHandler.Value)
		wallets.GET("/:id/transactions", config.WalletHandler.Transactions)
		wallets.POST("/:id/deposit", config.WalletHandler.Deposit)
		wallets.POST("/:id/withdraw", config.WalletHandler.Withdraw)
		wallets.POST("/:id/buy", config.WalletHandler.Buy)
		wallets.POST("/:id/sell", config.WalletHandler.Sell)
		wallets.POST("/:id/transfer", config.WalletHandler.Transfer)
	}

	// Transaction lifecycle
	transactions := api.Group("/transactions")
	{
		transactions.POST("/:id/confirm", config.WalletHandler.ConfirmTransaction)
		transactions.POST("/:id/cancel", config.WalletHandler.CancelTransaction)
	}

	// Strategy rules
	strategies := api.Group("/strategies")
	{
		strategies.POST("", config.StrategyHandler.Create)
		strategies.POST("/:id/activate", config.StrategyHandler.Activate)
		strategies.POST("/:id/deactivate", config.StrategyHandler.Deactivate)
	}

	// Paper trading
	simulations := api.Group("/simulations")
	{
		simulations.POST("", config.SimulatorHandler.Start)
		simulations.GET("/:id", config.SimulatorHandler.Get)
		simulations.GET("/:id/performance", config.SimulatorHandler.Performance)
		simulations.POST("/:id/buy", config.SimulatorHandler.Buy)
		simulations.POST("/:id/sell", config.SimulatorHandler.Sell)
		simulations.POST("/:id/stop", config.SimulatorHandler.Stop)
	}
}
