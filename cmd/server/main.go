package main

import (
	"context" // context package is needed for Redis operations

	"trading_sim/internal/api"        // Custom package for HTTP handlers
	"trading_sim/internal/config"     // Custom package for configuration
	"trading_sim/internal/db"         // Custom package for database access
	"trading_sim/internal/ledger"     // Custom package for the ledger core
	"trading_sim/internal/middleware" // Custom package for middleware
	"trading_sim/internal/portfolio"  // Custom package for the portfolio view
	"trading_sim/internal/quote"      // Custom package for quote lookups

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.SessionSecret == "" {
		logrus.Fatal("SESSION_SECRET must be set")
	}

	// Connect to the database and migrate the schema
	gormDB, err := db.Open(db.DSN(cfg))
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		logrus.Fatalf("failed to migrate schema: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Build services
	quotes := quote.NewClient(cfg.QuoteBaseURL, cfg.QuoteTimeout, redisClient)
	book := ledger.New(gormDB, quotes, redisClient, cfg.MinCashOp)
	views := portfolio.NewService(gormDB, quotes, redisClient)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default()
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}
	r.Use(middleware.NoStore())
	r.LoadHTMLGlob("templates/*.html")

	// Public routes
	r.GET("/register", api.RegisterPageHandler())
	r.POST("/register", api.RegisterHandler(gormDB, cfg))
	r.GET("/login", api.LoginPageHandler())
	r.POST("/login", api.LoginHandler(gormDB, cfg))
	r.GET("/logout", api.LogoutHandler())

	// Authenticated routes (session cookie required)
	authed := r.Group("/")
	authed.Use(middleware.SessionAuth(cfg.SessionSecret))
	{
		authed.GET("/", api.IndexHandler(views))
		authed.GET("/quote", api.QuotePageHandler())
		authed.POST("/quote", api.QuoteHandler(quotes))
		authed.GET("/buy", api.BuyPageHandler())
		authed.POST("/buy", api.BuyHandler(book))
		authed.GET("/sell", api.SellPageHandler(views))
		authed.POST("/sell", api.SellHandler(book))
		authed.GET("/deposit", api.DepositPageHandler(cfg.MinCashOp))
		authed.POST("/deposit", api.DepositHandler(book, cfg.MinCashOp))
		authed.GET("/withdraw", api.WithdrawPageHandler(cfg.MinCashOp))
		authed.POST("/withdraw", api.WithdrawHandler(book, cfg.MinCashOp))
		authed.GET("/history", api.HistoryHandler(views))
	}

	logrus.Info("Server running on " + cfg.AppPort)
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
