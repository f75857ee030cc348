package handler

import (
	"land-ledger/internal/adapter/http/middleware"
	redisStore "land-ledger/internal/adapter/storage/redis"
	"land-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	TokenSvc       ports.TokenService
	GatewaySecret  string
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.TokenSvc, deps.GatewaySecret)
	auth := v1.Group("/auth")
	{
		auth.POST("/token", rl("auth_token"), authHandler.Token)
	}

	landHandler := NewLandHandler(deps.LedgerSvc)

	// --- Public reads ---
	lands := v1.Group("/lands")
	{
		lands.GET("", rl("lands_read"), landHandler.GetAll)
		lands.GET("/:id", rl("lands_read"), landHandler.Get)
		lands.GET("/:id/history", rl("lands_read"), landHandler.History)
	}

	// --- Authenticated writes ---
	callerAuth := middleware.CallerAuth(deps.TokenSvc, deps.Logger)
	writes := v1.Group("/lands", callerAuth)
	{
		writes.POST("", rl("lands_write"), landHandler.Register)
		writes.POST("/:id/list", rl("lands_write"), landHandler.ListForSale)
		writes.POST("/:id/purchase", rl("lands_write"), landHandler.Purchase)
		writes.POST("/:id/transfer", rl("lands_write"), landHandler.Transfer)
	}

	return r
}
