// Package server assembles the HTTP router from handlers, middleware and the
// injected rate limiter.
package server

import (
	"expvar"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "wdmmg/internal/docs" // Import swagger docs
	"wdmmg/internal/handlers"
	"wdmmg/internal/middleware"
	"wdmmg/internal/ratelimit"
	"wdmmg/internal/services"
)

// Deps are the collaborators the router needs. All fields are required.
type Deps struct {
	Auth         services.AuthServicer
	Users        services.UserServicer
	Transactions services.TransactionServicer
	Budgets      services.BudgetServicer
	Stats        services.StatsServicer
	Audit        services.AuditServicer
	Limiter      ratelimit.Limiter
	CORSOrigins  []string
}

// NewRouter builds the gin engine. Every API route is served both at the
// root and under /api/v1.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))
	router.Use(middleware.ErrorHandler())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Best-effort failure counters
	router.GET("/debug/vars", gin.WrapH(expvar.Handler()))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "WDMMG", "status": "running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r := &routes{
		auth:         handlers.NewAuthHandler(deps.Auth, deps.Users),
		categories:   handlers.NewCategoryHandler(),
		transactions: handlers.NewTransactionHandler(deps.Transactions, deps.Audit),
		budgets:      handlers.NewBudgetHandler(deps.Budgets, deps.Stats, deps.Audit),
		stats:        handlers.NewStatsHandler(deps.Stats),
		requireAuth:  middleware.AuthMiddleware(deps.Auth),
		limiter:      deps.Limiter,
	}
	r.register(router)
	r.register(router.Group("/api/v1"))

	return router
}

type routes struct {
	auth         *handlers.AuthHandler
	categories   *handlers.CategoryHandler
	transactions *handlers.TransactionHandler
	budgets      *handlers.BudgetHandler
	stats        *handlers.StatsHandler
	requireAuth  gin.HandlerFunc
	limiter      ratelimit.Limiter
}

func (r *routes) limit(class ratelimit.Class) gin.HandlerFunc {
	return middleware.RateLimit(r.limiter, class)
}

func (r *routes) register(g gin.IRouter) {
	// Public routes
	auth := g.Group("/auth")
	auth.POST("/signup", r.limit(ratelimit.ClassSignup), r.auth.Signup)
	auth.POST("/login", r.limit(ratelimit.ClassLogin), r.auth.Login)
	auth.POST("/refresh", r.limit(ratelimit.ClassRefresh), r.auth.Refresh)
	auth.POST("/logout", r.requireAuth, r.auth.Logout)
	auth.GET("/me", r.requireAuth, r.auth.Me)

	g.GET("/categories", r.categories.ListCategories)

	// Protected routes
	protected := g.Group("", r.requireAuth)

	transactions := protected.Group("/transactions")
	transactions.POST("", r.limit(ratelimit.ClassMutate), r.transactions.CreateTransaction)
	transactions.GET("", r.limit(ratelimit.ClassRead), r.transactions.ListTransactions)
	transactions.POST("/bulk-delete", r.limit(ratelimit.ClassBulk), r.transactions.BulkDeleteTransactions)
	transactions.GET("/:id", r.limit(ratelimit.ClassRead), r.transactions.GetTransaction)
	transactions.PUT("/:id", r.limit(ratelimit.ClassMutate), r.transactions.UpdateTransaction)
	transactions.DELETE("/:id", r.limit(ratelimit.ClassMutate), r.transactions.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.GET("", r.limit(ratelimit.ClassRead), r.budgets.ListBudgets)
	budgets.POST("", r.limit(ratelimit.ClassBudget), r.budgets.UpsertBudget)
	budgets.GET("/status", r.budgets.BudgetStatus)
	budgets.GET("/:id", r.limit(ratelimit.ClassRead), r.budgets.GetBudget)
	budgets.DELETE("/:id", r.limit(ratelimit.ClassBudget), r.budgets.DeleteBudget)

	stats := protected.Group("/stats")
	stats.GET("/by-category", r.stats.ByCategory)
	stats.GET("/trends", r.stats.Trends)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Retry-After", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
