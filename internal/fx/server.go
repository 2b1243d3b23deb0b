package fx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"Fluxo/config"
	"Fluxo/internal/logger"
	"Fluxo/internal/middleware"
	"Fluxo/internal/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// ServerModule fornece a configuração do servidor HTTP
var ServerModule = fx.Module("server",
	fx.Provide(
		newRouter,
	),
	fx.Invoke(
		setupRoutes,
		startServer,
	),
)

type routeParams struct {
	fx.In

	Config      *config.Config
	Router      *gin.Engine
	Handler     *routes.Handler
	JwtService  *middleware.JwtService
	AuthLimiter *middleware.RateLimiter `name:"authLimiter"`
	UserLimiter *middleware.RateLimiter `name:"userLimiter"`
}

func newRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	return router
}

func setupRoutes(p routeParams) {
	router, handler := p.Router, p.Handler
	router.Use(middleware.CORSMiddleware(p.Config.Server.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := router.Group("/api")
	public.Use(middleware.RateLimit(p.AuthLimiter))
	{
		public.POST("/auth/login", handler.Authenticate)
		public.POST("/auth/register", handler.Registration)
	}

	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(p.JwtService))
	private.Use(middleware.RateLimitByUser(p.UserLimiter))
	{
		users := private.Group("/users")
		{
			users.GET("/me", handler.GetCurrentUser)
			users.PATCH("/me", handler.UpdateCurrentUser)
			users.PATCH("/me/password", handler.UpdateUserPassword)
		}

		transactions := private.Group("/transactions")
		{
			transactions.POST("", handler.CreateTransaction)
			transactions.GET("", handler.ListTransactions)
			transactions.GET("/:id", handler.GetTransaction)
			transactions.POST("/:id/settle", handler.SettleTransaction)
			transactions.DELETE("/:id", handler.DeleteTransaction)
		}

		categories := private.Group("/categories")
		{
			categories.POST("", handler.CreateCategory)
			categories.GET("", handler.ListCategories)
			categories.PATCH("/:id", handler.UpdateCategory)
		}

		recurringItems := private.Group("/recurring")
		{
			recurringItems.POST("", handler.CreateRecurring)
			recurringItems.GET("", handler.ListRecurrings)
			recurringItems.POST("/materialize", handler.MaterializeRecurring)
			recurringItems.GET("/:id", handler.GetRecurring)
			recurringItems.PATCH("/:id", handler.UpdateRecurring)
			recurringItems.DELETE("/:id", handler.DeleteRecurring)
			recurringItems.POST("/:id/pause", handler.PauseRecurring)
			recurringItems.POST("/:id/resume", handler.ResumeRecurring)
		}

		cards := private.Group("/cards")
		{
			cards.POST("", handler.CreateCard)
			cards.GET("", handler.ListCards)
			cards.GET("/:id", handler.GetCard)
			cards.PATCH("/:id", handler.UpdateCard)
			cards.DELETE("/:id", handler.DeleteCard)
			cards.GET("/:id/invoices", handler.ListInvoices)
			cards.POST("/:id/installments", handler.CreateInstallmentPurchase)
		}

		invoices := private.Group("/invoices")
		{
			invoices.GET("/:id", handler.GetInvoice)
			invoices.POST("/:id/close", handler.CloseInvoice)
			invoices.POST("/:id/reopen", handler.ReopenInvoice)
			invoices.POST("/:id/pay", handler.PayInvoice)
		}

		stagingItems := private.Group("/staging")
		{
			stagingItems.POST("", handler.ImportStaging)
			stagingItems.GET("", handler.ListStaging)
			stagingItems.POST("/approve", handler.ApproveStaging)
			stagingItems.POST("/ignore", handler.IgnoreStaging)
			stagingItems.POST("/reconcile", handler.ReconcileStaging)
			stagingItems.GET("/:id", handler.GetStagingItem)
		}

		dashboardGroup := private.Group("/dashboard")
		{
			dashboardGroup.GET("/balance", handler.GetBalance)
			dashboardGroup.GET("/categories", handler.GetExpensesByCategory)
		}

		alerts := private.Group("/alerts")
		{
			alerts.GET("", handler.ListAlerts)
			alerts.POST("/mark-paid", handler.MarkAlertPaid)
		}
	}
}

func startServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine) {
	serverAddr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info().
				Str("address", serverAddr).
				Str("environment", cfg.App.Environment).
				Msg("Servidor iniciando")
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("Falha ao iniciar servidor")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("Servidor parando...")
			return srv.Shutdown(ctx)
		},
	})
}
