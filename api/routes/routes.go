package routes

import (
	"github.com/brightpools/charity-draw-backend/internal/config"
	"github.com/brightpools/charity-draw-backend/internal/handlers"
	"github.com/brightpools/charity-draw-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies bundles the handlers the router wires up
type HandlerDependencies struct {
	AuthHandler       *handlers.AuthHandler
	DrawHandler       *handlers.DrawHandler
	SettlementHandler *handlers.SettlementHandler
	SettingsHandler   *handlers.SettingsHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
		}

		// Provider callback; authenticated by the provider signature, not JWT
		public.POST("/payments/callback", deps.SettlementHandler.PaymentCallback)
	}

	// Protected admin routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		draws := protected.Group("/draws")
		{
			draws.GET("", deps.DrawHandler.GetDraws)
			draws.GET("/current", deps.DrawHandler.GetCurrentDraw)
			draws.GET("/:id", deps.DrawHandler.GetDrawByID)
			draws.GET("/:id/winners", deps.DrawHandler.GetDrawWinners)
			draws.POST("", deps.DrawHandler.OpenCycle)
			draws.POST("/:id/analysis", deps.DrawHandler.RunAnalysis)
			draws.POST("/:id/finalize", deps.DrawHandler.FinalizeDraft)
			draws.POST("/:id/publish", deps.DrawHandler.PublishDraw)
			draws.POST("/:id/reset", deps.DrawHandler.ResetDraw)
			draws.POST("/:id/winners/settle", deps.SettlementHandler.MarkWinnersPaidBatch)
		}

		winners := protected.Group("/winners")
		{
			winners.PUT("/:id/verification", deps.DrawHandler.VerifyWinner)
			winners.POST("/:id/settle", deps.SettlementHandler.MarkWinnerPaid)
			winners.POST("/:id/checkout", deps.SettlementHandler.StartWinnerCheckout)
		}

		charities := protected.Group("/charities")
		{
			charities.GET("/:charityId/payouts", deps.SettlementHandler.GetCharityPayouts)
			charities.POST("/:charityId/checkout", deps.SettlementHandler.StartCharityCheckout)
			charities.POST("/:charityId/settle", deps.SettlementHandler.SettleCharityManual)
		}

		settings := protected.Group("/settings")
		{
			settings.GET("", deps.SettingsHandler.GetSettings)
			settings.PUT("", deps.SettingsHandler.UpdateSettings)
		}
	}

	return router
}
