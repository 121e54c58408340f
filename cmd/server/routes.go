package main

import (
	"github.com/gin-gonic/gin"
	"github.com/surveydesk/backend/internal/middleware"
	"github.com/surveydesk/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.CORS(svc.cfg.Server.CORSOrigins...))

	r.GET("/health", svc.healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.loginLimiter.Middleware(), svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Any signed-in reviewer
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.ActiveAccount(svc.accounts))
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			protected.GET("/surveys", svc.surveyHandler.List)
			protected.GET("/surveys/:id", svc.surveyHandler.Get)
			protected.PATCH("/surveys", svc.surveyHandler.Review)
			protected.PATCH("/update", svc.surveyHandler.Update)

			protected.GET("/dashboard/status", svc.dashboardHandler.Status)
			protected.GET("/dashboard/stats", svc.dashboardHandler.Stats)
		}

		// Admin only
		admin := api.Group("/users")
		admin.Use(middleware.AuthRequired(), middleware.ActiveAccount(svc.accounts), middleware.AdminRequired())
		{
			admin.GET("", svc.userHandler.List)
			admin.POST("", svc.userHandler.Create)
			admin.PUT("/:id", svc.userHandler.Update)
			admin.DELETE("/:id", svc.userHandler.Delete)
		}
	}
}
