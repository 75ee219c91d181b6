package main

import (
	"github.com/chefbawss/backend/internal/handlers"
	"github.com/chefbawss/backend/internal/middleware"
	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(middleware.RequestID())
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(svc.metrics.Middleware())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the open credential endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	// Health check and metrics
	r.GET("/health", handlers.Health)
	r.GET("/metrics", svc.metrics.Handler())

	db := models.GetDB()

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.POST("/logout", svc.authHandler.Logout)
			auth.POST("/password-reset", svc.authHandler.RequestPasswordReset)
			auth.POST("/password-reset/confirm", svc.authHandler.ConfirmPasswordReset)
			auth.GET("/invite-info", svc.authHandler.InviteInfo)
			auth.POST("/accept-invite", svc.authHandler.AcceptInvite)
		}

		// Member routes: any active membership
		member := api.Group("")
		member.Use(middleware.AuthRequired(), middleware.TenantResolver(db), middleware.MemberRequired())
		{
			member.GET("/auth/me", svc.authHandler.Me)
			member.PUT("/auth/me", svc.authHandler.UpdateMe)
			member.POST("/auth/change-password", svc.authHandler.ChangePassword)

			member.GET("/organizations/current", svc.orgHandler.Current)

			member.GET("/dashboard", svc.financeHandler.Dashboard)

			// Chef self endpoints
			member.GET("/chefs/me", svc.chefHandler.Me)
			member.PUT("/chefs/me", svc.chefHandler.UpdateMe)

			// Clients (read for all members)
			member.GET("/clients", svc.clientHandler.List)
			member.GET("/clients/:id", svc.clientHandler.Get)

			// Events: chefs see only their own assignments, and their
			// updates are limited to chef_notes inside the handler
			member.GET("/events", svc.eventHandler.List)
			member.GET("/events/calendar", svc.eventHandler.Calendar)
			member.GET("/events/:id", svc.eventHandler.Get)
			member.PUT("/events/:id", svc.eventHandler.Update)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.TenantResolver(db), middleware.AdminRequired())
		{
			admin.PUT("/organizations/current", svc.orgHandler.Update)

			admin.GET("/chefs", svc.chefHandler.List)
			admin.GET("/chefs/:id", svc.chefHandler.Get)
			admin.POST("/chefs/invite", svc.chefHandler.Invite)
			admin.PUT("/chefs/:id", svc.chefHandler.Update)
			admin.POST("/chefs/:id/activate", svc.chefHandler.Activate)
			admin.POST("/chefs/:id/deactivate", svc.chefHandler.Deactivate)
			admin.POST("/chefs/:id/resend-invite", svc.chefHandler.ResendInvite)

			admin.POST("/clients", svc.clientHandler.Create)
			admin.PUT("/clients/:id", svc.clientHandler.Update)
			admin.DELETE("/clients/:id", svc.clientHandler.Delete)

			admin.POST("/events", svc.eventHandler.Create)
			admin.POST("/events/:id/complete", svc.eventHandler.Complete)
			admin.POST("/events/:id/cancel", svc.eventHandler.Cancel)
			admin.DELETE("/events/:id", svc.eventHandler.Delete)

			admin.GET("/finances/summary", svc.financeHandler.Summary)
			admin.GET("/finances/by-chef", svc.financeHandler.ByChef)
		}
	}
}
