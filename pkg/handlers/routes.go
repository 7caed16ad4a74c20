package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

// Routes registers the full API surface on the engine.
func (h *Handler) Routes(r *gin.Engine) {
	r.Use(MetricsMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Clinic Scheduler API",
			"version": "1.0.0",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", h.RegisterTenant)
		authRoutes.POST("/login", h.Login)
	}

	adminOnly := h.RequireRole(models.RoleAdmin)

	// Everything below requires a valid token with live tenant context.
	authed := v1.Group("")
	authed.Use(h.AuthMiddleware(), h.TenantMiddleware())
	{
		authed.GET("/auth/me", h.Me)
		authed.POST("/auth/change-password", h.ChangePassword)

		users := authed.Group("/users")
		{
			users.GET("", h.ListUsers)
			users.GET("/:id", h.GetUser)
			users.POST("", adminOnly, h.RegisterStaff)
			users.PUT("/:id", adminOnly, h.UpdateUser)
			users.DELETE("/:id", adminOnly, h.DeleteUser)
		}

		schedules := authed.Group("/schedules")
		{
			schedules.GET("", h.ListSchedules)
			schedules.GET("/:id", h.GetSchedule)
			schedules.POST("", adminOnly, h.CreateSchedule)
			schedules.PUT("/:id", adminOnly, h.UpdateSchedule)
			schedules.DELETE("/:id", adminOnly, h.DeleteSchedule)
			schedules.POST("/auto-generate", adminOnly, h.AutoGenerateSchedule)
		}

		coverage := authed.Group("/coverage")
		{
			coverage.GET("", h.ListCoverage)
			coverage.GET("/unfilled", h.ListUnfilledCoverage)
			coverage.GET("/unfilled/auto", adminOnly, h.ListUnfilledCoverageForAuto)
			coverage.POST("", adminOnly, h.CreateCoverage)
			coverage.PUT("/:id", adminOnly, h.UpdateCoverage)
			coverage.DELETE("/:id", adminOnly, h.DeleteCoverage)
		}

		timeoff := authed.Group("/timeoff")
		{
			timeoff.POST("", h.RequestTimeOff)
			timeoff.GET("", h.ListTimeOff)
			timeoff.PATCH("/:id/review", adminOnly, h.ReviewTimeOff)
		}

		prefs := authed.Group("/preferences")
		{
			prefs.GET("/me", h.GetMyPreferences)
			prefs.PUT("/me", h.UpsertMyPreferences)
			prefs.GET("/staff/:staffId", adminOnly, h.GetPreferencesForStaff)
		}

		messages := authed.Group("/messages")
		{
			messages.POST("", h.CreateMessage)
			messages.GET("", h.ListMessages)
			messages.GET("/inbox", h.Inbox)
			messages.GET("/unread-count", h.UnreadCount)
			messages.PATCH("/:id/read", h.MarkMessageRead)
			messages.DELETE("/:id", h.DeleteMessage)
		}

		summary := authed.Group("/summary")
		{
			summary.GET("/staff/:staffId", h.GetStaffSummary)
			summary.GET("/admin", adminOnly, h.GetAdminSummary)
		}

		tenants := authed.Group("/tenants")
		{
			tenants.GET("/me", h.GetMyTenant)
			tenants.PUT("/me", adminOnly, h.UpdateMyTenant)
		}
	}
}
