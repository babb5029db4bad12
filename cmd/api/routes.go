package main

import (
	"coldcall-crm/internal/httpapi"
	"coldcall-crm/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.POST("/v1/auth/login", h.Login)
	r.POST("/v1/auth/refresh", h.Refresh)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		v1.GET("/me", h.Me)

		// SESSION routes: callers drive their own session lifecycle.
		sessions := v1.Group("/sessions")
		sessions.Use(rbac.RequireAnyRole(rbac.RoleCaller))
		{
			sessions.POST("/start", h.StartSession)
			sessions.POST("/:session_id/end", h.EndSession)
			sessions.POST("/:session_id/calls", h.RecordSessionCall)
			sessions.GET("/history", h.SessionHistory)
			sessions.GET("/:session_id", h.GetSession)
		}

		// LEAD routes: the caller's queue and call outcomes.
		leadsGroup := v1.Group("/leads")
		leadsGroup.Use(rbac.RequireAnyRole(rbac.RoleCaller, rbac.RoleSupervisor))
		{
			leadsGroup.GET("/queue", h.MyQueue)
			leadsGroup.GET("/callbacks", h.Callbacks)
			leadsGroup.GET("/:lead_id", h.GetLead)
			leadsGroup.POST("/:lead_id/complete", h.CompleteLead)
			leadsGroup.POST("/:lead_id/transcribe", h.TranscribeLead)
		}

		// ADMIN routes: import, directory management, dashboard, ops.
		// Supervisors may read the dashboard; everything else is admin-only
		// (admin bypasses the role check in rbac.RequireAnyRole).
		dashboard := v1.Group("/admin/stats")
		dashboard.Use(rbac.RequireAnyRole(rbac.RoleSupervisor))
		{
			dashboard.GET("", h.AdminStats)
		}

		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			admin.POST("/leads/import", h.ImportLeads)
			admin.POST("/callers", h.CreateCaller)
			admin.GET("/callers", h.ListCallers)
			admin.PATCH("/callers/:caller_id/active", h.SetCallerActive)
			admin.POST("/callers/:caller_id/analysis", h.AnalyzeCallerPatterns)
			admin.POST("/sessions/sweep", h.SweepSessions)
		}
	}
}
