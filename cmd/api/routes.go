package main

import (
	"ringr-platform/internal/auth"
	"ringr-platform/internal/httpapi"
	"ringr-platform/internal/rbac"
	"ringr-platform/internal/webhooks"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, authMW gin.HandlerFunc, wh webhooks.Handler, h httpapi.Handlers) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhooks (public; each adapter verifies its own signature).
	// Provider selection via ?provider=, defaulting to vapi.
	r.POST("/webhooks/voice", wh.HandleVoiceWebhook)

	// AUTH routes (token issuance).
	// NOTE: This is a placeholder login route; real credential validation is not implemented.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		// Identity extraction via context.
		v1.GET("/me", func(c *gin.Context) {
			uid, _ := auth.UserID(c.Request.Context())
			oid, _ := auth.OrganizationID(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			c.JSON(200, gin.H{"user_id": uid, "organization_id": oid, "role": role})
		})

		// CALLS routes
		callGroup := v1.Group("/calls")
		callGroup.Use(rbac.RequireOrganization())
		callGroup.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAdmin, rbac.RoleMember, rbac.RoleSuperAdmin))
		{
			callGroup.GET("", h.ListCalls)
			callGroup.GET("/:call_id", h.GetCall)
		}

		// ANALYTICS routes
		analyticsGroup := v1.Group("/analytics")
		analyticsGroup.Use(rbac.RequireOrganization())
		analyticsGroup.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAdmin, rbac.RoleSuperAdmin))
		{
			analyticsGroup.GET("/summary", h.AnalyticsSummary)
		}

		// ACCOUNT routes
		accountGroup := v1.Group("/account")
		accountGroup.Use(rbac.RequireOrganization())
		accountGroup.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAdmin, rbac.RoleSuperAdmin))
		{
			accountGroup.GET("/status", h.AccountStatus)
		}
	}
}
