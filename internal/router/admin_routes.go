package router

import (
	"github.com/labstack/echo/v4"

	"github.com/thelistcl/marketplace-api/internal/handler"
	"github.com/thelistcl/marketplace-api/internal/middleware"
	"github.com/thelistcl/marketplace-api/internal/model"
)

// RegisterAdmin registers the curation surface under /v1/admin.  All
// routes require the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// Internal application review.
	g.GET("/applications", h.ListApplications)
	g.GET("/applications/:id", h.GetApplication)
	g.POST("/applications/:id/approve", h.ApproveApplication)
	g.POST("/applications/:id/reject", h.RejectApplication)

	// Public wizard submissions.
	g.GET("/public-applications", h.ListPublicApplications)
	g.GET("/public-applications/:id", h.GetPublicApplication)
	g.POST("/public-applications/:id/approve", h.ApprovePublicApplication)
	g.POST("/public-applications/:id/reject", h.RejectPublicApplication)

	// Plan lifecycle and landing-page curation.
	g.PATCH("/plans/:id/status", h.SetPlanStatus)
	g.PATCH("/plans/:id/featured", h.SetPlanFeatured)

	// Onboarding invites.
	g.GET("/invites", h.ListInvites)
	g.POST("/invites", h.IssueInvite)
	g.POST("/invites/:id/regenerate", h.RegenerateInvite)

	// Change-request inbox.
	g.GET("/messages", h.ListMessages)
	g.POST("/messages/:id/read", h.MarkMessageRead)
}
