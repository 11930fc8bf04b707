package router

import (
	"github.com/labstack/echo/v4"

	"github.com/thelistcl/marketplace-api/internal/handler"
	"github.com/thelistcl/marketplace-api/internal/middleware"
	"github.com/thelistcl/marketplace-api/internal/model"
)

// RegisterHost registers the host dashboard endpoints under /v1/host.
// Every route requires a valid JWT with the host or admin role, and
// each handler re-checks that the target plan or reservation belongs
// to the caller's host.
func RegisterHost(e *echo.Echo, h *handler.HostHandler, apps *handler.ApplicationHandler, jwtSecret string) {
	// A first application may come from a user who is not a host yet
	// (the submit itself promotes them), so the route carries the JWT
	// gate but not the role gate.
	e.POST("/v1/host/applications", apps.Submit, middleware.JWTAuth(jwtSecret))

	g := e.Group(
		"/v1/host",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleHost, model.RoleAdmin),
	)

	g.GET("/me", h.Me)
	g.GET("/plans", h.MyPlans)
	g.GET("/applications", h.MyApplications)

	// Hosts drive their own plan lifecycle (publish, pause, resume,
	// archive); content edits go through change requests instead.
	g.PATCH("/plans/:id/status", h.SetPlanStatus)
	g.POST("/plans/:id/request-change", h.RequestChange)

	g.GET("/reservations", h.MyReservations)
	g.GET("/plans/:id/reservations", h.PlanReservations)
	g.POST("/reservations/:id/complete", h.CompleteReservation)
	g.POST("/reservations/:id/cancel", h.CancelReservation)
}
