// Package router wires HTTP routes to their handlers.  Routes are
// grouped by audience: public browse and checkout, authenticated
// hosts, and the admin curation surface.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/thelistcl/marketplace-api/internal/handler"
	"github.com/thelistcl/marketplace-api/internal/middleware"
)

// RegisterRoutes registers routes that carry no middleware at all.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints.  Register, login,
// refresh and logout are open; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
