package router

import (
	"github.com/labstack/echo/v4"

	"github.com/thelistcl/marketplace-api/internal/handler"
)

// RegisterPublic registers the guest-facing surface: catalog browse,
// availability, checkout, the application wizard and the onboarding
// pages.  The rate limiter guards the whole group; the response cache
// is applied only to catalog reads, never to availability, which must
// always reflect live capacity.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, chk *handler.CheckoutHandler,
	apps *handler.ApplicationHandler, onb *handler.OnboardingHandler,
	limiter, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", limiter)

	// Catalog browse.  ?featured=1 narrows to the landing-page set,
	// ?sala= and ?location= filter the full listing.
	g.GET("/plans", cat.ListPlans, cache)
	g.GET("/plans/:id", cat.GetPlan, cache)
	g.GET("/plans/:id/availability", cat.Availability)
	g.GET("/hosts/:slug", cat.GetHost, cache)

	// Checkout.  Reservation creation is the hot, contended path.
	g.POST("/plans/:id/reservations", chk.CreateReservation)
	g.GET("/reservations/:reference", chk.GetReservation)
	g.POST("/reservations/:reference/cancel", chk.CancelReservation)

	// Host application wizard, open to anyone.
	g.POST("/applications/public", apps.SubmitPublic)

	// Invite-link onboarding.
	g.GET("/onboarding/validate", onb.Validate)
	g.POST("/onboarding/complete", onb.Complete)
}
