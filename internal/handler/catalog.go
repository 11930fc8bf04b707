package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thelistcl/marketplace-api/internal/booking"
	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/pricing"
	"github.com/thelistcl/marketplace-api/internal/repository"
)

// CatalogHandler serves the public plan catalog: browsing, plan
// detail and availability.  Only published plans are visible here.
type CatalogHandler struct {
	Plans   *repository.PlanRepo
	Hosts   *repository.HostRepo
	Booking *booking.Service
}

func NewCatalogHandler(plans *repository.PlanRepo, hosts *repository.HostRepo, svc *booking.Service) *CatalogHandler {
	if plans == nil || hosts == nil || svc == nil {
		panic("nil dependency passed to NewCatalogHandler")
	}
	return &CatalogHandler{Plans: plans, Hosts: hosts, Booking: svc}
}

// planView is the public JSON shape of a plan.  Prices are exposed
// both raw (pesos) and formatted for direct display.
type planView struct {
	ID           uint64               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description,omitempty"`
	ShortDesc    string               `json:"short_description,omitempty"`
	Sala         string               `json:"sala"`
	Location     string               `json:"location"`
	PriceCLP     int64                `json:"price_clp"`
	PriceDisplay string               `json:"price_display"`
	Capacity     uint32               `json:"capacity"`
	TimeSlots    []model.TimeSlot     `json:"time_slots,omitempty"`
	Schedule     []model.ScheduleSlot `json:"schedule,omitempty"`
	DaysOfWeek   []string             `json:"days_of_week,omitempty"`
	MediaURLs    []string             `json:"media_urls,omitempty"`
	Badges       []string             `json:"badges,omitempty"`
	DurationMin  *uint32              `json:"duration_minutes,omitempty"`
	IsNominal    bool                 `json:"is_nominal"`
	Featured     bool                 `json:"featured"`
	DropNumber   uint64               `json:"drop_number"`
	PublishedAt  *time.Time           `json:"published_at,omitempty"`
}

func toPlanView(p *model.Plan) planView {
	return planView{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		ShortDesc:    p.ShortDesc,
		Sala:         p.Sala,
		Location:     p.Location,
		PriceCLP:     p.PriceCLP,
		PriceDisplay: pricing.FormatCLP(p.PriceCLP),
		Capacity:     p.Capacity,
		TimeSlots:    p.TimeSlots,
		Schedule:     p.Schedule,
		DaysOfWeek:   p.DaysOfWeek,
		MediaURLs:    p.MediaURLs,
		Badges:       p.Badges,
		DurationMin:  p.DurationMin,
		IsNominal:    p.IsNominal,
		Featured:     p.Featured,
		DropNumber:   p.DropNumber,
		PublishedAt:  p.PublishedAt,
	}
}

// ListPlans returns published plans, newest drop first.  Optional
// ?sala= and ?location= filters narrow the catalog; ?featured=1
// returns the landing-page selection.
func (h *CatalogHandler) ListPlans(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		plans []*model.Plan
		err   error
	)
	if c.QueryParam("featured") == "1" {
		plans, err = h.Plans.ListFeatured(ctx)
	} else {
		plans, err = h.Plans.ListPublished(ctx, c.QueryParam("sala"), c.QueryParam("location"))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]planView, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanView(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"plans": out})
}

// GetPlan returns one published plan.  Drafts, paused and archived
// plans are indistinguishable from missing ones.
func (h *CatalogHandler) GetPlan(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
	}
	p, err := h.Plans.GetByID(c.Request().Context(), id)
	if err != nil || p.Status != model.PlanPublished {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
	}
	return c.JSON(http.StatusOK, toPlanView(p))
}

// Availability reports the remaining capacity for a plan on a given
// date (and time slot, when the plan defines slots).
func (h *CatalogHandler) Availability(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
	}
	date := c.QueryParam("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD", "field": "date"})
	}
	slot := c.QueryParam("time_slot")

	remaining, err := h.Booking.Remaining(c.Request().Context(), id, date, slot)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingClosed):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
		case errors.Is(err, booking.ErrInvalidSlot):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time slot", "field": "time_slot"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"plan_id":   id,
		"date":      date,
		"time_slot": slot,
		"remaining": remaining,
		"available": remaining > 0,
	})
}

// GetHost returns a host's public profile by slug, with its published
// plans.
func (h *CatalogHandler) GetHost(c echo.Context) error {
	host, err := h.Hosts.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil || host.Status != model.HostActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
	}
	plans, err := h.Plans.ListByHost(c.Request().Context(), host.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	published := make([]planView, 0, len(plans))
	for _, p := range plans {
		if p.Status == model.PlanPublished {
			published = append(published, toPlanView(p))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"host": echo.Map{
			"business_name": host.BusinessName,
			"slug":          host.Slug,
			"tagline":       host.TagLine,
			"location":      host.Location,
			"instagram":     host.Instagram,
			"website":       host.Website,
		},
		"plans": published,
	})
}
