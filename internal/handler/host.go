package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thelistcl/marketplace-api/internal/booking"
	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/repository"
)

// HostHandler serves the host dashboard: own plans, reservations,
// applications and change requests.  Every route resolves the calling
// user's host record first and checks ownership before touching a
// resource.
type HostHandler struct {
	Hosts        *repository.HostRepo
	Plans        *repository.PlanRepo
	Apps         *repository.ApplicationRepo
	Reservations *repository.ReservationRepo
	Messages     *repository.MessageRepo
	Booking      *booking.Service
}

func NewHostHandler(hosts *repository.HostRepo, plans *repository.PlanRepo, apps *repository.ApplicationRepo,
	res *repository.ReservationRepo, msgs *repository.MessageRepo, svc *booking.Service) *HostHandler {
	if hosts == nil || plans == nil || apps == nil || res == nil || msgs == nil || svc == nil {
		panic("nil dependency passed to NewHostHandler")
	}
	return &HostHandler{Hosts: hosts, Plans: plans, Apps: apps, Reservations: res, Messages: msgs, Booking: svc}
}

// callerHost resolves the authenticated user's host record.
func (h *HostHandler) callerHost(c echo.Context) (*model.Host, error) {
	uid, err := getUserID(c)
	if err != nil {
		return nil, err
	}
	return h.Hosts.GetByUserID(c.Request().Context(), uid)
}

// ownPlan loads a plan and verifies the caller's host owns it.
func (h *HostHandler) ownPlan(c echo.Context, host *model.Host) (*model.Plan, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, repository.ErrPlanNotFound
	}
	p, err := h.Plans.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if p.HostID != host.ID {
		return nil, repository.ErrForbidden
	}
	return p, nil
}

// Me returns the host account with its profile, when onboarded.
func (h *HostHandler) Me(c echo.Context) error {
	host, err := h.callerHost(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
	}
	out := echo.Map{
		"id":            host.ID,
		"business_name": host.BusinessName,
		"slug":          host.Slug,
		"tagline":       host.TagLine,
		"location":      host.Location,
		"phone":         host.Phone,
		"instagram":     host.Instagram,
		"website":       host.Website,
		"status":        host.Status,
	}
	if profile, err := h.Hosts.GetProfile(c.Request().Context(), host.ID); err == nil {
		out["onboarded"] = profile.Onboarded
	}
	return c.JSON(http.StatusOK, out)
}

// MyPlans lists all of the host's plans, drafts included.
func (h *HostHandler) MyPlans(c echo.Context) error {
	host, err := h.callerHost(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
	}
	plans, err := h.Plans.ListByHost(c.Request().Context(), host.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(plans))
	for _, p := range plans {
		out = append(out, echo.Map{
			"id":           p.ID,
			"title":        p.Title,
			"sala":         p.Sala,
			"price_clp":    p.PriceCLP,
			"capacity":     p.Capacity,
			"drop_number":  p.DropNumber,
			"status":       p.Status,
			"published_at": p.PublishedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"plans": out})
}

// MyApplications lists the host's submitted applications with their
// review outcomes.
func (h *HostHandler) MyApplications(c echo.Context) error {
	host, err := h.callerHost(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
	}
	apps, err := h.Apps.ListByHost(c.Request().Context(), host.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": apps2json(apps)})
}

type planStatusReq struct {
	Status string `json:"status"`
}

// SetPlanStatus lets a host publish, pause, resume or archive their
// own plan.  The transition table still applies, so e.g. an archived
// plan cannot come back.
func (h *HostHandler) SetPlanStatus(c echo.Context) error {
	host, err := h.callerHost(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
	}
	p, err := h.ownPlan(c, host)
	if err != nil {
		return planAccessError(c, err)
	}
	var req planStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	next := model.PlanStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !next.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status", "field": "status"})
	}
	updated, err := h.Plans.SetStatus(c.Request().Context(), p.ID, next)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
		}
		if errors.Is(err, repository.ErrPlanUnpriced) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "plan has no price"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": updated.ID, "status": updated.Status})
}

type requestChangeReq struct {
	Message string `json:"message"`
}

// RequestChange files a change request about one of the host's plans
// for the admin team.  Plan edits go through review, never directly.
func (h *HostHandler) RequestChange(c echo.Context) error {
	host, err := h.callerHost(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
	}
	p, err := h.ownPlan(c, host)
	if err != nil {
		return planAccessError(c, err)
	}
	var req requestChangeReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message required", "field": "message"})
	}
	msg := &model.Message{
		HostID:   host.ID,
		SenderID: host.UserID,
		Content:  "[plan " + p.Title + "] " + strings.TrimSpace(req.Message),
	}
	if err := h.Messages.Create(c.Request().Context(), msg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create message failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": msg.ID})
}

// MyReservations lists reservations across all of the host's plans.
func (h *HostHandler) MyReservations(c echo.Context) error {
	host, err := h.callerHost(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
	}
	list, err := h.Reservations.ListForHost(c.Request().Context(), host.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": reservations2json(list)})
}

// PlanReservations lists one plan's reservations, optionally for a
// single ?date=.
func (h *HostHandler) PlanReservations(c echo.Context) error {
	host, err := h.callerHost(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
	}
	p, err := h.ownPlan(c, host)
	if err != nil {
		return planAccessError(c, err)
	}
	list, err := h.Reservations.ListByPlan(c.Request().Context(), p.ID, c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": reservations2json(list)})
}

// CompleteReservation marks a reservation on the host's plan as
// honored, once its date has arrived.
func (h *HostHandler) CompleteReservation(c echo.Context) error {
	return h.transitionReservation(c, h.Booking.Complete)
}

// CancelReservation cancels a reservation on the host's plan,
// releasing its capacity.
func (h *HostHandler) CancelReservation(c echo.Context) error {
	return h.transitionReservation(c, h.Booking.Cancel)
}

func (h *HostHandler) transitionReservation(c echo.Context, op func(ctx context.Context, id uint64) error) error {
	host, err := h.callerHost(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "host not found"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx := c.Request().Context()
	res, err := h.Reservations.ReservationByID(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	p, err := h.Plans.GetByID(ctx, res.PlanID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.HostID != host.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := op(ctx, id); err != nil {
		return bookingError(c, err)
	}
	updated, err := h.Reservations.ReservationByID(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": updated.ID, "status": updated.Status})
}

// planAccessError maps plan lookup/ownership failures.
func planAccessError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrPlanNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
}

func apps2json(apps []*model.Application) []echo.Map {
	out := make([]echo.Map, 0, len(apps))
	for _, a := range apps {
		out = append(out, echo.Map{
			"id":              a.ID,
			"experience_name": a.ExperienceName,
			"location":        a.Location,
			"daily_capacity":  a.DailyCapacity,
			"price_clp":       a.PriceCLP,
			"status":          a.Status,
			"admin_message":   a.AdminMessage,
			"reviewed_at":     a.ReviewedAt,
			"created_at":      a.CreatedAt,
		})
	}
	return out
}

func reservations2json(list []*model.Reservation) []reservationView {
	out := make([]reservationView, 0, len(list))
	for _, r := range list {
		out = append(out, toReservationView(r))
	}
	return out
}
