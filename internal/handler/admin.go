package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/onboarding"
	"github.com/thelistcl/marketplace-api/internal/repository"
)

// AdminHandler serves the curation endpoints: application review,
// plan lifecycle, invites and the change-request inbox.
type AdminHandler struct {
	Apps     *repository.ApplicationRepo
	Public   *repository.PublicApplicationRepo
	Plans    *repository.PlanRepo
	Invites  *repository.InviteRepo
	Messages *repository.MessageRepo
	Tokens   *onboarding.Service
}

func NewAdminHandler(apps *repository.ApplicationRepo, pub *repository.PublicApplicationRepo,
	plans *repository.PlanRepo, invites *repository.InviteRepo, msgs *repository.MessageRepo,
	tokens *onboarding.Service) *AdminHandler {
	if apps == nil || pub == nil || plans == nil || invites == nil || msgs == nil || tokens == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Apps: apps, Public: pub, Plans: plans, Invites: invites, Messages: msgs, Tokens: tokens}
}

func applicationDetail(a *model.Application) echo.Map {
	return echo.Map{
		"id":                 a.ID,
		"host_id":            a.HostID,
		"experience_name":    a.ExperienceName,
		"location":           a.Location,
		"description":        a.Description,
		"commercial_contact": a.CommercialContact,
		"daily_capacity":     a.DailyCapacity,
		"price_clp":          a.PriceCLP,
		"schedule":           a.Schedule,
		"days_of_week":       a.DaysOfWeek,
		"media_urls":         a.MediaURLs,
		"status":             a.Status,
		"admin_comment":      a.AdminComment,
		"admin_message":      a.AdminMessage,
		"reviewed_by":        a.ReviewedBy,
		"reviewed_at":        a.ReviewedAt,
		"created_at":         a.CreatedAt,
	}
}

func publicApplicationDetail(a *model.PublicApplication) echo.Map {
	return echo.Map{
		"id":                    a.ID,
		"experience_name":       a.ExperienceName,
		"email":                 a.Email,
		"phone":                 a.Phone,
		"host_name":             a.HostName,
		"location":              a.Location,
		"description":           a.Description,
		"commercial_contact":    a.CommercialContact,
		"daily_capacity":        a.DailyCapacity,
		"price_clp":             a.PriceCLP,
		"schedule":              a.Schedule,
		"days_of_week":          a.DaysOfWeek,
		"media_urls":            a.MediaURLs,
		"exclusivity_confirmed": a.ExclusivityConfirmed,
		"status":                a.Status,
		"admin_comment":         a.AdminComment,
		"reviewed_by":           a.ReviewedBy,
		"reviewed_at":           a.ReviewedAt,
		"created_at":            a.CreatedAt,
	}
}

// ListApplications returns internal applications, optionally filtered
// by ?status=.
func (h *AdminHandler) ListApplications(c echo.Context) error {
	status := model.ApplicationStatus(strings.ToLower(c.QueryParam("status")))
	apps, err := h.Apps.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(apps))
	for _, a := range apps {
		out = append(out, applicationDetail(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": out})
}

// GetApplication returns one internal application in full.
func (h *AdminHandler) GetApplication(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	app, err := h.Apps.GetByID(c.Request().Context(), id)
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, applicationDetail(app))
}

// GetPublicApplication returns one wizard submission in full.
func (h *AdminHandler) GetPublicApplication(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	app, err := h.Public.GetByID(c.Request().Context(), id)
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, publicApplicationDetail(app))
}

type reviewReq struct {
	Sala    string `json:"sala"`
	Comment string `json:"comment"`
	Message string `json:"message"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ApproveApplication accepts an internal application, activating its
// host and instantiating a draft plan with the next drop number.  The
// reviewer names the sala the plan will run in.
func (h *AdminHandler) ApproveApplication(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reviewReq
	_ = c.Bind(&req)
	sala := strings.TrimSpace(req.Sala)
	if sala == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sala is required", "field": "sala"})
	}

	plan, err := h.Apps.Approve(c.Request().Context(), id, uid, sala, optional(req.Comment))
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"application_id": id,
		"status":         model.ApplicationApproved,
		"plan": echo.Map{
			"id":          plan.ID,
			"title":       plan.Title,
			"drop_number": plan.DropNumber,
			"status":      plan.Status,
		},
	})
}

// RejectApplication closes an internal application with a reviewer
// comment and an optional message for the applicant.
func (h *AdminHandler) RejectApplication(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reviewReq
	_ = c.Bind(&req)

	if err := h.Apps.Reject(c.Request().Context(), id, uid, optional(req.Comment), optional(req.Message)); err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"application_id": id, "status": model.ApplicationRejected})
}

// ListPublicApplications returns wizard submissions, optionally
// filtered by ?status=.
func (h *AdminHandler) ListPublicApplications(c echo.Context) error {
	status := model.ApplicationStatus(strings.ToLower(c.QueryParam("status")))
	apps, err := h.Public.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(apps))
	for _, a := range apps {
		out = append(out, publicApplicationDetail(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": out})
}

// ApprovePublicApplication accepts a wizard submission: host, draft
// plan and an inactive account are provisioned for the applicant, and
// a single-use onboarding invite is issued against the account.  The
// invite token is returned so the operator can deliver the link.
func (h *AdminHandler) ApprovePublicApplication(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reviewReq
	_ = c.Bind(&req)
	sala := strings.TrimSpace(req.Sala)
	if sala == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sala is required", "field": "sala"})
	}

	ctx := c.Request().Context()
	if _, err := h.Public.Approve(ctx, id, uid, sala, optional(req.Comment)); err != nil {
		return reviewError(c, err)
	}
	app, err := h.Public.GetByID(ctx, id)
	if err != nil {
		return reviewError(c, err)
	}
	// The invite is issued after the approval commits.  If issuance
	// fails here the application stays approved without an invite;
	// an operator recovers with POST /v1/admin/invites.
	inv, err := h.Tokens.Issue(ctx, id, model.InvitePublic, app.Email, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue invite failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"application_id": id,
		"status":         model.ApplicationApproved,
		"invite": echo.Map{
			"id":         inv.ID,
			"token":      inv.Token,
			"email":      inv.Email,
			"expires_at": inv.ExpiresAt,
		},
	})
}

// RejectPublicApplication closes a wizard submission.
func (h *AdminHandler) RejectPublicApplication(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reviewReq
	_ = c.Bind(&req)

	if err := h.Public.Reject(c.Request().Context(), id, uid, optional(req.Comment)); err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"application_id": id, "status": model.ApplicationRejected})
}

// SetPlanStatus moves a plan through its lifecycle with the full
// transition table: publish drafts, pause, resume, archive.
func (h *AdminHandler) SetPlanStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
	}
	var req planStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	next := model.PlanStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !next.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status", "field": "status"})
	}
	updated, err := h.Plans.SetStatus(c.Request().Context(), id, next)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPlanNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
		case errors.Is(err, repository.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
		case errors.Is(err, repository.ErrPlanUnpriced):
			return c.JSON(http.StatusConflict, echo.Map{"error": "plan has no price"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":           updated.ID,
		"status":       updated.Status,
		"published_at": updated.PublishedAt,
	})
}

type featuredReq struct {
	Featured bool `json:"featured"`
}

// SetPlanFeatured toggles a plan's landing-page flag.
func (h *AdminHandler) SetPlanFeatured(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
	}
	var req featuredReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Plans.SetFeatured(c.Request().Context(), id, req.Featured); err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "featured": req.Featured})
}

// ListInvites returns every onboarding invite, newest first.
func (h *AdminHandler) ListInvites(c echo.Context) error {
	invites, err := h.Invites.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(invites))
	for _, inv := range invites {
		out = append(out, echo.Map{
			"id":             inv.ID,
			"application_id": inv.ApplicationID,
			"type":           inv.ApplicationType,
			"email":          inv.Email,
			"token":          inv.Token,
			"expires_at":     inv.ExpiresAt,
			"used_at":        inv.UsedAt,
			"created_by":     inv.CreatedBy,
			"created_at":     inv.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"invites": out})
}

type issueInviteReq struct {
	ApplicationID uint64 `json:"application_id"`
	Type          string `json:"type"` // internal | public
	Email         string `json:"email"`
}

// IssueInvite creates an onboarding invite for an approved
// application.
func (h *AdminHandler) IssueInvite(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req issueInviteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	typ := model.InviteType(strings.ToLower(strings.TrimSpace(req.Type)))
	if typ != model.InviteInternal && typ != model.InvitePublic {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be internal or public", "field": "type"})
	}
	if req.ApplicationID == 0 || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "application_id and email required"})
	}
	inv, err := h.Tokens.Issue(c.Request().Context(), req.ApplicationID, typ, strings.ToLower(strings.TrimSpace(req.Email)), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue invite failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         inv.ID,
		"token":      inv.Token,
		"email":      inv.Email,
		"expires_at": inv.ExpiresAt,
	})
}

// RegenerateInvite rotates an invite: the old token stops validating
// and a replacement with a fresh expiry window is returned.
func (h *AdminHandler) RegenerateInvite(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invite id"})
	}
	inv, err := h.Tokens.Regenerate(c.Request().Context(), id)
	if err != nil {
		return inviteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":         inv.ID,
		"token":      inv.Token,
		"email":      inv.Email,
		"expires_at": inv.ExpiresAt,
	})
}

// ListMessages returns the unread change-request inbox.
func (h *AdminHandler) ListMessages(c echo.Context) error {
	msgs, err := h.Messages.ListUnread(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, echo.Map{
			"id":         m.ID,
			"host_id":    m.HostID,
			"sender_id":  m.SenderID,
			"content":    m.Content,
			"read":       m.Read,
			"created_at": m.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": out})
}

// MarkMessageRead flags a change request as handled.
func (h *AdminHandler) MarkMessageRead(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}
	if err := h.Messages.MarkRead(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "read": true})
}
