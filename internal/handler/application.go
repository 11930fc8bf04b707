package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/repository"
)

// ApplicationHandler receives host applications: the authenticated
// form for logged-in users and the public no-account wizard.
type ApplicationHandler struct {
	Apps   *repository.ApplicationRepo
	Public *repository.PublicApplicationRepo
}

func NewApplicationHandler(apps *repository.ApplicationRepo, pub *repository.PublicApplicationRepo) *ApplicationHandler {
	if apps == nil || pub == nil {
		panic("nil repository passed to NewApplicationHandler")
	}
	return &ApplicationHandler{Apps: apps, Public: pub}
}

type applicationReq struct {
	ExperienceName    string               `json:"experience_name"`
	Location          string               `json:"location"`
	Description       string               `json:"description"`
	CommercialContact string               `json:"commercial_contact"`
	DailyCapacity     uint32               `json:"daily_capacity"`
	PriceCLP          int64                `json:"price_clp"`
	Schedule          []model.ScheduleSlot `json:"schedule"`
	DaysOfWeek        []string             `json:"days_of_week"`
	MediaURLs         []string             `json:"media_urls"`
}

func (r *applicationReq) validate() (string, bool) {
	switch {
	case strings.TrimSpace(r.ExperienceName) == "":
		return "experience_name", false
	case strings.TrimSpace(r.Location) == "":
		return "location", false
	case r.DailyCapacity == 0:
		return "daily_capacity", false
	case r.PriceCLP <= 0:
		return "price_clp", false
	}
	return "", true
}

// Submit files an application for the authenticated user.  The first
// application creates their host record and promotes their role.
func (h *ApplicationHandler) Submit(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req applicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if field, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing or invalid field", "field": field})
	}

	app := &model.Application{
		ExperienceName:    strings.TrimSpace(req.ExperienceName),
		Location:          strings.TrimSpace(req.Location),
		Description:       strings.TrimSpace(req.Description),
		CommercialContact: strings.TrimSpace(req.CommercialContact),
		DailyCapacity:     req.DailyCapacity,
		PriceCLP:          req.PriceCLP,
		Schedule:          req.Schedule,
		DaysOfWeek:        req.DaysOfWeek,
		MediaURLs:         req.MediaURLs,
	}
	if err := h.Apps.Create(c.Request().Context(), uid, app); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create application failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":     app.ID,
		"status": app.Status,
	})
}

type publicApplicationReq struct {
	applicationReq
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	HostName             string `json:"host_name"`
	ExclusivityConfirmed bool   `json:"exclusivity_confirmed"`
}

// SubmitPublic files an application from the open wizard.  No account
// is required; the applicant is reachable by email and phone.
func (h *ApplicationHandler) SubmitPublic(c echo.Context) error {
	var req publicApplicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if field, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing or invalid field", "field": field})
	}
	if !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing or invalid field", "field": "email"})
	}
	if strings.TrimSpace(req.Phone) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing or invalid field", "field": "phone"})
	}

	app := &model.PublicApplication{
		ExperienceName:       strings.TrimSpace(req.ExperienceName),
		Email:                req.Email,
		Phone:                strings.TrimSpace(req.Phone),
		HostName:             strings.TrimSpace(req.HostName),
		Location:             strings.TrimSpace(req.Location),
		Description:          strings.TrimSpace(req.Description),
		CommercialContact:    strings.TrimSpace(req.CommercialContact),
		DailyCapacity:        req.DailyCapacity,
		PriceCLP:             req.PriceCLP,
		Schedule:             req.Schedule,
		DaysOfWeek:           req.DaysOfWeek,
		MediaURLs:            req.MediaURLs,
		ExclusivityConfirmed: req.ExclusivityConfirmed,
	}
	if err := h.Public.Create(c.Request().Context(), app); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create application failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":     app.ID,
		"status": app.Status,
	})
}
