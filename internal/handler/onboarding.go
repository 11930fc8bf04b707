package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thelistcl/marketplace-api/internal/onboarding"
	"github.com/thelistcl/marketplace-api/internal/repository"
	"github.com/thelistcl/marketplace-api/internal/utils"
)

// OnboardingHandler serves the public invite-link pages: token
// validation for the landing page and the completion form.
type OnboardingHandler struct {
	Tokens     *onboarding.Service
	Invites    *repository.InviteRepo
	BcryptCost int
}

func NewOnboardingHandler(tokens *onboarding.Service, invites *repository.InviteRepo, bcryptCost int) *OnboardingHandler {
	if tokens == nil || invites == nil {
		panic("nil dependency passed to NewOnboardingHandler")
	}
	return &OnboardingHandler{Tokens: tokens, Invites: invites, BcryptCost: bcryptCost}
}

// Validate checks an invite token so the onboarding page can render
// before the applicant fills anything in.
func (h *OnboardingHandler) Validate(c echo.Context) error {
	token := strings.TrimSpace(c.QueryParam("token"))
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required", "field": "token"})
	}
	inv, err := h.Tokens.Validate(c.Request().Context(), token)
	if err != nil {
		return inviteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid":      true,
		"email":      inv.Email,
		"type":       inv.ApplicationType,
		"expires_at": inv.ExpiresAt,
	})
}

type completeOnboardingReq struct {
	Token         string  `json:"token"`
	Password      string  `json:"password"`
	BusinessName  string  `json:"business_name"`
	TagLine       *string `json:"tag_line"`
	Phone         *string `json:"phone"`
	Instagram     *string `json:"instagram"`
	Website       *string `json:"website"`
	LegalName     string  `json:"legal_name"`
	RUT           string  `json:"rut"`
	LegalRepName  string  `json:"legal_rep_name"`
	LegalRepRUT   string  `json:"legal_rep_rut"`
	BankName      string  `json:"bank_name"`
	BankAccount   string  `json:"bank_account"`
	BankType      string  `json:"bank_type"`
	TermsAccepted bool    `json:"terms_accepted"`
}

func (r *completeOnboardingReq) validate() (string, bool) {
	switch {
	case strings.TrimSpace(r.Token) == "":
		return "token", false
	case len(r.Password) < 8:
		return "password", false
	case strings.TrimSpace(r.LegalName) == "":
		return "legal_name", false
	case strings.TrimSpace(r.RUT) == "":
		return "rut", false
	case strings.TrimSpace(r.LegalRepName) == "":
		return "legal_rep_name", false
	case strings.TrimSpace(r.LegalRepRUT) == "":
		return "legal_rep_rut", false
	case strings.TrimSpace(r.BankName) == "":
		return "bank_name", false
	case strings.TrimSpace(r.BankAccount) == "":
		return "bank_account", false
	case strings.TrimSpace(r.BankType) == "":
		return "bank_type", false
	}
	return "", true
}

// Complete finishes onboarding: sets the account password, activates
// the host with its legal and banking profile, and burns the invite.
// Everything commits or nothing does, so a failed attempt leaves the
// link usable for a retry.
func (h *OnboardingHandler) Complete(c echo.Context) error {
	var req completeOnboardingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if field, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing or invalid field", "field": field})
	}
	if !req.TermsAccepted {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "terms must be accepted", "field": "terms_accepted"})
	}

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	host, err := h.Invites.CompleteOnboarding(c.Request().Context(), strings.TrimSpace(req.Token), repository.OnboardingCompletion{
		PasswordHash:  hash,
		BusinessName:  strings.TrimSpace(req.BusinessName),
		TagLine:       req.TagLine,
		Phone:         req.Phone,
		Instagram:     req.Instagram,
		Website:       req.Website,
		LegalName:     strings.TrimSpace(req.LegalName),
		RUT:           strings.TrimSpace(req.RUT),
		LegalRepName:  strings.TrimSpace(req.LegalRepName),
		LegalRepRUT:   strings.TrimSpace(req.LegalRepRUT),
		BankName:      strings.TrimSpace(req.BankName),
		BankAccount:   strings.TrimSpace(req.BankAccount),
		BankType:      strings.TrimSpace(req.BankType),
		TermsAccepted: true,
	})
	if err != nil {
		return inviteError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"host_id": host.ID,
		"slug":    host.Slug,
		"status":  host.Status,
	})
}
