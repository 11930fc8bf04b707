package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/thelistcl/marketplace-api/internal/booking"
	"github.com/thelistcl/marketplace-api/internal/onboarding"
	"github.com/thelistcl/marketplace-api/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  JWT numeric claims come back as float64 after parsing.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// bookingError translates booking service failures into HTTP
// responses.  Validation problems are 400 with the offending field
// when known; state conflicts are 409.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrBookingClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking closed"})
	case errors.Is(err, booking.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "not enough capacity"})
	case errors.Is(err, booking.ErrInvalidStateTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid state transition"})
	case errors.Is(err, booking.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, booking.ErrInvalidSlot),
		errors.Is(err, booking.ErrInvalidDate),
		errors.Is(err, booking.ErrInvalidQuantity),
		errors.Is(err, booking.ErrIncompleteContact),
		errors.Is(err, booking.ErrIncompleteTicketData):
		body := echo.Map{"error": err.Error()}
		if f := booking.FieldOf(err); f != "" {
			body["field"] = f
		}
		return c.JSON(http.StatusBadRequest, body)
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// inviteError translates onboarding token failures.  Expired tokens
// get 410 so the frontend can offer a "request a new link" path
// distinct from a plain bad token.
func inviteError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, onboarding.ErrTokenNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "token not found"})
	case errors.Is(err, onboarding.ErrTokenAlreadyUsed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "token already used"})
	case errors.Is(err, onboarding.ErrTokenExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": "token expired"})
	case errors.Is(err, onboarding.ErrInviteNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invite not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// reviewError translates application review failures.
func reviewError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrApplicationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "application already reviewed"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
