package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelistcl/marketplace-api/internal/booking"
	"github.com/thelistcl/marketplace-api/internal/handler"
	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/storage/memory"
)

// refReader resolves public references against a fixed set of
// reservations.
type refReader map[string]*model.Reservation

func (r refReader) GetByReference(_ context.Context, ref string) (*model.Reservation, error) {
	if res, ok := r[ref]; ok {
		return res, nil
	}
	return nil, booking.ErrReservationNotFound
}

func cancelContext(e *echo.Echo, ref string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("reference")
	c.SetParamValues(ref)
	return c, rec
}

// Holding the reference is enough to cancel: checkout is anonymous,
// so the buyer manages their reservation the same way they look it up.
func TestCancelReservationByReference(t *testing.T) {
	store := memory.New()
	store.PutPlan(&model.Plan{
		ID:       1,
		HostID:   1,
		Title:    "Cena a ciegas",
		Sala:     "La Buena Mesa",
		PriceCLP: 45000,
		Capacity: 8,
		Status:   model.PlanPublished,
	})
	svc := booking.NewService(store)
	res, err := svc.Create(context.Background(), booking.CreateRequest{
		PlanID:    1,
		Date:      "2030-06-15",
		NumPeople: 3,
		Contact: booking.Contact{
			Name:  "Ana Rojas",
			Email: "ana@example.com",
			Phone: "+56 9 1234 5678",
			RUT:   "12.345.678-5",
		},
	})
	require.NoError(t, err)

	h := handler.NewCheckoutHandler(svc, refReader{res.Reference: res})
	e := echo.New()

	c, rec := cancelContext(e, res.Reference)
	require.NoError(t, h.CancelReservation(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(model.ReservationCancelled), body["status"])

	// The freed units are bookable again.
	left, err := svc.Remaining(context.Background(), 1, "2030-06-15", "")
	require.NoError(t, err)
	assert.Equal(t, uint32(8), left)

	// A second cancel is a state conflict, not a silent no-op.
	c, rec = cancelContext(e, res.Reference)
	require.NoError(t, h.CancelReservation(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown references 404 without leaking whether one ever existed.
	c, rec = cancelContext(e, "nope")
	require.NoError(t, h.CancelReservation(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
