package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thelistcl/marketplace-api/internal/booking"
	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/pricing"
	"github.com/thelistcl/marketplace-api/internal/queue"
	queue_publisher "github.com/thelistcl/marketplace-api/internal/service"
)

// CheckoutHandler exposes reservation creation and lookup.  Checkout
// is anonymous by design: buyers identify themselves with the contact
// block, not an account.
type CheckoutHandler struct {
	Booking      *booking.Service
	Reservations reservationReader
}

// reservationReader is the slice of the reservation repository the
// checkout endpoints read from.
type reservationReader interface {
	GetByReference(ctx context.Context, ref string) (*model.Reservation, error)
}

func NewCheckoutHandler(svc *booking.Service, reader reservationReader) *CheckoutHandler {
	if svc == nil || reader == nil {
		panic("nil dependency passed to NewCheckoutHandler")
	}
	return &CheckoutHandler{Booking: svc, Reservations: reader}
}

type contactReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	RUT   string `json:"rut"`
}

type createReservationReq struct {
	NumPeople     uint32               `json:"num_people"`
	Date          string               `json:"date"`
	TimeSlot      string               `json:"time_slot"`
	Contact       contactReq           `json:"contact"`
	TicketHolders []model.TicketHolder `json:"ticket_holders"`
	QuotedTotal   int64                `json:"quoted_total_clp"`
}

type reservationView struct {
	ID            uint64               `json:"id"`
	Reference     string               `json:"reference"`
	PlanID        uint64               `json:"plan_id"`
	NumPeople     uint32               `json:"num_people"`
	Date          string               `json:"date"`
	TimeSlot      string               `json:"time_slot,omitempty"`
	ContactName   string               `json:"contact_name"`
	ContactEmail  string               `json:"contact_email"`
	TicketHolders []model.TicketHolder `json:"ticket_holders,omitempty"`
	SubtotalCLP   int64                `json:"subtotal_clp"`
	ServiceFeeCLP int64                `json:"service_fee_clp"`
	TotalCLP      int64                `json:"total_clp"`
	TotalDisplay  string               `json:"total_display"`
	Status        string               `json:"status"`
	PaymentStatus string               `json:"payment_status"`
	CreatedAt     time.Time            `json:"created_at"`
}

func toReservationView(r *model.Reservation) reservationView {
	return reservationView{
		ID:            r.ID,
		Reference:     r.Reference,
		PlanID:        r.PlanID,
		NumPeople:     r.NumPeople,
		Date:          r.Date,
		TimeSlot:      r.TimeSlot,
		ContactName:   r.ContactName,
		ContactEmail:  r.ContactEmail,
		TicketHolders: r.TicketHolders,
		SubtotalCLP:   r.SubtotalCLP,
		ServiceFeeCLP: r.ServiceFeeCLP,
		TotalCLP:      r.TotalCLP,
		TotalDisplay:  pricing.FormatCLP(r.TotalCLP),
		Status:        string(r.Status),
		PaymentStatus: string(r.PaymentStatus),
		CreatedAt:     r.CreatedAt,
	}
}

// CreateReservation books capacity on a plan.  Pricing is computed
// server-side from the stored plan price; a quoted total supplied by
// the client is advisory only.  On success a reservation.created
// event is published fire-and-forget.
func (h *CheckoutHandler) CreateReservation(c echo.Context) error {
	planID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	res, err := h.Booking.Create(c.Request().Context(), booking.CreateRequest{
		PlanID:    planID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		NumPeople: req.NumPeople,
		Contact: booking.Contact{
			Name:  req.Contact.Name,
			Email: req.Contact.Email,
			Phone: req.Contact.Phone,
			RUT:   req.Contact.RUT,
		},
		TicketHolders: req.TicketHolders,
		QuotedTotal:   req.QuotedTotal,
	})
	if err != nil {
		return bookingError(c, err)
	}

	// Notify downstream consumers; failures must not fail the checkout.
	go func(res *model.Reservation) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ev := queue.ReservationCreatedEvent{
			ReservationID: res.ID,
			Reference:     res.Reference,
			PlanID:        res.PlanID,
			Date:          res.Date,
			TimeSlot:      res.TimeSlot,
			NumPeople:     res.NumPeople,
			ContactName:   res.ContactName,
			ContactEmail:  res.ContactEmail,
			TotalCLP:      res.TotalCLP,
			CreatedAt:     res.CreatedAt.UTC().Format(time.RFC3339),
		}
		if p, perr := h.Booking.Plan(ctx, res.PlanID); perr == nil {
			ev.PlanTitle = p.Title
			ev.HostID = p.HostID
		}
		_ = queue_publisher.PublishReservationCreated(ctx, ev)
	}(res)

	return c.JSON(http.StatusCreated, toReservationView(res))
}

// GetReservation looks up a reservation by its public reference.
func (h *CheckoutHandler) GetReservation(c echo.Context) error {
	res, err := h.Reservations.GetByReference(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationView(res))
}

// CancelReservation cancels a reservation by its public reference,
// releasing its units back into availability.  Checkout is anonymous,
// so possession of the reference is the proof of ownership, the same
// as for lookup.
func (h *CheckoutHandler) CancelReservation(c echo.Context) error {
	ctx := c.Request().Context()
	res, err := h.Reservations.GetByReference(ctx, c.Param("reference"))
	if err != nil {
		return bookingError(c, err)
	}
	if err := h.Booking.Cancel(ctx, res.ID); err != nil {
		return bookingError(c, err)
	}
	res.Status = model.ReservationCancelled
	return c.JSON(http.StatusOK, toReservationView(res))
}
