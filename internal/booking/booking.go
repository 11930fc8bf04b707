// Package booking implements the reservation core: server-side price
// computation, request validation and the capacity check that must be
// serialized against concurrent buyers.  The package owns no SQL; it
// talks to a Store whose Reserve method provides the per-slot
// serialization point.
package booking

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/pricing"
)

// SlotKey identifies the contended resource: one plan on one date in
// one time slot.  TimeSlot is "" for plans without slots.  Bookings
// for different keys never contend.
type SlotKey struct {
	PlanID   uint64
	Date     string
	TimeSlot string
}

// Store is the storage contract the service needs.  Reserve must run
// fn while holding exclusive access to the key so that the capacity
// read fn receives and the insert of the returned reservation are a
// single atomic step; two concurrent calls for the same key must be
// serialized by the implementation (row lock, per-key mutex, ...).
type Store interface {
	PlanByID(ctx context.Context, planID uint64) (*model.Plan, error)
	Reserve(ctx context.Context, key SlotKey, fn func(booked uint32) (*model.Reservation, error)) (*model.Reservation, error)
	ActivePeople(ctx context.Context, key SlotKey) (uint32, error)
	ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error)
	SetReservationStatus(ctx context.Context, id uint64, status model.ReservationStatus) error
}

// Contact is the buyer contact block required on every reservation.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	RUT   string `json:"rut"`
}

// CreateRequest is a checkout submission.  QuotedTotal is the total
// the client displayed; it is advisory only and never trusted for
// pricing.
type CreateRequest struct {
	PlanID        uint64
	Date          string
	TimeSlot      string
	NumPeople     uint32
	Contact       Contact
	TicketHolders []model.TicketHolder
	QuotedTotal   int64
}

// Service is the reservation writer and availability checker.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	if store == nil {
		panic("nil store passed to booking.NewService")
	}
	return &Service{store: store}
}

// Create validates req against the plan's current state and, under the
// slot lock, records the reservation.  Preconditions are checked in a
// fixed order and every failure is a typed error with no partial
// write.  Prices are recomputed from the plan's price_clp; the
// client's quoted total is only logged when it disagrees.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Reservation, error) {
	plan, err := s.store.PlanByID(ctx, req.PlanID)
	if err != nil {
		if err == ErrPlanNotFound {
			return nil, ErrBookingClosed
		}
		return nil, err
	}
	if plan.Status != model.PlanPublished {
		return nil, ErrBookingClosed
	}

	slot := strings.TrimSpace(req.TimeSlot)
	var ceiling uint32
	if len(plan.TimeSlots) > 0 {
		if slot == "" {
			return nil, fieldErr(ErrInvalidSlot, "time_slot")
		}
		ts := plan.Slot(slot)
		if ts == nil {
			return nil, fieldErr(ErrInvalidSlot, slot)
		}
		ceiling = ts.Capacity
	} else {
		slot = "" // plans without slots ignore any label sent by the client
		ceiling = plan.Capacity
	}

	if req.NumPeople < 1 {
		return nil, ErrInvalidQuantity
	}

	if plan.IsNominal {
		if err := validateTicketHolders(req.TicketHolders, req.NumPeople); err != nil {
			return nil, err
		}
	}
	if err := validateContact(req.Contact); err != nil {
		return nil, err
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, fieldErr(ErrInvalidDate, req.Date)
	}

	subtotal := plan.PriceCLP * int64(req.NumPeople)
	fee := pricing.CalcServiceFee(plan.PriceCLP) * int64(req.NumPeople)
	total := pricing.Total(plan.PriceCLP, req.NumPeople)
	if req.QuotedTotal != 0 && req.QuotedTotal != total {
		// advisory only; the stored amounts are the server's
		log.Printf("booking: client quoted %d for plan %d, server computed %d", req.QuotedTotal, plan.ID, total)
	}

	key := SlotKey{PlanID: plan.ID, Date: req.Date, TimeSlot: slot}
	return s.store.Reserve(ctx, key, func(booked uint32) (*model.Reservation, error) {
		// summed in uint64: booked+num_people can wrap uint32
		if uint64(booked)+uint64(req.NumPeople) > uint64(ceiling) {
			return nil, ErrCapacityExceeded
		}
		res := &model.Reservation{
			Reference:     uuid.NewString(),
			PlanID:        plan.ID,
			NumPeople:     req.NumPeople,
			Date:          req.Date,
			TimeSlot:      slot,
			ContactName:   strings.TrimSpace(req.Contact.Name),
			ContactEmail:  strings.TrimSpace(req.Contact.Email),
			ContactPhone:  strings.TrimSpace(req.Contact.Phone),
			ContactRUT:    strings.TrimSpace(req.Contact.RUT),
			SubtotalCLP:   subtotal,
			ServiceFeeCLP: fee,
			TotalCLP:      total,
			Status:        model.ReservationPending,
			PaymentStatus: model.PaymentPending,
		}
		if plan.IsNominal {
			res.TicketHolders = req.TicketHolders
		}
		return res, nil
	})
}

// Plan resolves a plan through the booking store, for callers that
// need plan fields alongside a reservation.
func (s *Service) Plan(ctx context.Context, planID uint64) (*model.Plan, error) {
	return s.store.PlanByID(ctx, planID)
}

// Remaining computes the capacity left for a plan on a date and
// optional slot from the authoritative store: the resolved ceiling
// minus all people in non-cancelled reservations for the key.
func (s *Service) Remaining(ctx context.Context, planID uint64, date, timeSlot string) (uint32, error) {
	plan, err := s.store.PlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return 0, ErrBookingClosed
		}
		return 0, err
	}
	if plan.Status != model.PlanPublished {
		return 0, ErrBookingClosed
	}
	slot := strings.TrimSpace(timeSlot)
	var ceiling uint32
	if len(plan.TimeSlots) > 0 {
		if slot == "" {
			return 0, fieldErr(ErrInvalidSlot, "time_slot")
		}
		ts := plan.Slot(slot)
		if ts == nil {
			return 0, fieldErr(ErrInvalidSlot, slot)
		}
		ceiling = ts.Capacity
	} else {
		slot = ""
		ceiling = plan.Capacity
	}
	booked, err := s.store.ActivePeople(ctx, SlotKey{PlanID: planID, Date: date, TimeSlot: slot})
	if err != nil {
		return 0, err
	}
	if booked >= ceiling {
		return 0, nil
	}
	return ceiling - booked, nil
}

// Cancel releases a reservation's units back into availability.  Any
// party may cancel a pending or confirmed reservation up to and
// including its date; completed and already-cancelled reservations
// cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, reservationID uint64) error {
	res, err := s.store.ReservationByID(ctx, reservationID)
	if err != nil {
		return err
	}
	switch res.Status {
	case model.ReservationPending, model.ReservationConfirmed:
	default:
		return ErrInvalidStateTransition
	}
	if today() > res.Date {
		return ErrInvalidStateTransition
	}
	return s.store.SetReservationStatus(ctx, reservationID, model.ReservationCancelled)
}

// Complete marks a reservation completed.  Only pending or confirmed
// reservations whose date has arrived can complete.
func (s *Service) Complete(ctx context.Context, reservationID uint64) error {
	res, err := s.store.ReservationByID(ctx, reservationID)
	if err != nil {
		return err
	}
	switch res.Status {
	case model.ReservationPending, model.ReservationConfirmed:
	default:
		return ErrInvalidStateTransition
	}
	if today() < res.Date {
		return ErrInvalidStateTransition
	}
	return s.store.SetReservationStatus(ctx, reservationID, model.ReservationCompleted)
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

func validateContact(c Contact) error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return fieldErr(ErrIncompleteContact, "name")
	case strings.TrimSpace(c.Email) == "":
		return fieldErr(ErrIncompleteContact, "email")
	case strings.TrimSpace(c.Phone) == "":
		return fieldErr(ErrIncompleteContact, "phone")
	case strings.TrimSpace(c.RUT) == "":
		return fieldErr(ErrIncompleteContact, "rut")
	}
	return nil
}

func validateTicketHolders(holders []model.TicketHolder, numPeople uint32) error {
	if uint32(len(holders)) != numPeople {
		return fieldErr(ErrIncompleteTicketData, "ticket_holders")
	}
	for i, h := range holders {
		switch {
		case strings.TrimSpace(h.Name) == "":
			return fieldErr(ErrIncompleteTicketData, ticketField(i, "name"))
		case strings.TrimSpace(h.RUT) == "":
			return fieldErr(ErrIncompleteTicketData, ticketField(i, "rut"))
		case strings.TrimSpace(h.Email) == "":
			return fieldErr(ErrIncompleteTicketData, ticketField(i, "email"))
		}
	}
	return nil
}

func ticketField(i int, field string) string {
	// 1-based to match the checkout form labels
	return "ticket " + strconv.Itoa(i+1) + ": " + field
}
