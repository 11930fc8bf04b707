package model

import "time"

// ReservationStatus tracks the booking lifecycle.  Payment state is
// tracked separately in PaymentStatus.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// ConsumesCapacity reports whether a reservation in this status counts
// against the slot capacity.  Cancelled reservations never do.
func (s ReservationStatus) ConsumesCapacity() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCompleted:
		return true
	}
	return false
}

// PaymentStatus is the payment-side state of a reservation.  The
// payment processor is not wired yet, so rows stay "pending" after
// creation until the webhook integration lands.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// TicketHolder is the per-seat identity collected for nominal plans.
// Stored as a JSON array on the reservation row.
type TicketHolder struct {
	Name  string `json:"name"`
	RUT   string `json:"rut"`
	Email string `json:"email"`
}

// Reservation is a booking against one plan for one calendar date and
// optional time slot.  Mirrors the `reservations` table.
//
// Fields:
//  ID            – primary key identifier.
//  Reference     – opaque code returned to the buyer.
//  PlanID        – plan being booked.
//  NumPeople     – booked units.
//  Date          – target date, "YYYY-MM-DD".
//  TimeSlot      – slot label; empty when the plan has no slots.
//  ContactName   – buyer name.
//  ContactEmail  – buyer email.
//  ContactPhone  – buyer phone.
//  ContactRUT    – buyer national ID.
//  TicketHolders – per-seat identities (nominal plans only, JSON).
//  SubtotalCLP   – host price × NumPeople.
//  ServiceFeeCLP – fee amount × NumPeople.
//  TotalCLP      – customer unit price × NumPeople.
//  Status        – booking status.
//  PaymentStatus – payment status, tracked independently.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Reservation struct {
	ID            uint64            // reservations.id
	Reference     string            // reservations.reference
	PlanID        uint64            // reservations.plan_id
	NumPeople     uint32            // reservations.num_people
	Date          string            // reservations.date
	TimeSlot      string            // reservations.time_slot ('' = none)
	ContactName   string            // reservations.contact_name
	ContactEmail  string            // reservations.contact_email
	ContactPhone  string            // reservations.contact_phone
	ContactRUT    string            // reservations.contact_rut
	TicketHolders []TicketHolder    // reservations.ticket_holders (JSON)
	SubtotalCLP   int64             // reservations.subtotal_clp
	ServiceFeeCLP int64             // reservations.service_fee_clp
	TotalCLP      int64             // reservations.total_clp
	Status        ReservationStatus // reservations.status
	PaymentStatus PaymentStatus     // reservations.payment_status
	CreatedAt     time.Time         // reservations.created_at
	UpdatedAt     time.Time         // reservations.updated_at
}
