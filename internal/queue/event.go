// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationCreatedEvent is published when a checkout succeeds.  It
// carries enough information for downstream consumers to log, notify
// the host, or trigger analytics without querying the primary
// database.
type ReservationCreatedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	Reference     string `json:"reference"`
	PlanID        uint64 `json:"plan_id"`
	PlanTitle     string `json:"plan_title"`
	HostID        uint64 `json:"host_id"`
	Date          string `json:"date"`
	TimeSlot      string `json:"time_slot,omitempty"`
	NumPeople     uint32 `json:"num_people"`
	ContactName   string `json:"contact_name"`
	ContactEmail  string `json:"contact_email"`
	TotalCLP      int64  `json:"total_clp"`
	CreatedAt     string `json:"created_at"`
}
