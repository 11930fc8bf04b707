package booking

import "errors"

// Sentinel errors returned by the booking service.  Handlers compare
// with errors.Is and translate to HTTP statuses; none of them is ever
// produced after a partial write.
var (
	// ErrPlanNotFound is the Store contract for a missing plan.  The
	// service never surfaces it directly: a missing plan books the
	// same as an unpublished one.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrBookingClosed means the plan is missing or not published.
	ErrBookingClosed = errors.New("booking closed")

	// ErrInvalidSlot means the plan defines time slots and the request
	// named none, or one the plan does not have.
	ErrInvalidSlot = errors.New("invalid time slot")

	// ErrInvalidDate means the requested date is not a YYYY-MM-DD
	// calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidQuantity means num_people < 1.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrIncompleteContact means a required buyer contact field is blank.
	ErrIncompleteContact = errors.New("incomplete contact data")

	// ErrIncompleteTicketData means a nominal plan was booked without a
	// complete identity per seat.
	ErrIncompleteTicketData = errors.New("incomplete ticket data")

	// ErrCapacityExceeded means the slot cannot fit the requested
	// quantity.  Clients should re-fetch availability and retry lower.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrReservationNotFound is returned by status changes on unknown
	// reservations.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrInvalidStateTransition is returned for status changes the
	// reservation lifecycle does not allow.
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// FieldError attaches the offending field to a validation sentinel so
// the UI can surface the specific missing input.  errors.Is still
// matches the wrapped sentinel.
type FieldError struct {
	Err   error
	Field string
}

func (e *FieldError) Error() string { return e.Err.Error() + ": " + e.Field }

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(err error, field string) error {
	return &FieldError{Err: err, Field: field}
}

// FieldOf extracts the field detail from a validation error, or ""
// when err carries none.
func FieldOf(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}
