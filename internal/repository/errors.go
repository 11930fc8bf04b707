// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as handlers to distinguish between different failure
// scenarios.  For example, ErrForbidden indicates that the current
// user is not authorized to act on a resource owned by someone else,
// while ErrConflict signals that an operation cannot proceed because
// the target is already in a terminal state (e.g. re-reviewing an
// approved application).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because
// of conflicting state, such as reviewing an application that was
// already approved or rejected. Handlers should translate this into
// an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrPlanNotFound is returned when a plan lookup yields no rows.
var ErrPlanNotFound = errors.New("plan not found")

// ErrApplicationNotFound is returned when an application lookup
// yields no rows, for both the internal and the public table.
var ErrApplicationNotFound = errors.New("application not found")

// ErrHostNotFound is returned when a host lookup yields no rows.
var ErrHostNotFound = errors.New("host not found")

// ErrInvalidTransition is returned when a status change is not
// allowed by the plan lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrPlanUnpriced is returned when a plan without a positive price
// is asked to publish.
var ErrPlanUnpriced = errors.New("plan has no price")
