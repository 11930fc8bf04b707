package model

import "time"

// PlanStatus is the lifecycle state of a plan.  Transitions are
// validated against a single table (see CanTransition) instead of
// ad hoc checks at call sites.
type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanPublished PlanStatus = "published"
	PlanPaused    PlanStatus = "paused"
	PlanArchived  PlanStatus = "archived"
)

// planTransitions is the authoritative transition table for plans.
// Archived is terminal: it has no outgoing edges.
var planTransitions = map[PlanStatus][]PlanStatus{
	PlanDraft:     {PlanPublished, PlanArchived},
	PlanPublished: {PlanPaused, PlanArchived},
	PlanPaused:    {PlanPublished, PlanArchived},
	PlanArchived:  {},
}

// Valid reports whether s is a known plan status.
func (s PlanStatus) Valid() bool {
	_, ok := planTransitions[s]
	return ok
}

// CanTransition reports whether moving from s to next is allowed.
func (s PlanStatus) CanTransition(next PlanStatus) bool {
	for _, t := range planTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// ScheduleSlot is one time band of a plan's weekly schedule,
// e.g. {Start: "19:00", End: "22:00"}.
type ScheduleSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TimeSlot is a named booking time with its own capacity ceiling.
// When a plan defines time slots, reservations must name one and the
// slot capacity replaces the plan's daily capacity for that slot.
type TimeSlot struct {
	Time     string `json:"time"`
	Capacity uint32 `json:"capacity"`
}

// Plan is a publishable, bookable experience listing ("drop").
// It corresponds to a row in the `plans` table.  The schedule,
// time_slots, days_of_week, badges and media_urls columns are JSON
// blobs decoded into typed slices at the repository boundary.
//
// Fields:
//  ID            – primary key identifier.
//  ApplicationID – application this plan was created from (nullable).
//  HostID        – owning host.
//  Title         – display title.
//  Description   – long description.
//  ShortDesc     – truncated description for cards.
//  Sala          – fixed category the plan belongs to.
//  Location      – city/neighbourhood label.
//  PriceCLP      – host-set base price in whole pesos.
//  Capacity      – per-day default capacity.
//  TimeSlots     – optional per-slot capacities refining Capacity.
//  Schedule      – weekly time bands.
//  DaysOfWeek    – days the plan runs.
//  MediaURLs     – gallery image URLs.
//  Badges        – display badges (last_seats, sold_out, ...).
//  DurationMin   – duration in minutes (nullable).
//  IsNominal     – per-seat ticket-holder identity required.
//  Featured      – pinned on the landing page.
//  DropNumber    – sequential display number, immutable once assigned.
//  Status        – lifecycle state.
//  PublishedAt   – first publish timestamp; later republishes keep it.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Plan struct {
	ID            uint64         // plans.id
	ApplicationID *uint64        // plans.application_id (nullable)
	HostID        uint64         // plans.host_id
	Title         string         // plans.title
	Description   string         // plans.description
	ShortDesc     string         // plans.short_description
	Sala          string         // plans.sala
	Location      string         // plans.location
	PriceCLP      int64          // plans.price_clp
	Capacity      uint32         // plans.capacity
	TimeSlots     []TimeSlot     // plans.time_slots (JSON)
	Schedule      []ScheduleSlot // plans.schedule (JSON)
	DaysOfWeek    []string       // plans.days_of_week (JSON)
	MediaURLs     []string       // plans.media_urls (JSON)
	Badges        []string       // plans.badges (JSON)
	DurationMin   *uint32        // plans.duration_minutes (nullable)
	IsNominal     bool           // plans.is_nominal
	Featured      bool           // plans.featured
	DropNumber    uint64         // plans.drop_number
	Status        PlanStatus     // plans.status
	PublishedAt   *time.Time     // plans.published_at (nullable)
	CreatedAt     time.Time      // plans.created_at
	UpdatedAt     time.Time      // plans.updated_at
}

// Slot returns the time slot named by label, or nil when the plan
// does not define it.
func (p *Plan) Slot(label string) *TimeSlot {
	for i := range p.TimeSlots {
		if p.TimeSlots[i].Time == label {
			return &p.TimeSlots[i]
		}
	}
	return nil
}

// SlotCeiling resolves the capacity ceiling for a booking: the slot's
// own capacity when the plan defines time slots, otherwise the plan
// daily capacity.
func (p *Plan) SlotCeiling(label string) uint32 {
	if len(p.TimeSlots) > 0 {
		if s := p.Slot(label); s != nil {
			return s.Capacity
		}
	}
	return p.Capacity
}
