// Package memory provides an in-process implementation of the booking
// and onboarding store contracts.  It backs the unit tests and local
// development without MySQL; production uses the repository package.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/thelistcl/marketplace-api/internal/booking"
	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/onboarding"
)

// Store keeps every table in a mutex-guarded map.  Reserve serializes
// per slot key with a dedicated mutex so concurrent bookings for the
// same (plan, date, slot) cannot both pass the capacity check, while
// bookings for different keys proceed in parallel.
type Store struct {
	mu           sync.Mutex
	plans        map[uint64]*model.Plan
	reservations map[uint64]*model.Reservation
	invites      map[uint64]*model.OnboardingInvite
	nextResID    uint64
	nextInviteID uint64
	slotLocks    map[booking.SlotKey]*sync.Mutex
}

func New() *Store {
	return &Store{
		plans:        make(map[uint64]*model.Plan),
		reservations: make(map[uint64]*model.Reservation),
		invites:      make(map[uint64]*model.OnboardingInvite),
		slotLocks:    make(map[booking.SlotKey]*sync.Mutex),
	}
}

// PutPlan inserts or replaces a plan.  Test and seeding helper.
func (s *Store) PutPlan(p *model.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.ID] = p
}

func (s *Store) PlanByID(_ context.Context, planID uint64) (*model.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[planID]
	if !ok {
		return nil, booking.ErrPlanNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) slotLock(key booking.SlotKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.slotLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.slotLocks[key] = l
	}
	return l
}

func (s *Store) activePeopleLocked(key booking.SlotKey) uint32 {
	var sum uint32
	for _, r := range s.reservations {
		if r.PlanID == key.PlanID && r.Date == key.Date && r.TimeSlot == key.TimeSlot && r.Status.ConsumesCapacity() {
			sum += r.NumPeople
		}
	}
	return sum
}

// Reserve runs fn under the slot's mutex.  The booked count handed to
// fn and the insert of its result are one critical section.
func (s *Store) Reserve(_ context.Context, key booking.SlotKey, fn func(booked uint32) (*model.Reservation, error)) (*model.Reservation, error) {
	l := s.slotLock(key)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	booked := s.activePeopleLocked(key)
	s.mu.Unlock()

	res, err := fn(booked)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextResID++
	res.ID = s.nextResID
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	cp := *res
	s.reservations[res.ID] = &cp
	return res, nil
}

func (s *Store) ActivePeople(_ context.Context, key booking.SlotKey) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePeopleLocked(key), nil
}

func (s *Store) ReservationByID(_ context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, booking.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Store) SetReservationStatus(_ context.Context, id uint64, status model.ReservationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return booking.ErrReservationNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// ── onboarding.Store ──

func (s *Store) CreateInvite(_ context.Context, inv *model.OnboardingInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextInviteID++
	inv.ID = s.nextInviteID
	inv.CreatedAt = time.Now().UTC()
	cp := *inv
	s.invites[inv.ID] = &cp
	return nil
}

func (s *Store) InviteByToken(_ context.Context, token string) (*model.OnboardingInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invites {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, onboarding.ErrTokenNotFound
}

func (s *Store) InviteByID(_ context.Context, id uint64) (*model.OnboardingInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok {
		return nil, onboarding.ErrInviteNotFound
	}
	cp := *inv
	return &cp, nil
}

// Rotate marks the old invite used and inserts the replacement under
// one lock, mirroring the single transaction of the SQL store.
func (s *Store) Rotate(_ context.Context, oldID uint64, repl *model.OnboardingInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.invites[oldID]
	if !ok {
		return onboarding.ErrInviteNotFound
	}
	now := time.Now().UTC()
	old.UsedAt = &now
	s.nextInviteID++
	repl.ID = s.nextInviteID
	repl.CreatedAt = now
	cp := *repl
	s.invites[repl.ID] = &cp
	return nil
}

func (s *Store) MarkUsed(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok {
		return onboarding.ErrInviteNotFound
	}
	now := time.Now().UTC()
	inv.UsedAt = &now
	return nil
}
