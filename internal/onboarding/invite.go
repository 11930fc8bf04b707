// Package onboarding issues and validates the single-use, expiring
// invite tokens that gate account creation for approved hosts.
package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/utils"
)

var (
	// ErrTokenNotFound means no invite carries the presented token.
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenExpired means the invite's 7-day window has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenAlreadyUsed means the invite was consumed or rotated away.
	ErrTokenAlreadyUsed = errors.New("token already used")
	// ErrInviteNotFound means no invite row has the requested ID.
	ErrInviteNotFound = errors.New("invite not found")
)

// Store is the persistence contract for invites.  Rotate must mark
// the old invite used and insert the replacement in one atomic step:
// there is never a moment with two valid tokens for an application,
// nor one with zero because the insert failed after the invalidation.
type Store interface {
	CreateInvite(ctx context.Context, inv *model.OnboardingInvite) error
	InviteByToken(ctx context.Context, token string) (*model.OnboardingInvite, error)
	InviteByID(ctx context.Context, id uint64) (*model.OnboardingInvite, error)
	Rotate(ctx context.Context, oldID uint64, repl *model.OnboardingInvite) error
	MarkUsed(ctx context.Context, id uint64) error
}

// Service issues, validates and rotates onboarding invites.
type Service struct {
	store Store
	ttl   time.Duration
	Now   func() time.Time // clock, swappable in tests
}

// NewService builds a Service with the given invite lifetime in days.
func NewService(store Store, ttlDays int) *Service {
	if store == nil {
		panic("nil store passed to onboarding.NewService")
	}
	if ttlDays <= 0 {
		ttlDays = 7
	}
	return &Service{
		store: store,
		ttl:   time.Duration(ttlDays) * 24 * time.Hour,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a fresh invite for an application with a high-entropy
// random token and the configured expiry.
func (s *Service) Issue(ctx context.Context, applicationID uint64, typ model.InviteType, email string, createdBy uint64) (*model.OnboardingInvite, error) {
	token, err := utils.RandomHex(32)
	if err != nil {
		return nil, err
	}
	inv := &model.OnboardingInvite{
		ApplicationID:   applicationID,
		ApplicationType: typ,
		Email:           email,
		Token:           token,
		ExpiresAt:       s.Now().Add(s.ttl),
		CreatedBy:       createdBy,
	}
	if err := s.store.CreateInvite(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Validate resolves a presented token.  Used invites fail before
// expired ones so a rotated-away link reports "already used" even
// after its expiry has also passed.
func (s *Service) Validate(ctx context.Context, token string) (*model.OnboardingInvite, error) {
	inv, err := s.store.InviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.UsedAt != nil {
		return nil, ErrTokenAlreadyUsed
	}
	if !s.Now().Before(inv.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return inv, nil
}

// Regenerate invalidates the given invite and issues a replacement
// for the same application in one atomic operation.  The old link
// visibly fails validation afterwards.
func (s *Service) Regenerate(ctx context.Context, oldID uint64) (*model.OnboardingInvite, error) {
	old, err := s.store.InviteByID(ctx, oldID)
	if err != nil {
		return nil, err
	}
	token, err := utils.RandomHex(32)
	if err != nil {
		return nil, err
	}
	repl := &model.OnboardingInvite{
		ApplicationID:   old.ApplicationID,
		ApplicationType: old.ApplicationType,
		Email:           old.Email,
		Token:           token,
		ExpiresAt:       s.Now().Add(s.ttl),
		CreatedBy:       old.CreatedBy,
	}
	if err := s.store.Rotate(ctx, old.ID, repl); err != nil {
		return nil, err
	}
	return repl, nil
}

// Consume marks a validated invite used.  Called by the onboarding
// completion flow after the account is created.
func (s *Service) Consume(ctx context.Context, id uint64) error {
	return s.store.MarkUsed(ctx, id)
}
