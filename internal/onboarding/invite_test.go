package onboarding_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/onboarding"
	"github.com/thelistcl/marketplace-api/internal/storage/memory"
)

const adminID = uint64(9)

func newInviteService(now time.Time) *onboarding.Service {
	svc := onboarding.NewService(memory.New(), 7)
	svc.Now = func() time.Time { return now }
	return svc
}

func TestIssueAndValidate(t *testing.T) {
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newInviteService(now)
	ctx := context.Background()

	inv, err := svc.Issue(ctx, 42, model.InviteInternal, "host@example.com", adminID)
	require.NoError(t, err)
	assert.Len(t, inv.Token, 64) // 32 random bytes, hex encoded
	assert.Equal(t, now.Add(7*24*time.Hour), inv.ExpiresAt)
	assert.True(t, inv.Usable(now))

	got, err := svc.Validate(ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)

	_, err = svc.Validate(ctx, "deadbeef")
	assert.ErrorIs(t, err, onboarding.ErrTokenNotFound)
}

// A token is consumed exactly once: after Consume it never validates again.
func TestConsumeIsSingleUse(t *testing.T) {
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newInviteService(now)
	ctx := context.Background()

	inv, err := svc.Issue(ctx, 42, model.InvitePublic, "a@b.cl", adminID)
	require.NoError(t, err)

	require.NoError(t, svc.Consume(ctx, inv.ID))

	_, err = svc.Validate(ctx, inv.Token)
	assert.ErrorIs(t, err, onboarding.ErrTokenAlreadyUsed)
}

func TestValidateExpired(t *testing.T) {
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newInviteService(now)
	ctx := context.Background()

	inv, err := svc.Issue(ctx, 42, model.InviteInternal, "a@b.cl", adminID)
	require.NoError(t, err)

	svc.Now = func() time.Time { return now.Add(7 * 24 * time.Hour) }
	_, err = svc.Validate(ctx, inv.Token)
	assert.ErrorIs(t, err, onboarding.ErrTokenExpired)

	// used wins over expired: a consumed token reports its terminal
	// state even after the expiry window has also passed
	require.NoError(t, svc.Consume(ctx, inv.ID))
	svc.Now = func() time.Time { return now.Add(30 * 24 * time.Hour) }
	_, err = svc.Validate(ctx, inv.Token)
	assert.ErrorIs(t, err, onboarding.ErrTokenAlreadyUsed)
}

func TestRegenerateInvalidatesOld(t *testing.T) {
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newInviteService(now)
	ctx := context.Background()

	old, err := svc.Issue(ctx, 42, model.InvitePublic, "host@example.com", adminID)
	require.NoError(t, err)

	fresh, err := svc.Regenerate(ctx, old.ID)
	require.NoError(t, err)
	assert.NotEqual(t, old.Token, fresh.Token)
	assert.Equal(t, old.Email, fresh.Email)
	assert.Equal(t, old.ApplicationID, fresh.ApplicationID)
	assert.Equal(t, old.ApplicationType, fresh.ApplicationType)

	_, err = svc.Validate(ctx, old.Token)
	assert.ErrorIs(t, err, onboarding.ErrTokenAlreadyUsed)

	got, err := svc.Validate(ctx, fresh.Token)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, got.ID)
}

func TestRegenerateUnknownInvite(t *testing.T) {
	svc := newInviteService(time.Now().UTC())
	_, err := svc.Regenerate(context.Background(), 777)
	assert.ErrorIs(t, err, onboarding.ErrInviteNotFound)
}
