package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/thelistcl/marketplace-api/internal/model"
)

func TestPlanTransitions(t *testing.T) {
	cases := []struct {
		from, to model.PlanStatus
		allowed  bool
	}{
		{model.PlanDraft, model.PlanPublished, true},
		{model.PlanDraft, model.PlanArchived, true},
		{model.PlanDraft, model.PlanPaused, false},
		{model.PlanPublished, model.PlanPaused, true},
		{model.PlanPublished, model.PlanArchived, true},
		{model.PlanPublished, model.PlanDraft, false},
		{model.PlanPaused, model.PlanPublished, true},
		{model.PlanPaused, model.PlanArchived, true},
		{model.PlanPaused, model.PlanDraft, false},
		// archived is terminal
		{model.PlanArchived, model.PlanPublished, false},
		{model.PlanArchived, model.PlanPaused, false},
		{model.PlanArchived, model.PlanDraft, false},
		{model.PlanArchived, model.PlanArchived, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.allowed, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestPlanStatusValid(t *testing.T) {
	assert.True(t, model.PlanDraft.Valid())
	assert.True(t, model.PlanArchived.Valid())
	assert.False(t, model.PlanStatus("deleted").Valid())
	assert.False(t, model.PlanStatus("").Valid())
}

func TestApplicationTerminal(t *testing.T) {
	assert.False(t, model.ApplicationPending.Terminal())
	assert.True(t, model.ApplicationApproved.Terminal())
	assert.True(t, model.ApplicationRejected.Terminal())
}

func TestReservationConsumesCapacity(t *testing.T) {
	assert.True(t, model.ReservationPending.ConsumesCapacity())
	assert.True(t, model.ReservationConfirmed.ConsumesCapacity())
	assert.True(t, model.ReservationCompleted.ConsumesCapacity())
	assert.False(t, model.ReservationCancelled.ConsumesCapacity())
}

func TestPlanSlotCeiling(t *testing.T) {
	p := &model.Plan{
		Capacity: 8,
		TimeSlots: []model.TimeSlot{
			{Time: "19:00", Capacity: 6},
			{Time: "21:30", Capacity: 4},
		},
	}
	assert.Equal(t, uint32(6), p.SlotCeiling("19:00"))
	assert.Equal(t, uint32(4), p.SlotCeiling("21:30"))
	// unknown slot falls back to the daily capacity; the booking
	// service rejects unknown slots before ever asking for a ceiling
	assert.Equal(t, uint32(8), p.SlotCeiling("23:00"))

	noSlots := &model.Plan{Capacity: 12}
	assert.Equal(t, uint32(12), noSlots.SlotCeiling(""))
	assert.Equal(t, uint32(12), noSlots.SlotCeiling("19:00"))
}

func TestInviteUsable(t *testing.T) {
	now := time.Now().UTC()
	used := now.Add(-time.Hour)

	fresh := &model.OnboardingInvite{ExpiresAt: now.Add(24 * time.Hour)}
	assert.True(t, fresh.Usable(now))

	expired := &model.OnboardingInvite{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.Usable(now))

	spent := &model.OnboardingInvite{ExpiresAt: now.Add(24 * time.Hour), UsedAt: &used}
	assert.False(t, spent.Usable(now))
}
