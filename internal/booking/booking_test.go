package booking_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelistcl/marketplace-api/internal/booking"
	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/storage/memory"
)

const futureDate = "2030-06-15"

func newPlan(id uint64, capacity uint32) *model.Plan {
	return &model.Plan{
		ID:       id,
		HostID:   1,
		Title:    "Cena a ciegas",
		Sala:     "La Buena Mesa",
		PriceCLP: 45000,
		Capacity: capacity,
		Status:   model.PlanPublished,
	}
}

func contact() booking.Contact {
	return booking.Contact{
		Name:  "Ana Rojas",
		Email: "ana@example.com",
		Phone: "+56 9 1234 5678",
		RUT:   "12.345.678-5",
	}
}

func newService(t *testing.T, plans ...*model.Plan) (*booking.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	for _, p := range plans {
		store.PutPlan(p)
	}
	return booking.NewService(store), store
}

func TestCreateComputesPricingServerSide(t *testing.T) {
	svc, _ := newService(t, newPlan(1, 8))

	res, err := svc.Create(context.Background(), booking.CreateRequest{
		PlanID:      1,
		Date:        futureDate,
		NumPeople:   3,
		Contact:     contact(),
		QuotedTotal: 1, // bogus client total must be ignored
	})
	require.NoError(t, err)

	assert.Equal(t, int64(135000), res.SubtotalCLP)
	assert.Equal(t, int64(13500), res.ServiceFeeCLP)
	assert.Equal(t, int64(148500), res.TotalCLP)
	assert.Equal(t, res.SubtotalCLP+res.ServiceFeeCLP, res.TotalCLP)
	assert.Equal(t, model.ReservationPending, res.Status)
	assert.Equal(t, model.PaymentPending, res.PaymentStatus)
	assert.NotEmpty(t, res.Reference)
}

// Scenario A: capacity 8, book 5, then 4 fails, then exactly 3 fits.
func TestCreateCapacitySequence(t *testing.T) {
	svc, _ := newService(t, newPlan(1, 8))
	ctx := context.Background()

	req := func(n uint32) booking.CreateRequest {
		return booking.CreateRequest{PlanID: 1, Date: futureDate, NumPeople: n, Contact: contact()}
	}

	_, err := svc.Create(ctx, req(5))
	require.NoError(t, err)

	_, err = svc.Create(ctx, req(4))
	assert.ErrorIs(t, err, booking.ErrCapacityExceeded)

	_, err = svc.Create(ctx, req(3))
	assert.NoError(t, err)

	left, err := svc.Remaining(ctx, 1, futureDate, "")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), left)
}

// A num_people large enough to wrap uint32 arithmetic must still fail
// the capacity check, not slip past it.
func TestCreateHugeQuantityCannotWrapCapacity(t *testing.T) {
	svc, _ := newService(t, newPlan(1, 8))
	ctx := context.Background()

	req := func(n uint32) booking.CreateRequest {
		return booking.CreateRequest{PlanID: 1, Date: futureDate, NumPeople: n, Contact: contact()}
	}

	_, err := svc.Create(ctx, req(5))
	require.NoError(t, err)

	for _, n := range []uint32{4294967293, 4294967295, 9} {
		_, err = svc.Create(ctx, req(n))
		assert.ErrorIs(t, err, booking.ErrCapacityExceeded, "num_people=%d", n)
	}

	left, err := svc.Remaining(ctx, 1, futureDate, "")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), left)
}

// Concurrent requests summing past capacity must never overbook.
func TestCreateConcurrentNoOverbooking(t *testing.T) {
	const capacity = 10
	svc, _ := newService(t, newPlan(1, capacity))
	ctx := context.Background()

	const workers = 30
	var wg sync.WaitGroup
	accepted := make(chan uint32, workers)
	rejected := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Create(ctx, booking.CreateRequest{
				PlanID: 1, Date: futureDate, NumPeople: 2, Contact: contact(),
			})
			if err != nil {
				rejected <- err
				return
			}
			accepted <- res.NumPeople
		}()
	}
	wg.Wait()
	close(accepted)
	close(rejected)

	var booked uint32
	for n := range accepted {
		booked += n
	}
	assert.LessOrEqual(t, booked, uint32(capacity))
	assert.Equal(t, uint32(capacity), booked, "every free unit should have been won by someone")
	for err := range rejected {
		assert.ErrorIs(t, err, booking.ErrCapacityExceeded)
	}

	left, err := svc.Remaining(ctx, 1, futureDate, "")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), left)
}

// P3: cancelling releases exactly the cancelled quantity.
func TestCancelReleasesCapacity(t *testing.T) {
	svc, store := newService(t, newPlan(1, 8))
	ctx := context.Background()

	res, err := svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: futureDate, NumPeople: 5, Contact: contact(),
	})
	require.NoError(t, err)

	// confirmed reservations release capacity the same way
	require.NoError(t, store.SetReservationStatus(ctx, res.ID, model.ReservationConfirmed))

	before, err := svc.Remaining(ctx, 1, futureDate, "")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), before)

	require.NoError(t, svc.Cancel(ctx, res.ID))

	after, err := svc.Remaining(ctx, 1, futureDate, "")
	require.NoError(t, err)
	assert.Equal(t, before+5, after)

	// cancelling twice is an illegal transition
	assert.ErrorIs(t, svc.Cancel(ctx, res.ID), booking.ErrInvalidStateTransition)
}

func TestCreateBookingClosed(t *testing.T) {
	draft := newPlan(1, 8)
	draft.Status = model.PlanDraft
	paused := newPlan(2, 8)
	paused.Status = model.PlanPaused
	svc, _ := newService(t, draft, paused)
	ctx := context.Background()

	for _, planID := range []uint64{1, 2, 99} { // draft, paused, missing
		_, err := svc.Create(ctx, booking.CreateRequest{
			PlanID: planID, Date: futureDate, NumPeople: 1, Contact: contact(),
		})
		assert.ErrorIs(t, err, booking.ErrBookingClosed, "plan %d", planID)
	}
}

func TestCreateSlotValidation(t *testing.T) {
	plan := newPlan(1, 8)
	plan.TimeSlots = []model.TimeSlot{
		{Time: "19:00", Capacity: 4},
		{Time: "21:30", Capacity: 2},
	}
	svc, _ := newService(t, plan)
	ctx := context.Background()

	// slot required when the plan defines slots
	_, err := svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: futureDate, NumPeople: 1, Contact: contact(),
	})
	assert.ErrorIs(t, err, booking.ErrInvalidSlot)

	// unknown slot rejected
	_, err = svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: futureDate, TimeSlot: "23:00", NumPeople: 1, Contact: contact(),
	})
	assert.ErrorIs(t, err, booking.ErrInvalidSlot)

	// slot capacity is the ceiling, not the plan capacity
	_, err = svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: futureDate, TimeSlot: "21:30", NumPeople: 3, Contact: contact(),
	})
	assert.ErrorIs(t, err, booking.ErrCapacityExceeded)

	// slots are independent ledgers
	_, err = svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: futureDate, TimeSlot: "19:00", NumPeople: 4, Contact: contact(),
	})
	assert.NoError(t, err)
	_, err = svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: futureDate, TimeSlot: "21:30", NumPeople: 2, Contact: contact(),
	})
	assert.NoError(t, err)
}

func TestCreateQuantityAndDateValidation(t *testing.T) {
	svc, _ := newService(t, newPlan(1, 8))
	ctx := context.Background()

	_, err := svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: futureDate, NumPeople: 0, Contact: contact(),
	})
	assert.ErrorIs(t, err, booking.ErrInvalidQuantity)

	_, err = svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: "15-06-2030", NumPeople: 1, Contact: contact(),
	})
	assert.ErrorIs(t, err, booking.ErrInvalidDate)
}

func TestCreateContactValidation(t *testing.T) {
	svc, _ := newService(t, newPlan(1, 8))
	ctx := context.Background()

	c := contact()
	c.Phone = "   "
	_, err := svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: futureDate, NumPeople: 1, Contact: c,
	})
	assert.ErrorIs(t, err, booking.ErrIncompleteContact)
	assert.Equal(t, "phone", booking.FieldOf(err))
}

// Scenario C: nominal plan, 3 people but only 2 ticket holders.
func TestCreateNominalTicketValidation(t *testing.T) {
	plan := newPlan(1, 8)
	plan.IsNominal = true
	svc, _ := newService(t, plan)
	ctx := context.Background()

	holders := []model.TicketHolder{
		{Name: "Ana", RUT: "1-9", Email: "ana@example.com"},
		{Name: "Beto", RUT: "2-7", Email: "beto@example.com"},
	}
	_, err := svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: futureDate, NumPeople: 3, Contact: contact(), TicketHolders: holders,
	})
	assert.ErrorIs(t, err, booking.ErrIncompleteTicketData)

	// blank field inside a holder also fails, naming the ticket
	holders = append(holders, model.TicketHolder{Name: "Carla", RUT: "", Email: "carla@example.com"})
	_, err = svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: futureDate, NumPeople: 3, Contact: contact(), TicketHolders: holders,
	})
	assert.ErrorIs(t, err, booking.ErrIncompleteTicketData)
	assert.Equal(t, "ticket 3: rut", booking.FieldOf(err))

	holders[2].RUT = "3-5"
	res, err := svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: futureDate, NumPeople: 3, Contact: contact(), TicketHolders: holders,
	})
	require.NoError(t, err)
	assert.Len(t, res.TicketHolders, 3)
}

func TestCompleteOnlyAfterDate(t *testing.T) {
	svc, _ := newService(t, newPlan(1, 8))
	ctx := context.Background()

	res, err := svc.Create(ctx, booking.CreateRequest{
		PlanID: 1, Date: futureDate, NumPeople: 2, Contact: contact(),
	})
	require.NoError(t, err)

	// the date has not arrived yet
	assert.ErrorIs(t, svc.Complete(ctx, res.ID), booking.ErrInvalidStateTransition)
}
