package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/thelistcl/marketplace-api/internal/booking"
	"github.com/thelistcl/marketplace-api/internal/model"
)

// ReservationRepo persists reservations and implements the storage
// contract of the booking service.  Capacity is enforced with a lock
// row per (plan, date, slot) in the booking_slots table: Reserve
// claims the row with SELECT ... FOR UPDATE, so two checkouts for the
// same slot serialize while checkouts for other slots, dates or plans
// proceed in parallel.
type ReservationRepo struct {
	db    *sql.DB
	plans *PlanRepo
}

// NewReservationRepo returns a ReservationRepo bound to the given
// database and plan repository.
func NewReservationRepo(db *sql.DB, plans *PlanRepo) *ReservationRepo {
	return &ReservationRepo{db: db, plans: plans}
}

const reservationCols = `id, reference, plan_id, num_people, date, time_slot,
	contact_name, contact_email, contact_phone, contact_rut, ticket_holders,
	subtotal_clp, service_fee_clp, total_clp, status, payment_status,
	created_at, updated_at`

func scanReservation(rs rowScanner) (*model.Reservation, error) {
	var (
		res     model.Reservation
		holders []byte
	)
	err := rs.Scan(
		&res.ID, &res.Reference, &res.PlanID, &res.NumPeople, &res.Date, &res.TimeSlot,
		&res.ContactName, &res.ContactEmail, &res.ContactPhone, &res.ContactRUT, &holders,
		&res.SubtotalCLP, &res.ServiceFeeCLP, &res.TotalCLP, &res.Status, &res.PaymentStatus,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := scanJSON(holders, &res.TicketHolders); err != nil {
		return nil, err
	}
	return &res, nil
}

// PlanByID resolves a plan for the booking service.
func (r *ReservationRepo) PlanByID(ctx context.Context, planID uint64) (*model.Plan, error) {
	p, err := r.plans.GetByID(ctx, planID)
	if errors.Is(err, ErrPlanNotFound) {
		return nil, booking.ErrPlanNotFound
	}
	return p, err
}

// Reserve runs fn inside the critical section for key.  The lock row
// for the slot is created on first use with INSERT IGNORE, then
// claimed FOR UPDATE; the active head count is summed under that
// lock, so the count fn sees cannot change before the insert commits.
// If fn returns a reservation it is inserted in the same transaction.
func (r *ReservationRepo) Reserve(ctx context.Context, key booking.SlotKey, fn func(booked uint32) (*model.Reservation, error)) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT IGNORE INTO booking_slots (plan_id, date, time_slot) VALUES (?,?,?)`,
		key.PlanID, key.Date, key.TimeSlot)
	if err != nil {
		return nil, err
	}
	var lockID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM booking_slots WHERE plan_id = ? AND date = ? AND time_slot = ? FOR UPDATE`,
		key.PlanID, key.Date, key.TimeSlot).Scan(&lockID)
	if err != nil {
		return nil, err
	}

	var booked uint32
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(num_people), 0) FROM reservations
		 WHERE plan_id = ? AND date = ? AND time_slot = ? AND status <> ?`,
		key.PlanID, key.Date, key.TimeSlot, model.ReservationCancelled).Scan(&booked)
	if err != nil {
		return nil, err
	}

	res, err := fn(booked)
	if err != nil {
		return nil, err
	}

	holders, err := jsonCol(res.TicketHolders)
	if err != nil {
		return nil, err
	}
	const q = `INSERT INTO reservations
		(reference, plan_id, num_people, date, time_slot, contact_name,
		 contact_email, contact_phone, contact_rut, ticket_holders,
		 subtotal_clp, service_fee_clp, total_clp, status, payment_status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	out, err := tx.ExecContext(ctx, q,
		res.Reference, res.PlanID, res.NumPeople, res.Date, res.TimeSlot, res.ContactName,
		res.ContactEmail, res.ContactPhone, res.ContactRUT, holders,
		res.SubtotalCLP, res.ServiceFeeCLP, res.TotalCLP, res.Status, res.PaymentStatus)
	if err != nil {
		return nil, err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return nil, err
	}
	res.ID = uint64(id)
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now
	return res, nil
}

// ActivePeople sums the head count of non-cancelled reservations for
// a slot.  Unlocked read, only used for availability display.
func (r *ReservationRepo) ActivePeople(ctx context.Context, key booking.SlotKey) (uint32, error) {
	var booked uint32
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(num_people), 0) FROM reservations
		 WHERE plan_id = ? AND date = ? AND time_slot = ? AND status <> ?`,
		key.PlanID, key.Date, key.TimeSlot, model.ReservationCancelled).Scan(&booked)
	return booked, err
}

// ReservationByID fetches a single reservation.
func (r *ReservationRepo) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	q := `SELECT ` + reservationCols + ` FROM reservations WHERE id = ? LIMIT 1`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, booking.ErrReservationNotFound
	}
	return res, err
}

// GetByReference fetches a reservation by its public reference, used
// by confirmation pages that must not expose sequential IDs.
func (r *ReservationRepo) GetByReference(ctx context.Context, ref string) (*model.Reservation, error) {
	q := `SELECT ` + reservationCols + ` FROM reservations WHERE reference = ? LIMIT 1`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, ref))
	if err == sql.ErrNoRows {
		return nil, booking.ErrReservationNotFound
	}
	return res, err
}

// SetReservationStatus updates a reservation's lifecycle status.
func (r *ReservationRepo) SetReservationStatus(ctx context.Context, id uint64, status model.ReservationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrReservationNotFound
	}
	return nil
}

// SetPaymentStatus updates the payment state independently of the
// reservation lifecycle.
func (r *ReservationRepo) SetPaymentStatus(ctx context.Context, id uint64, status model.PaymentStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET payment_status = ? WHERE id = ?`, status, id)
	return err
}

// ListByPlan returns a plan's reservations, optionally narrowed to a
// single date, newest first.
func (r *ReservationRepo) ListByPlan(ctx context.Context, planID uint64, date string) ([]*model.Reservation, error) {
	q := `SELECT ` + reservationCols + ` FROM reservations WHERE plan_id = ?`
	args := []any{planID}
	if date != "" {
		q += ` AND date = ?`
		args = append(args, date)
	}
	q += ` ORDER BY created_at DESC`
	return r.list(ctx, q, args...)
}

// ListForHost returns every reservation across a host's plans, newest
// first.  Drives the host dashboard.
func (r *ReservationRepo) ListForHost(ctx context.Context, hostID uint64) ([]*model.Reservation, error) {
	q := `SELECT ` + prefixCols(reservationCols, "r.") + `
		FROM reservations r
		JOIN plans p ON p.id = r.plan_id
		WHERE p.host_id = ?
		ORDER BY r.created_at DESC`
	return r.list(ctx, q, hostID)
}

// prefixCols qualifies each column in a comma-separated list with a
// table alias, for joined queries.
func prefixCols(cols, prefix string) string {
	parts := strings.Split(cols, ",")
	for i, c := range parts {
		parts[i] = prefix + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]*model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// CancelStalePending cancels unpaid pending reservations older than
// ttl, releasing their capacity.  Returns how many rows changed.
func (r *ReservationRepo) CancelStalePending(ctx context.Context, ttl time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ?
		 WHERE status = ? AND payment_status = ? AND created_at < ?`,
		model.ReservationCancelled, model.ReservationPending, model.PaymentPending,
		time.Now().UTC().Add(-ttl))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
