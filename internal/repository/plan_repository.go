package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/thelistcl/marketplace-api/internal/model"
)

// PlanRepo provides data access for the plan catalog.  Plans are
// created exclusively through application approval (CreateTx runs
// inside the approval transaction) and move through their lifecycle
// with SetStatus.
type PlanRepo struct {
	db *sql.DB
}

// NewPlanRepo constructs a PlanRepo with the given DB handle.
func NewPlanRepo(db *sql.DB) *PlanRepo { return &PlanRepo{db: db} }

const planCols = `id, application_id, host_id, title, description, short_description,
	sala, location, price_clp, capacity, time_slots, schedule, days_of_week,
	media_urls, badges, duration_minutes, is_nominal, featured, drop_number,
	status, published_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(rs rowScanner) (*model.Plan, error) {
	var (
		p         model.Plan
		appID     sql.NullInt64
		duration  sql.NullInt64
		published sql.NullTime
		timeSlots []byte
		schedule  []byte
		days      []byte
		media     []byte
		badges    []byte
	)
	err := rs.Scan(
		&p.ID, &appID, &p.HostID, &p.Title, &p.Description, &p.ShortDesc,
		&p.Sala, &p.Location, &p.PriceCLP, &p.Capacity, &timeSlots, &schedule,
		&days, &media, &badges, &duration, &p.IsNominal, &p.Featured,
		&p.DropNumber, &p.Status, &published, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if appID.Valid {
		v := uint64(appID.Int64)
		p.ApplicationID = &v
	}
	if duration.Valid {
		v := uint32(duration.Int64)
		p.DurationMin = &v
	}
	if published.Valid {
		t := published.Time
		p.PublishedAt = &t
	}
	if err := scanJSON(timeSlots, &p.TimeSlots); err != nil {
		return nil, err
	}
	if err := scanJSON(schedule, &p.Schedule); err != nil {
		return nil, err
	}
	if err := scanJSON(days, &p.DaysOfWeek); err != nil {
		return nil, err
	}
	if err := scanJSON(media, &p.MediaURLs); err != nil {
		return nil, err
	}
	if err := scanJSON(badges, &p.Badges); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID fetches a single plan regardless of status.
func (r *PlanRepo) GetByID(ctx context.Context, id uint64) (*model.Plan, error) {
	q := `SELECT ` + planCols + ` FROM plans WHERE id = ? LIMIT 1`
	p, err := scanPlan(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrPlanNotFound
	}
	return p, err
}

// ListPublished returns the public catalog: published plans, newest
// drop first.  Empty filter values match everything; non-empty sala
// and location filter exactly and case-insensitively.
func (r *PlanRepo) ListPublished(ctx context.Context, sala, location string) ([]*model.Plan, error) {
	q := `SELECT ` + planCols + ` FROM plans WHERE status = ?`
	args := []any{model.PlanPublished}
	if s := strings.TrimSpace(sala); s != "" {
		q += ` AND LOWER(sala) = LOWER(?)`
		args = append(args, s)
	}
	if l := strings.TrimSpace(location); l != "" {
		q += ` AND LOWER(location) = LOWER(?)`
		args = append(args, l)
	}
	q += ` ORDER BY drop_number DESC`
	return r.list(ctx, q, args...)
}

// ListFeatured returns published plans flagged for the landing page.
func (r *PlanRepo) ListFeatured(ctx context.Context) ([]*model.Plan, error) {
	q := `SELECT ` + planCols + ` FROM plans WHERE status = ? AND featured = 1 ORDER BY drop_number DESC`
	return r.list(ctx, q, model.PlanPublished)
}

// ListByHost returns all of a host's plans in any status, newest first.
func (r *PlanRepo) ListByHost(ctx context.Context, hostID uint64) ([]*model.Plan, error) {
	q := `SELECT ` + planCols + ` FROM plans WHERE host_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, hostID)
}

func (r *PlanRepo) list(ctx context.Context, q string, args ...any) ([]*model.Plan, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateTx inserts a plan inside an existing transaction, first
// claiming the next drop number from the drop_numbers ledger.  The
// ledger is an AUTO_INCREMENT table so concurrent approvals can never
// be assigned the same number; computing MAX(drop_number)+1 here
// would race.  On success the plan's ID and DropNumber are populated.
func (r *PlanRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Plan) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO drop_numbers () VALUES ()`)
	if err != nil {
		return err
	}
	drop, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.DropNumber = uint64(drop)

	timeSlots, err := jsonCol(p.TimeSlots)
	if err != nil {
		return err
	}
	schedule, err := jsonCol(p.Schedule)
	if err != nil {
		return err
	}
	days, err := jsonCol(p.DaysOfWeek)
	if err != nil {
		return err
	}
	media, err := jsonCol(p.MediaURLs)
	if err != nil {
		return err
	}
	badges, err := jsonCol(p.Badges)
	if err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = model.PlanDraft
	}

	const q = `INSERT INTO plans
		(application_id, host_id, title, description, short_description, sala,
		 location, price_clp, capacity, time_slots, schedule, days_of_week,
		 media_urls, badges, duration_minutes, is_nominal, featured, drop_number, status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err = tx.ExecContext(ctx, q,
		p.ApplicationID, p.HostID, p.Title, p.Description, p.ShortDesc, p.Sala,
		p.Location, p.PriceCLP, p.Capacity, timeSlots, schedule, days,
		media, badges, p.DurationMin, p.IsNominal, p.Featured, p.DropNumber, p.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// SetStatus moves a plan through its lifecycle.  The current status
// is read under a row lock so two concurrent transitions serialize;
// transitions not in the lifecycle table fail with
// ErrInvalidTransition.  published_at is stamped on the first publish
// only and survives pause/republish cycles.
func (r *PlanRepo) SetStatus(ctx context.Context, planID uint64, next model.PlanStatus) (*model.Plan, error) {
	if !next.Valid() {
		return nil, ErrInvalidTransition
	}
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

	var (
		current   model.PlanStatus
		published sql.NullTime
		price     int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT status, published_at, price_clp FROM plans WHERE id = ? FOR UPDATE`, planID).
		Scan(&current, &published, &price)
	if err == sql.ErrNoRows {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	if !current.CanTransition(next) {
		return nil, ErrInvalidTransition
	}
	// A published plan is sellable; a zero price must never reach the
	// catalog even if intake validation let one through.
	if next == model.PlanPublished && price <= 0 {
		return nil, ErrPlanUnpriced
	}

	if next == model.PlanPublished && !published.Valid {
		_, err = tx.ExecContext(ctx,
			`UPDATE plans SET status = ?, published_at = NOW() WHERE id = ?`, next, planID)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE plans SET status = ? WHERE id = ?`, next, planID)
	}
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, planID)
}

// SetFeatured toggles the landing-page flag.
func (r *PlanRepo) SetFeatured(ctx context.Context, planID uint64, featured bool) error {
	var id uint64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM plans WHERE id = ? LIMIT 1`, planID).Scan(&id)
	if err == sql.ErrNoRows {
		return ErrPlanNotFound
	}
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE plans SET featured = ? WHERE id = ?`, featured, planID)
	return err
}
