package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/utils"
)

// ApplicationRepo handles host applications, both the authenticated
// kind and the public no-account wizard, along with the admin review
// transactions.  Approval is the only code path that creates plans.
type ApplicationRepo struct {
	db    *sql.DB
	plans *PlanRepo
	hosts *HostRepo
}

// NewApplicationRepo constructs an ApplicationRepo.  Approval writes
// through the plan and host repositories inside its own transaction.
func NewApplicationRepo(db *sql.DB, plans *PlanRepo, hosts *HostRepo) *ApplicationRepo {
	return &ApplicationRepo{db: db, plans: plans, hosts: hosts}
}

const applicationCols = `id, host_id, experience_name, location, description,
	commercial_contact, daily_capacity, price_clp, schedule, days_of_week,
	media_urls, status, admin_comment, admin_message, reviewed_by, reviewed_at,
	created_at`

func scanApplication(rs rowScanner) (*model.Application, error) {
	var (
		a          model.Application
		schedule   []byte
		days       []byte
		media      []byte
		reviewedBy sql.NullInt64
		reviewedAt sql.NullTime
	)
	err := rs.Scan(
		&a.ID, &a.HostID, &a.ExperienceName, &a.Location, &a.Description,
		&a.CommercialContact, &a.DailyCapacity, &a.PriceCLP, &schedule, &days,
		&media, &a.Status, &a.AdminComment, &a.AdminMessage, &reviewedBy, &reviewedAt,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reviewedBy.Valid {
		v := uint64(reviewedBy.Int64)
		a.ReviewedBy = &v
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		a.ReviewedAt = &t
	}
	if err := scanJSON(schedule, &a.Schedule); err != nil {
		return nil, err
	}
	if err := scanJSON(days, &a.DaysOfWeek); err != nil {
		return nil, err
	}
	if err := scanJSON(media, &a.MediaURLs); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create submits an authenticated application.  On the user's first
// application a pending host row is created for them and their role
// is promoted from user to host; later applications reuse the host.
// Everything happens in one transaction.
func (r *ApplicationRepo) Create(ctx context.Context, userID uint64, a *model.Application) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var hostID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM hosts WHERE user_id = ? LIMIT 1`, userID).Scan(&hostID)
	switch {
	case err == sql.ErrNoRows:
		h := &model.Host{
			UserID:       userID,
			BusinessName: a.ExperienceName,
			Slug:         utils.Slugify(a.ExperienceName),
			Status:       model.HostPending,
		}
		if err := r.hosts.CreateTx(ctx, tx, h); err != nil {
			if isDuplicate(err) {
				h.Slug = utils.UniqueSlug(a.ExperienceName)
				err = r.hosts.CreateTx(ctx, tx, h)
			}
			if err != nil {
				return err
			}
		}
		hostID = h.ID
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET role = ? WHERE id = ? AND role = ?`,
			model.RoleHost, userID, model.RoleUser); err != nil {
			return err
		}
	case err != nil:
		return err
	}
	a.HostID = hostID
	a.Status = model.ApplicationPending

	schedule, err := jsonCol(a.Schedule)
	if err != nil {
		return err
	}
	days, err := jsonCol(a.DaysOfWeek)
	if err != nil {
		return err
	}
	media, err := jsonCol(a.MediaURLs)
	if err != nil {
		return err
	}
	const q = `INSERT INTO applications
		(host_id, experience_name, location, description, commercial_contact,
		 daily_capacity, price_clp, schedule, days_of_week, media_urls, status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		a.HostID, a.ExperienceName, a.Location, a.Description, a.CommercialContact,
		a.DailyCapacity, a.PriceCLP, schedule, days, media, a.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a single application.
func (r *ApplicationRepo) GetByID(ctx context.Context, id uint64) (*model.Application, error) {
	q := `SELECT ` + applicationCols + ` FROM applications WHERE id = ? LIMIT 1`
	a, err := scanApplication(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrApplicationNotFound
	}
	return a, err
}

// ListByStatus returns applications in the given review state, oldest
// first so reviewers work the queue in order.  An empty status lists
// everything.
func (r *ApplicationRepo) ListByStatus(ctx context.Context, status model.ApplicationStatus) ([]*model.Application, error) {
	q := `SELECT ` + applicationCols + ` FROM applications`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListByHost returns a host's own applications, newest first.
func (r *ApplicationRepo) ListByHost(ctx context.Context, hostID uint64) ([]*model.Application, error) {
	q := `SELECT ` + applicationCols + ` FROM applications WHERE host_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Approve accepts a pending application: activates its host, creates
// a draft plan carrying the proposed fields and the next drop number,
// and stamps the reviewer.  The sala is chosen by the reviewer, not
// taken from the submission.  The row is locked for the duration so a
// concurrent review of the same application observes the terminal
// state and fails with ErrConflict.  Returns the created plan.
func (r *ApplicationRepo) Approve(ctx context.Context, appID, reviewerID uint64, sala string, comment *string) (*model.Plan, error) {
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

	q := `SELECT ` + applicationCols + ` FROM applications WHERE id = ? FOR UPDATE`
	a, err := scanApplication(tx.QueryRowContext(ctx, q, appID))
	if err == sql.ErrNoRows {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.Status.Terminal() {
		return nil, ErrConflict
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE applications SET status = ?, admin_comment = ?, reviewed_by = ?, reviewed_at = NOW()
		 WHERE id = ?`,
		model.ApplicationApproved, comment, reviewerID, appID); err != nil {
		return nil, err
	}
	if err = r.hosts.SetStatusTx(ctx, tx, a.HostID, model.HostActive); err != nil {
		return nil, err
	}

	plan := planFromApplication(a, sala)
	if err = r.plans.CreateTx(ctx, tx, plan); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return plan, nil
}

// planFromApplication builds the draft plan instantiated by approval.
func planFromApplication(a *model.Application, sala string) *model.Plan {
	appID := a.ID
	return &model.Plan{
		ApplicationID: &appID,
		HostID:        a.HostID,
		Title:         a.ExperienceName,
		Description:   a.Description,
		ShortDesc:     shortDescription(a.Description),
		Sala:          sala,
		Location:      a.Location,
		PriceCLP:      a.PriceCLP,
		Capacity:      a.DailyCapacity,
		Schedule:      a.Schedule,
		DaysOfWeek:    a.DaysOfWeek,
		MediaURLs:     a.MediaURLs,
		Status:        model.PlanDraft,
	}
}

// shortDescription derives the card blurb from the full description.
func shortDescription(desc string) string {
	const max = 100
	r := []rune(desc)
	if len(r) <= max {
		return desc
	}
	return string(r[:max])
}

// Reject closes a pending application with an internal comment and an
// optional message relayed to the applicant.
func (r *ApplicationRepo) Reject(ctx context.Context, appID, reviewerID uint64, comment, message *string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var status model.ApplicationStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM applications WHERE id = ? FOR UPDATE`, appID).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrApplicationNotFound
	}
	if err != nil {
		return err
	}
	if status.Terminal() {
		return ErrConflict
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE applications SET status = ?, admin_comment = ?, admin_message = ?,
		 reviewed_by = ?, reviewed_at = NOW() WHERE id = ?`,
		model.ApplicationRejected, comment, message, reviewerID, appID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// isDuplicate recognizes MySQL duplicate-key failures (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
