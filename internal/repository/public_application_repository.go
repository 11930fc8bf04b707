package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/utils"
)

// PublicApplicationRepo handles the no-account application wizard.
// Public applicants have no user row until an admin approves them, at
// which point approval provisions the whole host side up front: an
// inactive account to anchor the onboarding invite, the host, a
// migrated internal application, and the draft plan.
type PublicApplicationRepo struct {
	db    *sql.DB
	plans *PlanRepo
	hosts *HostRepo
}

// NewPublicApplicationRepo constructs a PublicApplicationRepo.
func NewPublicApplicationRepo(db *sql.DB, plans *PlanRepo, hosts *HostRepo) *PublicApplicationRepo {
	return &PublicApplicationRepo{db: db, plans: plans, hosts: hosts}
}

const publicApplicationCols = `id, experience_name, email, phone, host_name,
	location, description, commercial_contact, daily_capacity, price_clp,
	schedule, days_of_week, media_urls, exclusivity_confirmed, status,
	admin_comment, reviewed_by, reviewed_at, created_at`

func scanPublicApplication(rs rowScanner) (*model.PublicApplication, error) {
	var (
		a          model.PublicApplication
		schedule   []byte
		days       []byte
		media      []byte
		reviewedBy sql.NullInt64
		reviewedAt sql.NullTime
	)
	err := rs.Scan(
		&a.ID, &a.ExperienceName, &a.Email, &a.Phone, &a.HostName,
		&a.Location, &a.Description, &a.CommercialContact, &a.DailyCapacity, &a.PriceCLP,
		&schedule, &days, &media, &a.ExclusivityConfirmed, &a.Status,
		&a.AdminComment, &reviewedBy, &reviewedAt, &a.CreatedAt,
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

// Create inserts a public application from the wizard.
func (r *PublicApplicationRepo) Create(ctx context.Context, a *model.PublicApplication) error {
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
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.Status = model.ApplicationPending
	const q = `INSERT INTO public_applications
		(experience_name, email, phone, host_name, location, description,
		 commercial_contact, daily_capacity, price_clp, schedule, days_of_week,
		 media_urls, exclusivity_confirmed, status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		a.ExperienceName, a.Email, a.Phone, a.HostName, a.Location, a.Description,
		a.CommercialContact, a.DailyCapacity, a.PriceCLP, schedule, days,
		media, a.ExclusivityConfirmed, a.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID fetches a single public application.
func (r *PublicApplicationRepo) GetByID(ctx context.Context, id uint64) (*model.PublicApplication, error) {
	q := `SELECT ` + publicApplicationCols + ` FROM public_applications WHERE id = ? LIMIT 1`
	a, err := scanPublicApplication(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrApplicationNotFound
	}
	return a, err
}

// ListByStatus returns public applications in review order.  An
// empty status lists everything.
func (r *PublicApplicationRepo) ListByStatus(ctx context.Context, status model.ApplicationStatus) ([]*model.PublicApplication, error) {
	q := `SELECT ` + publicApplicationCols + ` FROM public_applications`
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
	var out []*model.PublicApplication
	for rows.Next() {
		a, err := scanPublicApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Approve accepts a public application.  In one transaction it
// provisions an inactive user account for the applicant's email (an
// existing account is reused), creates the host, migrates the
// submission into an approved internal application, and instantiates
// the draft plan with the reviewer's sala.  Only account activation
// and the legal profile are left to onboarding completion; the draft
// plan stays unpublished and harmless if the invite is never used.
// Returns the user ID.  The caller issues the invite afterwards.
func (r *PublicApplicationRepo) Approve(ctx context.Context, appID, reviewerID uint64, sala string, comment *string) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	q := `SELECT ` + publicApplicationCols + ` FROM public_applications WHERE id = ? FOR UPDATE`
	pub, err := scanPublicApplication(tx.QueryRowContext(ctx, q, appID))
	if err == sql.ErrNoRows {
		return 0, ErrApplicationNotFound
	}
	if err != nil {
		return 0, err
	}
	if pub.Status.Terminal() {
		return 0, ErrConflict
	}

	var userID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = ? LIMIT 1`, pub.Email).Scan(&userID)
	switch {
	case err == sql.ErrNoRows:
		// No password yet: the account stays inactive until the
		// applicant completes onboarding through their invite.
		res, err := tx.ExecContext(ctx,
			`INSERT INTO users (email, password_hash, role, is_active) VALUES (?,?,?,0)`,
			pub.Email, "", model.RoleUser)
		if err != nil {
			return 0, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		userID = uint64(id)
	case err != nil:
		return 0, err
	}

	if _, err = r.provisionHostTx(ctx, tx, pub, userID, reviewerID, sala); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE public_applications SET status = ?, admin_comment = ?,
		 reviewed_by = ?, reviewed_at = NOW() WHERE id = ?`,
		model.ApplicationApproved, comment, reviewerID, appID); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return userID, nil
}

// provisionHostTx creates the host row, the migrated internal
// application, and its draft plan for an approved public submission.
func (r *PublicApplicationRepo) provisionHostTx(ctx context.Context, tx *sql.Tx, pub *model.PublicApplication, userID, reviewerID uint64, sala string) (*model.Host, error) {
	name := pub.HostName
	if name == "" {
		name = pub.ExperienceName
	}
	h := &model.Host{
		UserID:       userID,
		BusinessName: name,
		Slug:         utils.Slugify(name),
		Status:       model.HostActive,
	}
	if err := r.hosts.CreateTx(ctx, tx, h); err != nil {
		if !isDuplicate(err) {
			return nil, err
		}
		h.Slug = utils.UniqueSlug(name)
		if err := r.hosts.CreateTx(ctx, tx, h); err != nil {
			return nil, err
		}
	}

	schedule, err := jsonCol(pub.Schedule)
	if err != nil {
		return nil, err
	}
	days, err := jsonCol(pub.DaysOfWeek)
	if err != nil {
		return nil, err
	}
	media, err := jsonCol(pub.MediaURLs)
	if err != nil {
		return nil, err
	}
	const insApp = `INSERT INTO applications
		(host_id, experience_name, location, description, commercial_contact,
		 daily_capacity, price_clp, schedule, days_of_week, media_urls, status,
		 reviewed_by, reviewed_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,NOW())`
	res, err := tx.ExecContext(ctx, insApp,
		h.ID, pub.ExperienceName, pub.Location, pub.Description, pub.CommercialContact,
		pub.DailyCapacity, pub.PriceCLP, schedule, days, media,
		model.ApplicationApproved, reviewerID)
	if err != nil {
		return nil, err
	}
	appID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	migrated := uint64(appID)
	plan := &model.Plan{
		ApplicationID: &migrated,
		HostID:        h.ID,
		Title:         pub.ExperienceName,
		Description:   pub.Description,
		ShortDesc:     shortDescription(pub.Description),
		Sala:          sala,
		Location:      pub.Location,
		PriceCLP:      pub.PriceCLP,
		Capacity:      pub.DailyCapacity,
		Schedule:      pub.Schedule,
		DaysOfWeek:    pub.DaysOfWeek,
		MediaURLs:     pub.MediaURLs,
		Status:        model.PlanDraft,
	}
	if err := r.plans.CreateTx(ctx, tx, plan); err != nil {
		return nil, err
	}
	return h, nil
}

// Reject closes a public application with an internal comment.
func (r *PublicApplicationRepo) Reject(ctx context.Context, appID, reviewerID uint64, comment *string) error {
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
		`SELECT status FROM public_applications WHERE id = ? FOR UPDATE`, appID).Scan(&status)
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
		`UPDATE public_applications SET status = ?, admin_comment = ?,
		 reviewed_by = ?, reviewed_at = NOW() WHERE id = ?`,
		model.ApplicationRejected, comment, reviewerID, appID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
