package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/thelistcl/marketplace-api/internal/model"
	"github.com/thelistcl/marketplace-api/internal/onboarding"
)

// InviteRepo persists onboarding invites and runs the completion
// transaction that turns an approved applicant into an active host.
type InviteRepo struct {
	db    *sql.DB
	hosts *HostRepo
}

// NewInviteRepo constructs an InviteRepo.
func NewInviteRepo(db *sql.DB, hosts *HostRepo) *InviteRepo {
	return &InviteRepo{db: db, hosts: hosts}
}

const inviteCols = `id, application_id, application_type, email, token,
	expires_at, used_at, created_by, created_at`

func scanInvite(rs rowScanner) (*model.OnboardingInvite, error) {
	var (
		inv    model.OnboardingInvite
		usedAt sql.NullTime
	)
	err := rs.Scan(
		&inv.ID, &inv.ApplicationID, &inv.ApplicationType, &inv.Email, &inv.Token,
		&inv.ExpiresAt, &usedAt, &inv.CreatedBy, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if usedAt.Valid {
		t := usedAt.Time
		inv.UsedAt = &t
	}
	return &inv, nil
}

// CreateInvite inserts an invite and populates its ID.
func (r *InviteRepo) CreateInvite(ctx context.Context, inv *model.OnboardingInvite) error {
	const q = `INSERT INTO onboarding_invites
		(application_id, application_type, email, token, expires_at, created_by)
		VALUES (?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		inv.ApplicationID, inv.ApplicationType, inv.Email, inv.Token,
		inv.ExpiresAt, inv.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	inv.ID = uint64(id)
	return nil
}

// InviteByToken fetches an invite by its bearer token.
func (r *InviteRepo) InviteByToken(ctx context.Context, token string) (*model.OnboardingInvite, error) {
	q := `SELECT ` + inviteCols + ` FROM onboarding_invites WHERE token = ? LIMIT 1`
	inv, err := scanInvite(r.db.QueryRowContext(ctx, q, token))
	if err == sql.ErrNoRows {
		return nil, onboarding.ErrTokenNotFound
	}
	return inv, err
}

// InviteByID fetches an invite by primary key.
func (r *InviteRepo) InviteByID(ctx context.Context, id uint64) (*model.OnboardingInvite, error) {
	q := `SELECT ` + inviteCols + ` FROM onboarding_invites WHERE id = ? LIMIT 1`
	inv, err := scanInvite(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, onboarding.ErrInviteNotFound
	}
	return inv, err
}

// List returns every invite, newest first, for the admin dashboard.
func (r *InviteRepo) List(ctx context.Context) ([]*model.OnboardingInvite, error) {
	q := `SELECT ` + inviteCols + ` FROM onboarding_invites ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.OnboardingInvite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Rotate marks the old invite used and inserts its replacement in one
// transaction, so the swap is all-or-nothing.
func (r *InviteRepo) Rotate(ctx context.Context, oldID uint64, repl *model.OnboardingInvite) error {
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

	res, err := tx.ExecContext(ctx,
		`UPDATE onboarding_invites SET used_at = NOW() WHERE id = ? AND used_at IS NULL`, oldID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return onboarding.ErrInviteNotFound
	}

	const q = `INSERT INTO onboarding_invites
		(application_id, application_type, email, token, expires_at, created_by)
		VALUES (?,?,?,?,?,?)`
	out, err := tx.ExecContext(ctx, q,
		repl.ApplicationID, repl.ApplicationType, repl.Email, repl.Token,
		repl.ExpiresAt, repl.CreatedBy)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	repl.ID = uint64(id)
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// MarkUsed stamps an invite as consumed.
func (r *InviteRepo) MarkUsed(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE onboarding_invites SET used_at = NOW() WHERE id = ? AND used_at IS NULL`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return onboarding.ErrInviteNotFound
	}
	return nil
}

// OnboardingCompletion is the payload an approved applicant submits
// through their invite link: the account password plus the business
// and legal/banking data for the host profile.
type OnboardingCompletion struct {
	PasswordHash  string // bcrypt hash, computed by the handler
	BusinessName  string
	TagLine       *string
	Phone         *string
	Instagram     *string
	Website       *string
	LegalName     string
	RUT           string
	LegalRepName  string
	LegalRepRUT   string
	BankName      string
	BankAccount   string
	BankType      string
	TermsAccepted bool
}

// CompleteOnboarding finishes the invite flow in a single
// transaction: re-validates the token under a row lock, activates the
// account with the chosen password, updates the host (created at
// approval time) with the submitted contact fields, records the
// legal/banking profile, and finally marks the invite used.  Any
// failure rolls the whole flow back so the token stays valid for a
// retry.
func (r *InviteRepo) CompleteOnboarding(ctx context.Context, token string, c OnboardingCompletion) (*model.Host, error) {
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

	q := `SELECT ` + inviteCols + ` FROM onboarding_invites WHERE token = ? FOR UPDATE`
	inv, err := scanInvite(tx.QueryRowContext(ctx, q, token))
	if err == sql.ErrNoRows {
		return nil, onboarding.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	if inv.UsedAt != nil {
		return nil, onboarding.ErrTokenAlreadyUsed
	}
	if !time.Now().UTC().Before(inv.ExpiresAt) {
		return nil, onboarding.ErrTokenExpired
	}

	var userID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = ? LIMIT 1`, inv.Email).Scan(&userID)
	if err == sql.ErrNoRows {
		return nil, ErrHostNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, role = ?, is_active = 1 WHERE id = ?`,
		c.PasswordHash, model.RoleHost, userID); err != nil {
		return nil, err
	}

	var host *model.Host
	switch inv.ApplicationType {
	case model.InviteInternal:
		var hostID uint64
		err = tx.QueryRowContext(ctx,
			`SELECT host_id FROM applications WHERE id = ? LIMIT 1`, inv.ApplicationID).Scan(&hostID)
		if err == sql.ErrNoRows {
			return nil, ErrApplicationNotFound
		}
		if err != nil {
			return nil, err
		}
		if err = r.hosts.SetStatusTx(ctx, tx, hostID, model.HostActive); err != nil {
			return nil, err
		}
		host = &model.Host{ID: hostID, UserID: userID, Status: model.HostActive}
	case model.InvitePublic:
		// The host row was provisioned when the admin approved the
		// public submission; completion only fills in what the
		// applicant chose.
		var hostID uint64
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM hosts WHERE user_id = ? LIMIT 1`, userID).Scan(&hostID)
		if err == sql.ErrNoRows {
			return nil, ErrHostNotFound
		}
		if err != nil {
			return nil, err
		}
		if c.BusinessName != "" {
			if _, err = tx.ExecContext(ctx,
				`UPDATE hosts SET business_name = ? WHERE id = ?`,
				c.BusinessName, hostID); err != nil {
				return nil, err
			}
		}
		if err = r.hosts.SetStatusTx(ctx, tx, hostID, model.HostActive); err != nil {
			return nil, err
		}
		host = &model.Host{ID: hostID, UserID: userID, Status: model.HostActive}
	default:
		return nil, onboarding.ErrInviteNotFound
	}
	host.TagLine = c.TagLine
	host.Phone = c.Phone
	host.Instagram = c.Instagram
	host.Website = c.Website
	if _, err = tx.ExecContext(ctx,
		`UPDATE hosts SET tagline = ?, phone = ?, instagram = ?, website = ? WHERE id = ?`,
		c.TagLine, c.Phone, c.Instagram, c.Website, host.ID); err != nil {
		return nil, err
	}

	profile := &model.HostProfile{
		HostID:          host.ID,
		LegalName:       c.LegalName,
		RUT:             c.RUT,
		LegalRepName:    c.LegalRepName,
		LegalRepRUT:     c.LegalRepRUT,
		BankName:        c.BankName,
		BankAccount:     c.BankAccount,
		BankType:        c.BankType,
		TermsAcceptedAt: time.Now().UTC(),
		Onboarded:       true,
	}
	if err = r.hosts.CreateProfileTx(ctx, tx, profile); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE onboarding_invites SET used_at = NOW() WHERE id = ? AND used_at IS NULL`, inv.ID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, onboarding.ErrTokenAlreadyUsed
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return host, nil
}
