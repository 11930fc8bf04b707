package repository

import (
	"context"
	"database/sql"

	"github.com/thelistcl/marketplace-api/internal/model"
)

// HostRepo provides data access for supplier accounts and their
// legal/banking profiles.
type HostRepo struct {
	db *sql.DB
}

// NewHostRepo constructs a HostRepo with the given DB handle.
func NewHostRepo(db *sql.DB) *HostRepo { return &HostRepo{db: db} }

const hostCols = `id, user_id, business_name, slug, tagline, location, phone,
	instagram, website, status, created_at`

func scanHost(rs rowScanner) (*model.Host, error) {
	var h model.Host
	err := rs.Scan(
		&h.ID, &h.UserID, &h.BusinessName, &h.Slug, &h.TagLine, &h.Location,
		&h.Phone, &h.Instagram, &h.Website, &h.Status, &h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateTx inserts a host inside an existing transaction and
// populates its ID.
func (r *HostRepo) CreateTx(ctx context.Context, tx *sql.Tx, h *model.Host) error {
	if h.Status == "" {
		h.Status = model.HostPending
	}
	const q = `INSERT INTO hosts (user_id, business_name, slug, tagline, location,
		phone, instagram, website, status) VALUES (?,?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		h.UserID, h.BusinessName, h.Slug, h.TagLine, h.Location,
		h.Phone, h.Instagram, h.Website, h.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// GetByID fetches a host by primary key.
func (r *HostRepo) GetByID(ctx context.Context, id uint64) (*model.Host, error) {
	q := `SELECT ` + hostCols + ` FROM hosts WHERE id = ? LIMIT 1`
	h, err := scanHost(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrHostNotFound
	}
	return h, err
}

// GetByUserID fetches the host owned by a user account.
func (r *HostRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Host, error) {
	q := `SELECT ` + hostCols + ` FROM hosts WHERE user_id = ? LIMIT 1`
	h, err := scanHost(r.db.QueryRowContext(ctx, q, userID))
	if err == sql.ErrNoRows {
		return nil, ErrHostNotFound
	}
	return h, err
}

// GetBySlug fetches a host by its public URL handle.
func (r *HostRepo) GetBySlug(ctx context.Context, slug string) (*model.Host, error) {
	q := `SELECT ` + hostCols + ` FROM hosts WHERE slug = ? LIMIT 1`
	h, err := scanHost(r.db.QueryRowContext(ctx, q, slug))
	if err == sql.ErrNoRows {
		return nil, ErrHostNotFound
	}
	return h, err
}

// SetStatusTx changes a host's account state within a transaction.
func (r *HostRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, hostID uint64, status model.HostStatus) error {
	_, err := tx.ExecContext(ctx, `UPDATE hosts SET status = ? WHERE id = ?`, status, hostID)
	return err
}

// UpdateContact updates the host's public contact fields.  Nil
// pointers clear the corresponding column.
func (r *HostRepo) UpdateContact(ctx context.Context, h *model.Host) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE hosts SET tagline = ?, location = ?, phone = ?, instagram = ?, website = ?
		 WHERE id = ?`,
		h.TagLine, h.Location, h.Phone, h.Instagram, h.Website, h.ID)
	return err
}

// CreateProfileTx inserts the legal/banking profile captured at
// onboarding completion.
func (r *HostRepo) CreateProfileTx(ctx context.Context, tx *sql.Tx, p *model.HostProfile) error {
	const q = `INSERT INTO host_profiles (host_id, legal_name, rut, legal_rep_name,
		legal_rep_rut, bank_name, bank_account, bank_type, terms_accepted_at, onboarded)
		VALUES (?,?,?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		p.HostID, p.LegalName, p.RUT, p.LegalRepName, p.LegalRepRUT,
		p.BankName, p.BankAccount, p.BankType, p.TermsAcceptedAt, p.Onboarded)
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

// GetProfile fetches a host's legal/banking profile.
func (r *HostRepo) GetProfile(ctx context.Context, hostID uint64) (*model.HostProfile, error) {
	const q = `SELECT id, host_id, legal_name, rut, legal_rep_name, legal_rep_rut,
		bank_name, bank_account, bank_type, terms_accepted_at, onboarded
		FROM host_profiles WHERE host_id = ? LIMIT 1`
	var p model.HostProfile
	err := r.db.QueryRowContext(ctx, q, hostID).Scan(
		&p.ID, &p.HostID, &p.LegalName, &p.RUT, &p.LegalRepName, &p.LegalRepRUT,
		&p.BankName, &p.BankAccount, &p.BankType, &p.TermsAcceptedAt, &p.Onboarded,
	)
	if err == sql.ErrNoRows {
		return nil, ErrHostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
