package repository

import (
	"context"
	"database/sql"

	"github.com/thelistcl/marketplace-api/internal/model"
)

// MessageRepo stores host-to-admin notes, e.g. a request to change a
// published plan.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo constructs a MessageRepo with the given DB handle.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts a message and populates its ID.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (host_id, sender_id, content) VALUES (?,?,?)`,
		m.HostID, m.SenderID, m.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ListByHost returns a host's messages, newest first.
func (r *MessageRepo) ListByHost(ctx context.Context, hostID uint64) ([]*model.Message, error) {
	return r.list(ctx,
		`SELECT id, host_id, sender_id, content, is_read, created_at
		 FROM messages WHERE host_id = ? ORDER BY created_at DESC`, hostID)
}

// ListUnread returns all unread messages across hosts for the admin
// inbox, oldest first.
func (r *MessageRepo) ListUnread(ctx context.Context) ([]*model.Message, error) {
	return r.list(ctx,
		`SELECT id, host_id, sender_id, content, is_read, created_at
		 FROM messages WHERE is_read = 0 ORDER BY created_at`)
}

// MarkRead flags a message as handled.
func (r *MessageRepo) MarkRead(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = 1 WHERE id = ?`, id)
	return err
}

func (r *MessageRepo) list(ctx context.Context, q string, args ...any) ([]*model.Message, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.HostID, &m.SenderID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
