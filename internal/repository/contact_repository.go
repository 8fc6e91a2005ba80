package repository

import (
	"context"
	"time"

	"github.com/iliyamo/venue-booking/internal/model"
)

// ContactRepo persists messages from the public contact form.
type ContactRepo struct{ sqlBase }

const contactCols = "id, name, email, subject, message, is_read, created_at"

func scanContact(s rowScanner) (model.ContactMessage, error) {
	var m model.ContactMessage
	err := s.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Read, &m.CreatedAt)
	return m, err
}

// Create inserts a message and returns its id.
func (r *ContactRepo) Create(ctx context.Context, m model.ContactMessage) (uint64, error) {
	return r.d.insert(ctx, r.q,
		"INSERT INTO contact_messages (name, email, subject, message, created_at) VALUES (?,?,?,?,?)",
		m.Name, normalizeEmail(m.Email), m.Subject, m.Message, m.CreatedAt)
}

// Get returns one message.
func (r *ContactRepo) Get(ctx context.Context, id uint64) (model.ContactMessage, error) {
	m, err := scanContact(r.queryRow(ctx, "SELECT "+contactCols+" FROM contact_messages WHERE id = ?", id))
	return m, notFound(err)
}

// List returns all messages, newest first.
func (r *ContactRepo) List(ctx context.Context) ([]model.ContactMessage, error) {
	rows, err := r.query(ctx, "SELECT "+contactCols+" FROM contact_messages ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ContactMessage
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead flags a message as read.
func (r *ContactRepo) MarkRead(ctx context.Context, id uint64) error {
	return r.execOne(ctx, "UPDATE contact_messages SET is_read = TRUE WHERE id = ?", id)
}

// LastCreatedAtByEmail returns when the sender last wrote in.
func (r *ContactRepo) LastCreatedAtByEmail(ctx context.Context, email string) (time.Time, error) {
	return lastCreated(ctx, r.sqlBase, "SELECT MAX(created_at) FROM contact_messages WHERE email = ?", normalizeEmail(email))
}
