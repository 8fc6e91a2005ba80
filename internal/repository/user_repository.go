package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/venue-booking/internal/model"
)

// UserRepo persists rows of the users table.
type UserRepo struct{ sqlBase }

const userCols = "id, name, email, password_hash, phone, role, account_status, created_at"

func scanUser(s rowScanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.AccountStatus, &u.CreatedAt)
	return u, err
}

// normalizeEmail lower-cases and trims an address.
func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts a user and returns its ID.  PasswordHash must already
// be a bcrypt hash.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if u.AccountStatus == "" {
		u.AccountStatus = model.AccountActive
	}
	id, err := r.d.insert(ctx, r.q,
		"INSERT INTO users (name, email, password_hash, phone, role, account_status) VALUES (?,?,?,?,?,?)",
		strings.TrimSpace(u.Name), normalizeEmail(u.Email), u.PasswordHash, u.Phone, u.Role, u.AccountStatus)
	if isDuplicate(err) {
		return 0, ErrEmailExists
	}
	return id, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.queryRow(ctx, "SELECT "+userCols+" FROM users WHERE email = ? LIMIT 1", normalizeEmail(email)))
	return u, notFound(err)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.queryRow(ctx, "SELECT "+userCols+" FROM users WHERE id = ?", id))
	return u, notFound(err)
}

// GetForUpdate fetches and locks a user row.  Request creation takes it
// so two submissions of the same user are evaluated one after another.
func (r *UserRepo) GetForUpdate(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.queryRow(ctx, "SELECT "+userCols+" FROM users WHERE id = ? FOR UPDATE", id))
	return u, notFound(err)
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.query(ctx, "SELECT "+userCols+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update writes the editable profile fields and the role.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	err := r.execOne(ctx, "UPDATE users SET name = ?, email = ?, phone = ?, role = ? WHERE id = ?",
		strings.TrimSpace(u.Name), normalizeEmail(u.Email), u.Phone, u.Role, u.ID)
	if isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// SetStatus activates or suspends an account.
func (r *UserRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	return r.execOne(ctx, "UPDATE users SET account_status = ? WHERE id = ?", status, id)
}

func (r *UserRepo) SetPassword(ctx context.Context, id uint64, hash string) error {
	return r.execOne(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, id)
}

// Delete removes the user and every row owned by them.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	for _, q := range []string{
		"DELETE FROM notifications WHERE user_id = ?",
		"DELETE FROM requests WHERE user_id = ?",
		"DELETE FROM reports WHERE user_id = ?",
		"DELETE FROM refresh_tokens WHERE user_id = ?",
	} {
		if _, err := r.exec(ctx, q, id); err != nil {
			return err
		}
	}
	return r.execOne(ctx, "DELETE FROM users WHERE id = ?", id)
}
