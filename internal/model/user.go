package model

import "time"

// Roles and account states stored in users.role and users.account_status.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	AccountActive    = "active"
	AccountSuspended = "suspended"
)

// User represents an application user record as stored in the
// `users` table.  Handlers define their own response types so the
// password hash never leaves the repository layer by accident.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Name          – display name used in notifications and emails.
//  Email         – unique, lower-cased email address.
//  PasswordHash  – bcrypt hashed password.
//  Phone         – optional contact phone.
//  Role          – user or admin.
//  AccountStatus – active or suspended.
//  CreatedAt     – timestamp of creation.
type User struct {
	ID            uint64    // users.id
	Name          string    // users.name
	Email         string    // users.email
	PasswordHash  string    // users.password_hash
	Phone         string    // users.phone
	Role          string    // users.role
	AccountStatus string    // users.account_status
	CreatedAt     time.Time // users.created_at
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsSuspended reports whether the account is blocked from logging in.
func (u User) IsSuspended() bool { return u.AccountStatus == AccountSuspended }

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
