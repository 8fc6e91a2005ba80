package repository

import (
	"context"
	"time"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
)

// VenueRepository persists venues.
type VenueRepository interface {
	Get(ctx context.Context, id uint64) (model.Venue, error)
	// GetForUpdate reads the venue and locks its row until the
	// surrounding transaction ends.  Every booking decision on a venue
	// takes this lock first.
	GetForUpdate(ctx context.Context, id uint64) (model.Venue, error)
	GetByName(ctx context.Context, name string) (model.Venue, error)
	List(ctx context.Context, includeDeleted bool) ([]model.Venue, error)
	Create(ctx context.Context, v model.Venue) (uint64, error)
	Update(ctx context.Context, v model.Venue) error
	SetStatus(ctx context.Context, id uint64, status string) error
}

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetForUpdate(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// Update writes name, email, phone and role.
	Update(ctx context.Context, u model.User) error
	SetStatus(ctx context.Context, id uint64, status string) error
	SetPassword(ctx context.Context, id uint64, hash string) error
	// Delete removes the user together with their requests,
	// notifications, reports and refresh tokens.
	Delete(ctx context.Context, id uint64) error
}

// RequestRepository persists reservation requests.
type RequestRepository interface {
	Create(ctx context.Context, r model.Request) (uint64, error)
	Get(ctx context.Context, id uint64) (model.Request, error)
	GetForUpdate(ctx context.Context, id uint64) (model.Request, error)
	GetView(ctx context.Context, id uint64) (model.RequestView, error)
	List(ctx context.Context) ([]model.RequestView, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.RequestView, error)
	FindOverlapping(ctx context.Context, q booking.ConflictQuery) ([]model.Request, error)
	CountByStatus(ctx context.Context, userID uint64, status string) (int, error)
	// LastCreatedAt returns the zero time when the user has no requests.
	LastCreatedAt(ctx context.Context, userID uint64) (time.Time, error)
	// SetStatus also clears the read flag so the owner sees the decision.
	SetStatus(ctx context.Context, id uint64, status string) error
	Delete(ctx context.Context, id uint64) error
	MarkRead(ctx context.Context, id, userID uint64) error
}

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n model.Notification) (uint64, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID uint64) error
	MarkAllRead(ctx context.Context, userID uint64) error
	DeleteAll(ctx context.Context, userID uint64) error
}

// ReportRepository persists support reports.
type ReportRepository interface {
	Create(ctx context.Context, r model.Report) (uint64, error)
	Get(ctx context.Context, id uint64) (model.Report, error)
	List(ctx context.Context) ([]model.ReportView, error)
	SetStatus(ctx context.Context, id uint64, status string) error
	Delete(ctx context.Context, id uint64) error
	LastCreatedAt(ctx context.Context, userID uint64) (time.Time, error)
}

// ContactRepository persists contact form messages.
type ContactRepository interface {
	Create(ctx context.Context, m model.ContactMessage) (uint64, error)
	Get(ctx context.Context, id uint64) (model.ContactMessage, error)
	List(ctx context.Context) ([]model.ContactMessage, error)
	MarkRead(ctx context.Context, id uint64) error
	LastCreatedAtByEmail(ctx context.Context, email string) (time.Time, error)
}

// TokenRepository persists refresh token hashes.
type TokenRepository interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	// ValidateRefresh returns the owner of a live token or ErrNotFound.
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// Repos groups the repositories of one unit of work.
type Repos interface {
	Venues() VenueRepository
	Users() UserRepository
	Requests() RequestRepository
	Notifications() NotificationRepository
	Reports() ReportRepository
	Contacts() ContactRepository
	Tokens() TokenRepository
}

// Store is the application's persistence.  Repositories obtained from
// the Store directly run each statement on its own; InTx runs fn inside
// one transaction which is committed when fn returns nil and rolled
// back otherwise.
type Store interface {
	Repos
	InTx(ctx context.Context, fn func(tx Repos) error) error
	Ping(ctx context.Context) error
	Close() error
}
