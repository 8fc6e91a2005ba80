package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
)

// RequestRepo provides access to reservation requests.  Dates are stored
// as DATE columns and the end of a booking is derived in SQL from
// start_date and duration_days so it can never drift.
type RequestRepo struct{ sqlBase }

const requestCols = `r.id, r.user_id, r.venue_id, r.event_type, r.start_date, r.duration_days, r.time_of_day,
       r.guests, r.total_price, r.special_requests, r.status, r.created_at, r.user_read`

const requestViewFrom = ` FROM requests r
       JOIN users u ON u.id = r.user_id
       JOIN venues v ON v.id = r.venue_id`

func scanRequest(s rowScanner) (model.Request, error) {
	var r model.Request
	err := s.Scan(&r.ID, &r.UserID, &r.VenueID, &r.EventType, &r.StartDate, &r.DurationDays, &r.TimeOfDay,
		&r.Guests, &r.TotalPrice, &r.SpecialRequests, &r.Status, &r.CreatedAt, &r.UserRead)
	r.StartDate = booking.Day(r.StartDate)
	return r, err
}

func scanRequestView(s rowScanner) (model.RequestView, error) {
	var rv model.RequestView
	r := &rv.Request
	err := s.Scan(&r.ID, &r.UserID, &r.VenueID, &r.EventType, &r.StartDate, &r.DurationDays, &r.TimeOfDay,
		&r.Guests, &r.TotalPrice, &r.SpecialRequests, &r.Status, &r.CreatedAt, &r.UserRead,
		&rv.UserName, &rv.UserEmail, &rv.UserPhone, &rv.VenueName)
	r.StartDate = booking.Day(r.StartDate)
	return rv, err
}

// Create inserts a request and returns its id.
func (r *RequestRepo) Create(ctx context.Context, req model.Request) (uint64, error) {
	if req.Status == "" {
		req.Status = model.RequestPending
	}
	return r.d.insert(ctx, r.q, `INSERT INTO requests
        (user_id, venue_id, event_type, start_date, duration_days, time_of_day, guests, total_price,
         special_requests, status, created_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		req.UserID, req.VenueID, req.EventType, booking.Day(req.StartDate), req.DurationDays, req.TimeOfDay,
		req.Guests, req.TotalPrice, req.SpecialRequests, req.Status, req.CreatedAt)
}

// Get returns one request.
func (r *RequestRepo) Get(ctx context.Context, id uint64) (model.Request, error) {
	req, err := scanRequest(r.queryRow(ctx, "SELECT "+requestCols+" FROM requests r WHERE r.id = ?", id))
	return req, notFound(err)
}

// GetForUpdate returns one request and locks its row.
func (r *RequestRepo) GetForUpdate(ctx context.Context, id uint64) (model.Request, error) {
	req, err := scanRequest(r.queryRow(ctx, "SELECT "+requestCols+" FROM requests r WHERE r.id = ? FOR UPDATE", id))
	return req, notFound(err)
}

// GetView returns one request with its owner and venue display data.
func (r *RequestRepo) GetView(ctx context.Context, id uint64) (model.RequestView, error) {
	rv, err := scanRequestView(r.queryRow(ctx,
		"SELECT "+requestCols+", u.name, u.email, u.phone, v.name"+requestViewFrom+" WHERE r.id = ?", id))
	return rv, notFound(err)
}

// List returns every request, newest first.
func (r *RequestRepo) List(ctx context.Context) ([]model.RequestView, error) {
	return r.listViews(ctx, "")
}

// ListByUser returns the requests of one user, newest first.
func (r *RequestRepo) ListByUser(ctx context.Context, userID uint64) ([]model.RequestView, error) {
	return r.listViews(ctx, " WHERE r.user_id = ?", userID)
}

func (r *RequestRepo) listViews(ctx context.Context, where string, args ...any) ([]model.RequestView, error) {
	rows, err := r.query(ctx,
		"SELECT "+requestCols+", u.name, u.email, u.phone, v.name"+requestViewFrom+where+
			" ORDER BY r.created_at DESC, r.id DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RequestView
	for rows.Next() {
		rv, err := scanRequestView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// FindOverlapping returns the requests matching q.  Two closed
// intervals overlap when each one starts no later than the other ends.
func (r *RequestRepo) FindOverlapping(ctx context.Context, q booking.ConflictQuery) ([]model.Request, error) {
	var b strings.Builder
	args := make([]any, 0, 8)
	b.WriteString("SELECT " + requestCols + " FROM requests r")
	if len(q.VenueStatuses) > 0 {
		b.WriteString(" JOIN venues v ON v.id = r.venue_id")
	}
	if q.Scope == booking.ScopeUser {
		b.WriteString(" WHERE r.user_id = ?")
	} else {
		b.WriteString(" WHERE r.venue_id = ?")
	}
	args = append(args, q.ScopeID)

	b.WriteString(" AND r.start_date <= ? AND " + r.d.EndDate("r.start_date", "r.duration_days") + " >= ?")
	args = append(args, q.Window.End, q.Window.Start)

	if len(q.Statuses) > 0 {
		b.WriteString(" AND r.status IN (" + placeholders(len(q.Statuses)) + ")")
		for _, s := range q.Statuses {
			args = append(args, s)
		}
	}
	if len(q.VenueStatuses) > 0 {
		b.WriteString(" AND v.status IN (" + placeholders(len(q.VenueStatuses)) + ")")
		for _, s := range q.VenueStatuses {
			args = append(args, s)
		}
	}
	if q.ExcludeID != 0 {
		b.WriteString(" AND r.id <> ?")
		args = append(args, q.ExcludeID)
	}
	b.WriteString(" ORDER BY r.start_date, r.id")

	rows, err := r.query(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// CountByStatus counts the user's requests in one status.
func (r *RequestRepo) CountByStatus(ctx context.Context, userID uint64, status string) (int, error) {
	var n int
	err := r.queryRow(ctx, "SELECT COUNT(*) FROM requests WHERE user_id = ? AND status = ?", userID, status).Scan(&n)
	return n, err
}

// LastCreatedAt returns when the user last submitted a request.
func (r *RequestRepo) LastCreatedAt(ctx context.Context, userID uint64) (time.Time, error) {
	return lastCreated(ctx, r.sqlBase, "SELECT MAX(created_at) FROM requests WHERE user_id = ?", userID)
}

// SetStatus writes a decision and marks it unread for the owner.
func (r *RequestRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	return r.execOne(ctx, "UPDATE requests SET status = ?, user_read = FALSE WHERE id = ?", status, id)
}

// Delete hard deletes a request.
func (r *RequestRepo) Delete(ctx context.Context, id uint64) error {
	return r.execOne(ctx, "DELETE FROM requests WHERE id = ?", id)
}

// MarkRead flags the owner's request as read.
func (r *RequestRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	return r.execOne(ctx, "UPDATE requests SET user_read = TRUE WHERE id = ? AND user_id = ?", id, userID)
}

// lastCreated scans a MAX(created_at) query; NULL becomes the zero time.
func lastCreated(ctx context.Context, b sqlBase, query string, args ...any) (time.Time, error) {
	var t sql.NullTime
	if err := b.queryRow(ctx, query, args...).Scan(&t); err != nil {
		return time.Time{}, err
	}
	if !t.Valid {
		return time.Time{}, nil
	}
	return t.Time.UTC(), nil
}
