package repository

import (
	"context"
	"time"

	"github.com/iliyamo/venue-booking/internal/model"
)

// ReportRepo persists support reports.
type ReportRepo struct{ sqlBase }

// Create inserts a report and returns its id.
func (r *ReportRepo) Create(ctx context.Context, rep model.Report) (uint64, error) {
	if rep.Status == "" {
		rep.Status = model.ReportPending
	}
	return r.d.insert(ctx, r.q,
		"INSERT INTO reports (user_id, type, message, status, created_at) VALUES (?,?,?,?,?)",
		rep.UserID, rep.Type, rep.Message, rep.Status, rep.CreatedAt)
}

// Get returns one report.
func (r *ReportRepo) Get(ctx context.Context, id uint64) (model.Report, error) {
	var rep model.Report
	err := r.queryRow(ctx, "SELECT id, user_id, type, message, status, created_at FROM reports WHERE id = ?", id).
		Scan(&rep.ID, &rep.UserID, &rep.Type, &rep.Message, &rep.Status, &rep.CreatedAt)
	return rep, notFound(err)
}

// List returns all reports with the reporter's name and email.
func (r *ReportRepo) List(ctx context.Context) ([]model.ReportView, error) {
	rows, err := r.query(ctx, `SELECT rp.id, rp.user_id, rp.type, rp.message, rp.status, rp.created_at, u.name, u.email
        FROM reports rp JOIN users u ON u.id = rp.user_id
        ORDER BY rp.created_at DESC, rp.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReportView
	for rows.Next() {
		var v model.ReportView
		if err := rows.Scan(&v.ID, &v.UserID, &v.Type, &v.Message, &v.Status, &v.CreatedAt, &v.UserName, &v.UserEmail); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SetStatus updates the status of a report.
func (r *ReportRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	return r.execOne(ctx, "UPDATE reports SET status = ? WHERE id = ?", status, id)
}

// Delete removes a report.
func (r *ReportRepo) Delete(ctx context.Context, id uint64) error {
	return r.execOne(ctx, "DELETE FROM reports WHERE id = ?", id)
}

// LastCreatedAt returns when the user last filed a report.
func (r *ReportRepo) LastCreatedAt(ctx context.Context, userID uint64) (time.Time, error) {
	return lastCreated(ctx, r.sqlBase, "SELECT MAX(created_at) FROM reports WHERE user_id = ?", userID)
}
