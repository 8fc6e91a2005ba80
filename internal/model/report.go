package model

import "time"

// Report states.
const (
	ReportPending  = "pending"
	ReportResolved = "resolved"
)

// Report is a support ticket filed by a logged in user.
type Report struct {
	ID        uint64    // reports.id
	UserID    uint64    // reports.user_id
	Type      string    // reports.type
	Message   string    // reports.message
	Status    string    // reports.status
	CreatedAt time.Time // reports.created_at
}

// ReportView adds the reporter's display data for admin listings.
type ReportView struct {
	Report
	UserName  string // users.name
	UserEmail string // users.email
}
