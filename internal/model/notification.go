package model

import "time"

// Notification types.
const (
	NotifyRequestReceived = "request_received"
	NotifyRequestApproved = "request_approved"
	NotifyRequestRejected = "request_rejected"
	NotifyReportResolved  = "report_resolved"
)

// Notification is an in-app message owned by one user.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Message   string    // notifications.message
	Type      string    // notifications.type
	Read      bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
