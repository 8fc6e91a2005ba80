// Package queue moves outbound email through RabbitMQ so that request
// handlers never wait on SMTP.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/venue-booking/internal/notify"
)

// DefaultMailQueue is the durable queue mail events are published to.
const DefaultMailQueue = "venue.mail"

// MailEvent is one email waiting for delivery.  Kind names what caused
// it (request_received, request_approved, ...) and is written to the
// audit log by the consumer.
type MailEvent struct {
	ID        string       `json:"id"`
	Kind      string       `json:"kind"`
	Email     notify.Email `json:"email"`
	CreatedAt string       `json:"created_at"`
}

// NewMailEvent stamps m with a fresh id and time.
func NewMailEvent(kind string, m notify.Email, now time.Time) MailEvent {
	if kind == "" {
		kind = "email"
	}
	return MailEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Email:     m,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
}
