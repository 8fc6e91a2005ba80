package model

import "time"

// ContactMessage is a message sent through the public contact form.
type ContactMessage struct {
	ID        uint64    // contact_messages.id
	Name      string    // contact_messages.name
	Email     string    // contact_messages.email
	Subject   string    // contact_messages.subject
	Message   string    // contact_messages.message
	Read      bool      // contact_messages.is_read
	CreatedAt time.Time // contact_messages.created_at
}
