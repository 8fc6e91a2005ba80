package model

import "time"

// Request states.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// Request is a user's reservation request for a venue, stored in the
// `requests` table.  The occupied interval is derived from StartDate and
// DurationDays; the end date is never stored.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – owner of the request.
//  VenueID         – venue being requested.
//  EventType       – kind of event (wedding, conference, ...).
//  StartDate       – first day of the event, UTC midnight.
//  DurationDays    – number of days, at least one.
//  TimeOfDay       – preferred time slot.
//  Guests          – expected guest count.
//  TotalPrice      – estimated price at submission time.
//  SpecialRequests – free text.
//  Status          – pending, approved or rejected.
//  CreatedAt       – submission time, used for the cooldown.
//  UserRead        – whether the owner has seen the latest decision.
type Request struct {
	ID              uint64    // requests.id
	UserID          uint64    // requests.user_id
	VenueID         uint64    // requests.venue_id
	EventType       string    // requests.event_type
	StartDate       time.Time // requests.start_date
	DurationDays    int       // requests.duration_days
	TimeOfDay       string    // requests.time_of_day
	Guests          int       // requests.guests
	TotalPrice      float64   // requests.total_price
	SpecialRequests string    // requests.special_requests
	Status          string    // requests.status
	CreatedAt       time.Time // requests.created_at
	UserRead        bool      // requests.user_read
}

// EndDate returns the last occupied day (inclusive).
func (r Request) EndDate() time.Time {
	return r.StartDate.AddDate(0, 0, r.DurationDays-1)
}

// IsPending reports whether the request still awaits a decision.
func (r Request) IsPending() bool { return r.Status == RequestPending }

// RequestView is a Request joined with the owner and venue display data
// used by admin listings, notifications and emails.
type RequestView struct {
	Request
	UserName  string // users.name
	UserEmail string // users.email
	UserPhone string // users.phone
	VenueName string // venues.name
}
