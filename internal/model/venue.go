package model

import "time"

// Venue states.  The status is a display hint for visitors; booking
// conflicts are decided from approved request intervals only.
const (
	VenueAvailable   = "available"
	VenueReserved    = "reserved"
	VenueMaintenance = "maintenance"
	VenueDeleted     = "deleted"
)

// Venue represents a bookable location stored in the `venues` table.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – unique display name; requests may reference it.
//  Address       – street address.
//  Lat, Lng      – coordinates for the map view.
//  Capacity      – maximum number of guests.
//  BasePrice     – price per day.
//  PricePerGuest – surcharge per guest.
//  Description   – free text.
//  Services      – comma separated list of included services.
//  ImageURL      – external image location.
//  OwnerName     – owner contact, admin only.
//  OwnerPhone    – owner contact, admin only.
//  OwnerEmail    – owner contact, admin only.
//  Status        – available, reserved, maintenance or deleted.
//  CreatedAt     – timestamp of creation.
type Venue struct {
	ID            uint64    // venues.id
	Name          string    // venues.name
	Address       string    // venues.address
	Lat           float64   // venues.lat
	Lng           float64   // venues.lng
	Capacity      int       // venues.capacity
	BasePrice     float64   // venues.base_price
	PricePerGuest float64   // venues.price_per_guest
	Description   string    // venues.description
	Services      string    // venues.services
	ImageURL      string    // venues.image_url
	OwnerName     string    // venues.owner_name
	OwnerPhone    string    // venues.owner_phone
	OwnerEmail    string    // venues.owner_email
	Status        string    // venues.status
	CreatedAt     time.Time // venues.created_at
}

// IsDeleted reports whether the venue was soft deleted.
func (v Venue) IsDeleted() bool { return v.Status == VenueDeleted }

// ValidVenueStatus reports whether s is a status an admin may assign
// through the status toggle.  Deletion has its own operation.
func ValidVenueStatus(s string) bool {
	switch s {
	case VenueAvailable, VenueReserved, VenueMaintenance:
		return true
	}
	return false
}
