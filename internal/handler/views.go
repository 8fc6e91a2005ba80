package handler

import (
	"time"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
)

// JSON shapes returned by the API.  Model types never leave the package
// directly so the password hash and similar columns stay private.

type requestJSON struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"user_id"`
	VenueID         uint64    `json:"venue_id"`
	VenueName       string    `json:"venue_name,omitempty"`
	UserName        string    `json:"user_name,omitempty"`
	UserEmail       string    `json:"user_email,omitempty"`
	UserPhone       string    `json:"user_phone,omitempty"`
	EventType       string    `json:"event_type"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	DurationDays    int       `json:"duration_days"`
	TimeOfDay       string    `json:"time_of_day"`
	Guests          int       `json:"guests"`
	TotalPrice      float64   `json:"total_price"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	Status          string    `json:"status"`
	UserRead        bool      `json:"user_read"`
	CreatedAt       time.Time `json:"created_at"`
}

func requestOut(r model.Request) requestJSON {
	return requestJSON{
		ID:              r.ID,
		UserID:          r.UserID,
		VenueID:         r.VenueID,
		EventType:       r.EventType,
		StartDate:       r.StartDate.Format(booking.DateLayout),
		EndDate:         r.EndDate().Format(booking.DateLayout),
		DurationDays:    r.DurationDays,
		TimeOfDay:       r.TimeOfDay,
		Guests:          r.Guests,
		TotalPrice:      r.TotalPrice,
		SpecialRequests: r.SpecialRequests,
		Status:          r.Status,
		UserRead:        r.UserRead,
		CreatedAt:       r.CreatedAt,
	}
}

func requestViewsOut(vs []model.RequestView) []requestJSON {
	out := make([]requestJSON, 0, len(vs))
	for _, v := range vs {
		j := requestOut(v.Request)
		j.VenueName, j.UserName, j.UserEmail, j.UserPhone = v.VenueName, v.UserName, v.UserEmail, v.UserPhone
		out = append(out, j)
	}
	return out
}

type venueJSON struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	Capacity      int       `json:"capacity"`
	BasePrice     float64   `json:"base_price"`
	PricePerGuest float64   `json:"price_per_guest"`
	Description   string    `json:"description"`
	Services      string    `json:"services"`
	ImageURL      string    `json:"image_url"`
	OwnerName     string    `json:"owner_name,omitempty"`
	OwnerPhone    string    `json:"owner_phone,omitempty"`
	OwnerEmail    string    `json:"owner_email,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func venueOut(v model.Venue) venueJSON {
	return venueJSON{
		ID: v.ID, Name: v.Name, Address: v.Address, Lat: v.Lat, Lng: v.Lng,
		Capacity: v.Capacity, BasePrice: v.BasePrice, PricePerGuest: v.PricePerGuest,
		Description: v.Description, Services: v.Services, ImageURL: v.ImageURL,
		OwnerName: v.OwnerName, OwnerPhone: v.OwnerPhone, OwnerEmail: v.OwnerEmail,
		Status: v.Status, CreatedAt: v.CreatedAt,
	}
}

type userJSON struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Role          string    `json:"role"`
	AccountStatus string    `json:"account_status"`
	CreatedAt     time.Time `json:"created_at"`
}

func userOut(u model.User) userJSON {
	return userJSON{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role, AccountStatus: u.AccountStatus, CreatedAt: u.CreatedAt}
}

type notificationJSON struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type reportJSON struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	UserEmail string    `json:"user_email,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func reportOut(r model.Report) reportJSON {
	return reportJSON{ID: r.ID, UserID: r.UserID, Type: r.Type, Message: r.Message, Status: r.Status, CreatedAt: r.CreatedAt}
}

type contactJSON struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
