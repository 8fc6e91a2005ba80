package config

import "github.com/iliyamo/venue-booking/internal/booking"

// LoadBookingConfig reads the per-user creation limits.  Unset values keep
// the production defaults.
func LoadBookingConfig() booking.Policy {
	p := booking.DefaultPolicy()
	p.RequestCooldown = envDur("BOOKING_REQUEST_COOLDOWN", p.RequestCooldown)
	p.ReportCooldown = envDur("BOOKING_REPORT_COOLDOWN", p.ReportCooldown)
	p.ContactCooldown = envDur("BOOKING_CONTACT_COOLDOWN", p.ContactCooldown)
	p.ContactBurst = envDur("BOOKING_CONTACT_BURST", p.ContactBurst)
	p.MaxPending = envInt("BOOKING_MAX_PENDING", p.MaxPending)
	return p
}
