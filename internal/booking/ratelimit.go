package booking

import (
	"math"
	"time"
)

// Policy holds the per-user creation guards.
type Policy struct {
	RequestCooldown time.Duration // between two reservation requests
	ReportCooldown  time.Duration // between two reports
	ContactCooldown time.Duration // between two contact messages from one email
	ContactBurst    time.Duration // between two contact messages from one client
	MaxPending      int           // pending requests a user may hold
}

// DefaultPolicy returns the production limits.
func DefaultPolicy() Policy {
	return Policy{
		RequestCooldown: 10 * time.Minute,
		ReportCooldown:  5 * time.Minute,
		ContactCooldown: 5 * time.Minute,
		ContactBurst:    time.Minute,
		MaxPending:      3,
	}
}

// RemainingMinutes returns how long, in whole minutes rounded up, a user
// who last acted at last must still wait.  Zero means the window has
// passed.
func RemainingMinutes(last, now time.Time, window time.Duration) int {
	if last.IsZero() || window <= 0 {
		return 0
	}
	elapsed := now.Sub(last)
	if elapsed >= window {
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return int(math.Ceil((window - elapsed).Minutes()))
}

// CheckCooldown fails when the previous creation of the same kind is
// more recent than window.  what names the thing being created.
func CheckCooldown(what string, last, now time.Time, window time.Duration) error {
	m := RemainingMinutes(last, now, window)
	if m == 0 {
		return nil
	}
	return Cooldown(m, "Please wait %d more minute(s) before sending another %s.", m, what)
}

// CheckPendingCap fails when the user already holds limit pending requests.
func CheckPendingCap(pending, limit int) error {
	if limit > 0 && pending >= limit {
		return Conflict("You already have %d pending requests. Please wait for them to be reviewed.", pending)
	}
	return nil
}
