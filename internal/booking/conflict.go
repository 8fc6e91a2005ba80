package booking

import "github.com/iliyamo/venue-booking/internal/model"

// Scope selects whose requests an overlap query looks at.
type Scope int

const (
	ScopeVenue Scope = iota
	ScopeUser
)

// ConflictQuery describes a search for requests whose interval overlaps
// Window.  The SQL repositories translate it into a WHERE clause and
// FindOverlapping evaluates it over rows already in memory; both must
// agree.
type ConflictQuery struct {
	Scope   Scope
	ScopeID uint64
	Window  Interval
	// Statuses limits the request status; empty matches any.
	Statuses []string
	// VenueStatuses limits the current status of the request's venue;
	// empty matches any.
	VenueStatuses []string
	// ExcludeID skips one request, usually the one being decided.
	ExcludeID uint64
}

// RequestInterval returns the occupied interval of a stored request.
func RequestInterval(r model.Request) Interval {
	days := r.DurationDays
	if days < 1 {
		days = 1
	}
	s := Day(r.StartDate)
	return Interval{Start: s, End: s.AddDate(0, 0, days-1)}
}

// Matches reports whether r, whose venue currently has venueStatus,
// satisfies the query.
func (q ConflictQuery) Matches(r model.Request, venueStatus string) bool {
	if q.ExcludeID != 0 && r.ID == q.ExcludeID {
		return false
	}
	switch q.Scope {
	case ScopeVenue:
		if r.VenueID != q.ScopeID {
			return false
		}
	case ScopeUser:
		if r.UserID != q.ScopeID {
			return false
		}
	}
	if len(q.Statuses) > 0 && !contains(q.Statuses, r.Status) {
		return false
	}
	if len(q.VenueStatuses) > 0 && !contains(q.VenueStatuses, venueStatus) {
		return false
	}
	return RequestInterval(r).Overlaps(q.Window)
}

// FindOverlapping filters rows by q.  venueStatus resolves the current
// status of a venue and may be nil when q has no venue status filter.
func FindOverlapping(rows []model.Request, venueStatus func(venueID uint64) string, q ConflictQuery) []model.Request {
	var out []model.Request
	for _, r := range rows {
		vs := ""
		if venueStatus != nil {
			vs = venueStatus(r.VenueID)
		}
		if q.Matches(r, vs) {
			out = append(out, r)
		}
	}
	return out
}

// UserConflictQuery finds the user's approved bookings overlapping iv.
func UserConflictQuery(userID uint64, iv Interval) ConflictQuery {
	return ConflictQuery{Scope: ScopeUser, ScopeID: userID, Window: iv, Statuses: []string{model.RequestApproved}}
}

// VenueConflictQuery finds approved bookings of the venue overlapping iv.
func VenueConflictQuery(venueID uint64, iv Interval, excludeID uint64) ConflictQuery {
	return ConflictQuery{
		Scope:     ScopeVenue,
		ScopeID:   venueID,
		Window:    iv,
		Statuses:  []string{model.RequestApproved},
		ExcludeID: excludeID,
	}
}

// CascadeQuery finds the pending requests that approving r would block.
func CascadeQuery(r model.Request) ConflictQuery {
	w := BlockedWindows(RequestInterval(r))
	return ConflictQuery{
		Scope:     ScopeVenue,
		ScopeID:   r.VenueID,
		Window:    w.Blocked,
		Statuses:  []string{model.RequestPending},
		ExcludeID: r.ID,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
