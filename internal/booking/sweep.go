package booking

import "github.com/iliyamo/venue-booking/internal/model"

// An admin may mark a venue available again without touching the
// approved request that reserved it.  Such a request is a ghost: it
// still looks approved but the venue no longer honours it.  Before a
// new request is checked for conflicts the submitter's ghosts that
// overlap the candidate dates are rejected so they do not block it.

// SweepQuery finds the user's approved requests on available venues
// overlapping the candidate interval.
func SweepQuery(userID uint64, candidate Interval) ConflictQuery {
	return ConflictQuery{
		Scope:         ScopeUser,
		ScopeID:       userID,
		Window:        candidate,
		Statuses:      []string{model.RequestApproved},
		VenueStatuses: []string{model.VenueAvailable},
	}
}

// Ghosts returns the ids to reject among the rows a SweepQuery returned.
// Rows that are no longer approved are skipped so a repeated sweep is a
// no-op.
func Ghosts(found []model.Request) []uint64 {
	var ids []uint64
	for _, r := range found {
		if r.Status == model.RequestApproved {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
