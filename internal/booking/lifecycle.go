package booking

import "github.com/iliyamo/venue-booking/internal/model"

// Reason explains why a pending request was rejected by the approval of
// another one.  Lower values take priority when several windows match.
type Reason int

const (
	ReasonEvent Reason = iota
	ReasonCleanup
	ReasonPreparation
	ReasonBlocked
)

func (r Reason) String() string {
	switch r {
	case ReasonEvent:
		return "event"
	case ReasonCleanup:
		return "cleanup"
	case ReasonPreparation:
		return "preparation"
	}
	return "blocked"
}

// Text is the user facing sentence appended to the rejection notice.
func (r Reason) Text() string {
	switch r {
	case ReasonEvent:
		return "the dates overlap another approved booking."
	case ReasonCleanup:
		return "the venue will be under post-event cleanup/maintenance."
	case ReasonPreparation:
		return "the venue will be in preparation (3 days before) for an approved event."
	}
	return "the dates are unavailable due to an administrative block."
}

// RejectionReason picks the most severe window iv overlaps.
func RejectionReason(w Windows, iv Interval) Reason {
	switch {
	case iv.Overlaps(w.Event):
		return ReasonEvent
	case iv.Overlaps(w.Cleanup):
		return ReasonCleanup
	case iv.Overlaps(w.Preparation):
		return ReasonPreparation
	}
	return ReasonBlocked
}

// ParseTarget validates the status an admin asks for.  Only the two
// terminal states can be requested.
func ParseTarget(status string) (string, error) {
	switch status {
	case model.RequestApproved, model.RequestRejected:
		return status, nil
	case "":
		return "", Validation("A status is required.")
	}
	return "", Validation("Invalid status %q: use approved or rejected.", status)
}

// Transition is the outcome of applying a target status to a request.
// Changed is false when the request had already left pending, in which
// case nothing must be written, notified or emailed.
type Transition struct {
	From    string
	To      string
	Changed bool
}

// Decide computes the transition of r to target.
func Decide(r model.Request, target string) (Transition, error) {
	to, err := ParseTarget(target)
	if err != nil {
		return Transition{}, err
	}
	if !r.IsPending() {
		return Transition{From: r.Status, To: r.Status}, nil
	}
	return Transition{From: r.Status, To: to, Changed: true}, nil
}

// CascadeRejection is a pending request rejected because another
// request was approved.
type CascadeRejection struct {
	Request model.Request
	Reason  Reason
}

// ApprovalPlan lists everything approving Request entails.
type ApprovalPlan struct {
	Request model.Request
	Windows Windows
	Cascade []CascadeRejection
}

// CheckApprovable fails when an already approved request of the same
// venue overlaps the event dates of r.
func CheckApprovable(r model.Request, approved []model.Request) error {
	ev := RequestInterval(r)
	for _, o := range approved {
		if o.ID == r.ID || o.VenueID != r.VenueID || o.Status != model.RequestApproved {
			continue
		}
		if RequestInterval(o).Overlaps(ev) {
			return Conflict("The venue already has an approved booking from %s to %s.",
				o.StartDate.Format(DateLayout), o.EndDate().Format(DateLayout))
		}
	}
	return nil
}

// PlanApproval decides which of the candidate requests are rejected when
// r is approved and why.  Candidates outside the blocked window, on
// another venue or no longer pending are ignored.
func PlanApproval(r model.Request, candidates []model.Request) ApprovalPlan {
	plan := ApprovalPlan{Request: r, Windows: BlockedWindows(RequestInterval(r))}
	for _, c := range candidates {
		if c.ID == r.ID || c.VenueID != r.VenueID || !c.IsPending() {
			continue
		}
		iv := RequestInterval(c)
		if !iv.Overlaps(plan.Windows.Blocked) {
			continue
		}
		plan.Cascade = append(plan.Cascade, CascadeRejection{Request: c, Reason: RejectionReason(plan.Windows, iv)})
	}
	return plan
}

// CheckCancel enforces that only the owner may withdraw a request and
// only while it is pending.
func CheckCancel(r model.Request, userID uint64) error {
	if r.UserID != userID {
		return NotFound("Request not found.")
	}
	if !r.IsPending() {
		return Conflict("This request cannot be cancelled.")
	}
	return nil
}
