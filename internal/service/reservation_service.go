package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// CreateRequestInput is what a user submits to book a venue.  Venue is
// matched by name first and VenueID is the fallback.
type CreateRequestInput struct {
	Venue           string
	VenueID         uint64
	EventType       string
	StartDate       string // YYYY-MM-DD
	DurationDays    int    // zero means one day
	TimeOfDay       string
	Guests          int
	SpecialRequests string
}

// StatusResult reports what an admin status change did.
type StatusResult struct {
	Request model.Request
	Changed bool
	// Cascaded lists the pending requests rejected by an approval.
	Cascaded []uint64
}

// ReservationService runs the request lifecycle.
type ReservationService struct {
	d Deps
}

func NewReservationService(d Deps) *ReservationService {
	return &ReservationService{d: d.withDefaults()}
}

func (in CreateRequestInput) validate() (booking.Interval, error) {
	if strings.TrimSpace(in.Venue) == "" && in.VenueID == 0 {
		return booking.Interval{}, booking.Validation("A venue is required.")
	}
	if strings.TrimSpace(in.EventType) == "" || strings.TrimSpace(in.StartDate) == "" || strings.TrimSpace(in.TimeOfDay) == "" {
		return booking.Interval{}, booking.Validation("All required fields must be completed.")
	}
	if in.Guests < 0 {
		return booking.Interval{}, booking.Validation("The number of guests cannot be negative.")
	}
	start, err := booking.ParseDay(in.StartDate)
	if err != nil {
		return booking.Interval{}, err
	}
	days := in.DurationDays
	if days == 0 {
		days = 1
	}
	return booking.NewInterval(start, days)
}

// Create submits a new pending request.  The checks run in this order,
// all inside one transaction: account state, cooldown, pending cap,
// date, venue, capacity, ghost sweep, user conflict, venue conflict.
func (s *ReservationService) Create(ctx context.Context, actor booking.Actor, in CreateRequestInput) (model.Request, error) {
	if err := actor.RequireUser(); err != nil {
		return model.Request{}, err
	}
	iv, err := in.validate()
	if err != nil {
		return model.Request{}, err
	}
	now := s.d.Clock.Now()

	var (
		created model.Request
		swept   []uint64
	)
	err = s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		user, err := tx.Users().GetForUpdate(ctx, actor.UserID)
		if err != nil {
			return mapNotFound(err, "User not found.")
		}
		if user.IsSuspended() {
			return booking.Forbidden("Your account is suspended.")
		}

		last, err := tx.Requests().LastCreatedAt(ctx, user.ID)
		if err != nil {
			return err
		}
		if err := booking.CheckCooldown("request", last, now, s.d.Policy.RequestCooldown); err != nil {
			return err
		}
		pending, err := tx.Requests().CountByStatus(ctx, user.ID, model.RequestPending)
		if err != nil {
			return err
		}
		if err := booking.CheckPendingCap(pending, s.d.Policy.MaxPending); err != nil {
			return err
		}

		if iv.Start.Before(booking.Day(now)) {
			return booking.Validation("The event date cannot be in the past.")
		}

		venue, err := s.lockVenue(ctx, tx, in)
		if err != nil {
			return err
		}
		if venue.Capacity > 0 && in.Guests > venue.Capacity {
			return booking.Validation("The venue holds at most %d guests. You requested %d.", venue.Capacity, in.Guests)
		}

		ghosts, err := tx.Requests().FindOverlapping(ctx, booking.SweepQuery(user.ID, iv))
		if err != nil {
			return err
		}
		for _, id := range booking.Ghosts(ghosts) {
			if err := tx.Requests().SetStatus(ctx, id, model.RequestRejected); err != nil {
				return err
			}
			swept = append(swept, id)
		}

		mine, err := tx.Requests().FindOverlapping(ctx, booking.UserConflictQuery(user.ID, iv))
		if err != nil {
			return err
		}
		if len(mine) > 0 {
			return booking.Conflict("You already have an approved event that overlaps the selected dates.")
		}
		taken, err := tx.Requests().FindOverlapping(ctx, booking.VenueConflictQuery(venue.ID, iv, 0))
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return booking.Conflict("The venue is not available for the whole selected date range.")
		}

		created = model.Request{
			UserID:          user.ID,
			VenueID:         venue.ID,
			EventType:       strings.TrimSpace(in.EventType),
			StartDate:       iv.Start,
			DurationDays:    iv.Days(),
			TimeOfDay:       strings.TrimSpace(in.TimeOfDay),
			Guests:          in.Guests,
			TotalPrice:      booking.EstimatePrice(venue, iv.Days(), in.Guests),
			SpecialRequests: strings.TrimSpace(in.SpecialRequests),
			Status:          model.RequestPending,
			CreatedAt:       now,
		}
		id, err := tx.Requests().Create(ctx, created)
		if err != nil {
			return err
		}
		created.ID = id
		return nil
	})
	if err != nil {
		return model.Request{}, err
	}

	if len(swept) > 0 {
		s.d.Log.WithFields(logrus.Fields{"user_id": actor.UserID, "requests": swept}).
			Info("stale approved requests rejected")
	}
	if v, err := s.d.Store.Requests().GetView(ctx, created.ID); err != nil {
		s.d.Log.WithError(err).WithField("request_id", created.ID).Warn("request view for confirmation failed")
	} else {
		fx := &effects{}
		fx.notify(v.UserID, model.NotifyRequestReceived, receivedNotice(v))
		fx.email(receivedEmail(v))
		s.d.outbox().apply(ctx, fx)
	}
	return created, nil
}

// lockVenue resolves the requested venue and locks its row.
func (s *ReservationService) lockVenue(ctx context.Context, tx repository.Repos, in CreateRequestInput) (model.Venue, error) {
	var (
		v   model.Venue
		err error
	)
	name := strings.TrimSpace(in.Venue)
	if name != "" {
		v, err = tx.Venues().GetByName(ctx, name)
		if errors.Is(err, repository.ErrNotFound) && in.VenueID == 0 {
			// a numeric name is taken as an id
			if id, perr := strconv.ParseUint(name, 10, 64); perr == nil {
				in.VenueID = id
			}
		}
	} else {
		err = repository.ErrNotFound
	}
	if errors.Is(err, repository.ErrNotFound) && in.VenueID != 0 {
		v, err = tx.Venues().Get(ctx, in.VenueID)
	}
	if err != nil {
		return model.Venue{}, mapNotFound(err, "Venue not found.")
	}
	if v.IsDeleted() {
		return model.Venue{}, booking.NotFound("Venue not found.")
	}
	return tx.Venues().GetForUpdate(ctx, v.ID)
}

// UpdateStatus applies an admin decision.  A request that already left
// pending is left untouched and reported with Changed=false.
func (s *ReservationService) UpdateStatus(ctx context.Context, actor booking.Actor, id uint64, status string) (StatusResult, error) {
	if err := actor.RequireAdmin(); err != nil {
		return StatusResult{}, err
	}
	target, err := booking.ParseTarget(status)
	if err != nil {
		return StatusResult{}, err
	}

	var (
		res StatusResult
		fx  = &effects{}
	)
	err = s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		// venue first, then the request: the same order create uses
		peek, err := tx.Requests().Get(ctx, id)
		if err != nil {
			return mapNotFound(err, "Request not found.")
		}
		venue, err := tx.Venues().GetForUpdate(ctx, peek.VenueID)
		if err != nil {
			return err
		}
		req, err := tx.Requests().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, "Request not found.")
		}

		tr, err := booking.Decide(req, target)
		if err != nil {
			return err
		}
		res.Request = req
		if !tr.Changed {
			return nil
		}

		if tr.To == model.RequestRejected {
			if err := tx.Requests().SetStatus(ctx, req.ID, model.RequestRejected); err != nil {
				return err
			}
			v, err := tx.Requests().GetView(ctx, req.ID)
			if err != nil {
				return err
			}
			fx.notify(v.UserID, model.NotifyRequestRejected, rejectedNotice(v))
			fx.email(rejectedEmail(v))
			res.Request.Status, res.Changed = model.RequestRejected, true
			return nil
		}

		if venue.IsDeleted() {
			return booking.Conflict("The venue of this request has been deleted.")
		}
		approved, err := tx.Requests().FindOverlapping(ctx,
			booking.VenueConflictQuery(req.VenueID, booking.RequestInterval(req), req.ID))
		if err != nil {
			return err
		}
		if err := booking.CheckApprovable(req, approved); err != nil {
			return err
		}
		if err := tx.Requests().SetStatus(ctx, req.ID, model.RequestApproved); err != nil {
			return err
		}
		if err := tx.Venues().SetStatus(ctx, venue.ID, model.VenueReserved); err != nil {
			return err
		}

		candidates, err := tx.Requests().FindOverlapping(ctx, booking.CascadeQuery(req))
		if err != nil {
			return err
		}
		plan := booking.PlanApproval(req, candidates)
		for _, c := range plan.Cascade {
			if err := tx.Requests().SetStatus(ctx, c.Request.ID, model.RequestRejected); err != nil {
				return err
			}
			res.Cascaded = append(res.Cascaded, c.Request.ID)
			cv, err := tx.Requests().GetView(ctx, c.Request.ID)
			if err != nil {
				return err
			}
			fx.notify(cv.UserID, model.NotifyRequestRejected, cascadeNotice(cv, c.Reason))
			fx.email(cascadeEmail(cv, c.Reason))
		}

		v, err := tx.Requests().GetView(ctx, req.ID)
		if err != nil {
			return err
		}
		fx.notify(v.UserID, model.NotifyRequestApproved, approvedNotice(v))
		fx.email(approvedEmail(v))
		res.Request.Status, res.Changed = model.RequestApproved, true
		return nil
	})
	if err != nil {
		return StatusResult{}, err
	}
	if res.Changed {
		s.d.Log.WithFields(logrus.Fields{
			"request_id": id, "status": res.Request.Status, "cascaded": len(res.Cascaded), "admin_id": actor.UserID,
		}).Info("request status changed")
	}
	s.d.outbox().apply(ctx, fx)
	return res, nil
}

// Cancel lets the owner withdraw a pending request.  The row is deleted.
func (s *ReservationService) Cancel(ctx context.Context, actor booking.Actor, id uint64) error {
	if err := actor.RequireUser(); err != nil {
		return err
	}
	return s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		req, err := tx.Requests().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, "Request not found.")
		}
		if err := booking.CheckCancel(req, actor.UserID); err != nil {
			return err
		}
		return tx.Requests().Delete(ctx, id)
	})
}

// ListAll returns every request with user and venue data for admins.
func (s *ReservationService) ListAll(ctx context.Context, actor booking.Actor) ([]model.RequestView, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.d.Store.Requests().List(ctx)
}

// ListMine returns the caller's own requests.
func (s *ReservationService) ListMine(ctx context.Context, actor booking.Actor) ([]model.RequestView, error) {
	if err := actor.RequireUser(); err != nil {
		return nil, err
	}
	return s.d.Store.Requests().ListByUser(ctx, actor.UserID)
}

// MarkRead flags the caller's request as seen.
func (s *ReservationService) MarkRead(ctx context.Context, actor booking.Actor, id uint64) error {
	if err := actor.RequireUser(); err != nil {
		return err
	}
	return mapNotFound(s.d.Store.Requests().MarkRead(ctx, id, actor.UserID), "Request not found.")
}
