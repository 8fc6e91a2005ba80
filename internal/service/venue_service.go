package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// Invalidator drops cached public venue listings.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// VenueInput holds the editable venue fields.
type VenueInput struct {
	Name          string
	Address       string
	Lat           float64
	Lng           float64
	Capacity      int
	BasePrice     float64
	PricePerGuest float64
	Description   string
	Services      string
	ImageURL      string
	OwnerName     string
	OwnerPhone    string
	OwnerEmail    string
}

type VenueService struct {
	d     Deps
	cache Invalidator
}

// NewVenueService builds the service; cache may be nil.
func NewVenueService(d Deps, cache Invalidator) *VenueService {
	return &VenueService{d: d.withDefaults(), cache: cache}
}

// List returns the venues that are not deleted.  Owner contact data is
// only visible to admins.
func (s *VenueService) List(ctx context.Context, actor booking.Actor) ([]model.Venue, error) {
	vs, err := s.d.Store.Venues().List(ctx, false)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		for i := range vs {
			vs[i] = redactOwner(vs[i])
		}
	}
	return vs, nil
}

// Get returns one visible venue.
func (s *VenueService) Get(ctx context.Context, actor booking.Actor, id uint64) (model.Venue, error) {
	v, err := s.d.Store.Venues().Get(ctx, id)
	if err != nil {
		return model.Venue{}, mapNotFound(err, "Venue not found.")
	}
	if v.IsDeleted() {
		return model.Venue{}, booking.NotFound("Venue not found.")
	}
	if !actor.IsAdmin() {
		v = redactOwner(v)
	}
	return v, nil
}

func redactOwner(v model.Venue) model.Venue {
	v.OwnerName, v.OwnerPhone, v.OwnerEmail = "", "", ""
	return v
}

func (in VenueInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return booking.Validation("The venue name is required.")
	}
	if in.Capacity < 0 || in.BasePrice < 0 || in.PricePerGuest < 0 {
		return booking.Validation("Capacity and prices cannot be negative.")
	}
	return nil
}

func (in VenueInput) apply(v model.Venue) model.Venue {
	v.Name = strings.TrimSpace(in.Name)
	v.Address = strings.TrimSpace(in.Address)
	v.Lat, v.Lng = in.Lat, in.Lng
	v.Capacity = in.Capacity
	v.BasePrice, v.PricePerGuest = in.BasePrice, in.PricePerGuest
	v.Description, v.Services, v.ImageURL = in.Description, in.Services, in.ImageURL
	v.OwnerName, v.OwnerPhone, v.OwnerEmail = in.OwnerName, in.OwnerPhone, strings.TrimSpace(in.OwnerEmail)
	return v
}

// Save creates a venue when id is zero and updates it otherwise.
func (s *VenueService) Save(ctx context.Context, actor booking.Actor, id uint64, in VenueInput) (model.Venue, error) {
	if err := actor.RequireAdmin(); err != nil {
		return model.Venue{}, err
	}
	if err := in.validate(); err != nil {
		return model.Venue{}, err
	}

	var out model.Venue
	err := s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		if id == 0 {
			v := in.apply(model.Venue{Status: model.VenueAvailable, CreatedAt: s.d.Clock.Now()})
			newID, err := tx.Venues().Create(ctx, v)
			if err != nil {
				return err
			}
			v.ID = newID
			out = v
			return nil
		}
		cur, err := tx.Venues().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, "Venue not found.")
		}
		if cur.IsDeleted() {
			return booking.NotFound("Venue not found.")
		}
		v := in.apply(cur)
		if err := tx.Venues().Update(ctx, v); err != nil {
			return err
		}
		out = v
		return nil
	})
	if errors.Is(err, repository.ErrConflict) {
		return model.Venue{}, booking.Conflict("A venue named %q already exists.", strings.TrimSpace(in.Name))
	}
	if err != nil {
		return model.Venue{}, err
	}
	s.invalidate(ctx)
	return out, nil
}

// Delete soft deletes a venue.  Its requests stay for history.
func (s *VenueService) Delete(ctx context.Context, actor booking.Actor, id uint64) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	err := s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		v, err := tx.Venues().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, "Venue not found.")
		}
		if v.IsDeleted() {
			return booking.NotFound("Venue not found.")
		}
		return tx.Venues().SetStatus(ctx, id, model.VenueDeleted)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// SetStatus changes the display status of a venue.  Approved requests
// are left alone; a later create sweeps the ones that became stale.
func (s *VenueService) SetStatus(ctx context.Context, actor booking.Actor, id uint64, status string) (model.Venue, error) {
	if err := actor.RequireAdmin(); err != nil {
		return model.Venue{}, err
	}
	if !model.ValidVenueStatus(status) {
		return model.Venue{}, booking.Validation("Invalid venue status %q.", status)
	}
	var out model.Venue
	err := s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		v, err := tx.Venues().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, "Venue not found.")
		}
		if v.IsDeleted() {
			return booking.NotFound("Venue not found.")
		}
		if err := tx.Venues().SetStatus(ctx, id, status); err != nil {
			return err
		}
		v.Status = status
		out = v
		return nil
	})
	if err != nil {
		return model.Venue{}, err
	}
	s.invalidate(ctx)
	return out, nil
}

func (s *VenueService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.d.Log.WithError(err).WithFields(logrus.Fields{"cache": "venues"}).Warn("cache invalidation failed")
	}
}
