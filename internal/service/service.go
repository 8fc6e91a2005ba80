// Package service implements the application operations on top of the
// pure booking rules.  Every check-then-act sequence runs in one store
// transaction; notifications and emails are applied after it commits.
package service

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/clock"
	"github.com/iliyamo/venue-booking/internal/notify"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// Deps are the collaborators shared by all services.
type Deps struct {
	Store  repository.Store
	Clock  clock.Clock
	Mail   notify.Dispatcher
	Log    *logrus.Logger
	Policy booking.Policy
}

func (d Deps) outbox() outbox { return outbox{store: d.Store, mail: d.Mail, log: d.Log} }

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Policy == (booking.Policy{}) {
		d.Policy = booking.DefaultPolicy()
	}
	return d
}

// mapNotFound turns a repository miss into a user facing error.
func mapNotFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return booking.NotFound(msg)
	}
	return err
}
