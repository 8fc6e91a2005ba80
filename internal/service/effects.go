package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/notify"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// effects collects the notifications and emails an operation produces.
// They are applied only after its transaction committed.
type effects struct {
	notes  []model.Notification
	emails []notify.Email
}

func (e *effects) notify(userID uint64, typ, msg string) {
	e.notes = append(e.notes, model.Notification{UserID: userID, Type: typ, Message: msg})
}

func (e *effects) email(m notify.Email) {
	if m.To == "" {
		return
	}
	e.emails = append(e.emails, m)
}

func (e *effects) empty() bool { return len(e.notes) == 0 && len(e.emails) == 0 }

// outbox applies effects best effort.  A failed notification is logged
// and the remaining ones are still written.
type outbox struct {
	store repository.Store
	mail  notify.Dispatcher
	log   *logrus.Logger
}

func (o outbox) apply(ctx context.Context, fx *effects) {
	if fx == nil || fx.empty() {
		return
	}
	// the caller's deadline may already be spent on the transaction
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	for _, n := range fx.notes {
		if _, err := o.store.Notifications().Create(nctx, n); err != nil {
			o.log.WithError(err).WithFields(logrus.Fields{"user_id": n.UserID, "type": n.Type}).
				Warn("notification not stored")
		}
	}
	if o.mail == nil {
		return
	}
	for _, m := range fx.emails {
		o.mail.Dispatch(nctx, m)
	}
}
