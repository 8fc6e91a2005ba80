package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/clock"
	"github.com/iliyamo/venue-booking/internal/logging"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/notify"
	"github.com/iliyamo/venue-booking/internal/repository"
)

type outboxRecorder struct {
	mu     sync.Mutex
	emails []notify.Email
}

func (r *outboxRecorder) Dispatch(_ context.Context, m notify.Email) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, m)
}

func (r *outboxRecorder) to(addr string) []notify.Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Email
	for _, m := range r.emails {
		if m.To == addr {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *repository.MemoryStore
	clock *clock.Fake
	mail  *outboxRecorder
	deps  Deps
	res   *ReservationService
	admin booking.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	st := repository.NewMemoryStore(clk)
	mail := &outboxRecorder{}
	d := Deps{Store: st, Clock: clk, Mail: mail, Log: logging.Discard(), Policy: booking.DefaultPolicy()}
	f := &fixture{t: t, ctx: context.Background(), store: st, clock: clk, mail: mail, deps: d, res: NewReservationService(d)}
	f.admin = f.user("Admin", "admin@example.com", model.RoleAdmin)
	return f
}

func (f *fixture) user(name, email, role string) booking.Actor {
	f.t.Helper()
	id, err := f.store.Users().Create(f.ctx, model.User{Name: name, Email: email, PasswordHash: "x", Role: role})
	if err != nil {
		f.t.Fatalf("create user %s: %v", email, err)
	}
	return booking.Actor{UserID: id, Role: role}
}

func (f *fixture) venue(name string, capacity int) model.Venue {
	f.t.Helper()
	v := model.Venue{Name: name, Capacity: capacity, BasePrice: 1000, PricePerGuest: 10}
	id, err := f.store.Venues().Create(f.ctx, v)
	if err != nil {
		f.t.Fatalf("create venue %s: %v", name, err)
	}
	v.ID = id
	return v
}

// submit creates a request and moves the clock past the cooldown.
func (f *fixture) submit(a booking.Actor, venue, start string, days int) (model.Request, error) {
	f.t.Helper()
	r, err := f.res.Create(f.ctx, a, CreateRequestInput{
		Venue: venue, EventType: "wedding", StartDate: start, DurationDays: days, TimeOfDay: "evening", Guests: 50,
	})
	f.clock.Advance(11 * time.Minute)
	return r, err
}

func (f *fixture) mustSubmit(a booking.Actor, venue, start string, days int) model.Request {
	f.t.Helper()
	r, err := f.submit(a, venue, start, days)
	if err != nil {
		f.t.Fatalf("create %s %s+%d: %v", venue, start, days, err)
	}
	return r
}

func (f *fixture) approve(id uint64) StatusResult {
	f.t.Helper()
	res, err := f.res.UpdateStatus(f.ctx, f.admin, id, model.RequestApproved)
	if err != nil {
		f.t.Fatalf("approve %d: %v", id, err)
	}
	return res
}

func (f *fixture) status(id uint64) string {
	f.t.Helper()
	r, err := f.store.Requests().Get(f.ctx, id)
	if err != nil {
		f.t.Fatalf("get request %d: %v", id, err)
	}
	return r.Status
}

func (f *fixture) notes(a booking.Actor) []model.Notification {
	f.t.Helper()
	ns, err := f.store.Notifications().ListByUser(f.ctx, a.UserID)
	if err != nil {
		f.t.Fatal(err)
	}
	return ns
}

func (f *fixture) countNotes(a booking.Actor, typ string) int {
	n := 0
	for _, x := range f.notes(a) {
		if x.Type == typ {
			n++
		}
	}
	return n
}

func wantKind(t *testing.T, err error, k booking.Kind) {
	t.Helper()
	if !booking.IsKind(err, k) {
		t.Fatalf("err = %v (kind %s), want kind %s", err, booking.KindOf(err), k)
	}
}
