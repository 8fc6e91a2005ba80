package service

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
)

func TestCreateRequest(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	v := f.venue("Garden Hall", 100)

	r := f.mustSubmit(ana, "Garden Hall", "2024-06-10", 3)
	if r.Status != model.RequestPending || r.VenueID != v.ID {
		t.Fatalf("created %+v", r)
	}
	if got := r.EndDate().Format(booking.DateLayout); got != "2024-06-12" {
		t.Fatalf("end date = %s, want 2024-06-12", got)
	}
	if r.TotalPrice != 3*1000+50*10 {
		t.Fatalf("price = %v", r.TotalPrice)
	}
	if f.countNotes(ana, model.NotifyRequestReceived) != 1 || len(f.mail.to("ana@example.com")) != 1 {
		t.Fatal("expected a received notification and email")
	}
}

func TestCreateRequestVenueByID(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	v := f.venue("Garden Hall", 100)
	r, err := f.res.Create(f.ctx, ana, CreateRequestInput{
		VenueID: v.ID, EventType: "party", StartDate: "2024-06-10", TimeOfDay: "noon",
	})
	if err != nil || r.DurationDays != 1 {
		t.Fatalf("create by id = %+v, %v", r, err)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	f.venue("Garden Hall", 10)

	cases := []struct {
		name string
		in   CreateRequestInput
		kind booking.Kind
	}{
		{"missing venue", CreateRequestInput{EventType: "x", StartDate: "2024-06-10", TimeOfDay: "x"}, booking.KindValidation},
		{"missing fields", CreateRequestInput{Venue: "Garden Hall", StartDate: "2024-06-10"}, booking.KindValidation},
		{"bad date", CreateRequestInput{Venue: "Garden Hall", EventType: "x", StartDate: "10/06/2024", TimeOfDay: "x"}, booking.KindValidation},
		{"negative duration", CreateRequestInput{Venue: "Garden Hall", EventType: "x", StartDate: "2024-06-10", DurationDays: -2, TimeOfDay: "x"}, booking.KindValidation},
		{"past date", CreateRequestInput{Venue: "Garden Hall", EventType: "x", StartDate: "2024-04-30", TimeOfDay: "x"}, booking.KindValidation},
		{"over capacity", CreateRequestInput{Venue: "Garden Hall", EventType: "x", StartDate: "2024-06-10", TimeOfDay: "x", Guests: 11}, booking.KindValidation},
		{"unknown venue", CreateRequestInput{Venue: "Nowhere", EventType: "x", StartDate: "2024-06-10", TimeOfDay: "x"}, booking.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.res.Create(f.ctx, ana, tc.in)
			wantKind(t, err, tc.kind)
		})
	}
	if _, err := f.res.Create(f.ctx, booking.Actor{}, CreateRequestInput{}); !booking.IsKind(err, booking.KindUnauthorized) {
		t.Fatalf("anonymous create err = %v", err)
	}
}

func TestCreateRequestDeletedVenue(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	v := f.venue("Garden Hall", 10)
	if err := f.store.Venues().SetStatus(f.ctx, v.ID, model.VenueDeleted); err != nil {
		t.Fatal(err)
	}
	_, err := f.submit(ana, "Garden Hall", "2024-06-10", 1)
	wantKind(t, err, booking.KindNotFound)
}

func TestCreateRequestSuspendedUser(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	f.venue("Garden Hall", 10)
	if err := f.store.Users().SetStatus(f.ctx, ana.UserID, model.AccountSuspended); err != nil {
		t.Fatal(err)
	}
	_, err := f.submit(ana, "Garden Hall", "2024-06-10", 1)
	wantKind(t, err, booking.KindForbidden)
}

func TestVenueConflictBoundaryIsInclusive(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	ben := f.user("Ben", "ben@example.com", model.RoleUser)
	f.venue("Garden Hall", 100)

	first := f.mustSubmit(ana, "Garden Hall", "2024-06-10", 3)
	f.approve(first.ID)

	_, err := f.submit(ben, "Garden Hall", "2024-06-12", 1)
	wantKind(t, err, booking.KindConflict)
	if !strings.Contains(err.Error(), "not available for the whole selected date range") {
		t.Fatalf("message = %q", err)
	}
	// the day after the event is free for new requests
	f.mustSubmit(ben, "Garden Hall", "2024-06-13", 1)
}

func TestUserSelfConflict(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	f.venue("Garden Hall", 100)
	f.venue("River House", 100)

	r := f.mustSubmit(ana, "Garden Hall", "2024-06-10", 2)
	f.approve(r.ID)
	_, err := f.submit(ana, "River House", "2024-06-11", 1)
	wantKind(t, err, booking.KindConflict)
	if !strings.Contains(err.Error(), "already have an approved event") {
		t.Fatalf("message = %q", err)
	}
}

func TestGhostSweep(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	garden := f.venue("Garden Hall", 100)
	f.venue("River House", 100)

	r := f.mustSubmit(ana, "Garden Hall", "2024-06-10", 2)
	f.approve(r.ID)
	// admin frees the venue without touching the approved request
	vs := NewVenueService(f.deps, nil)
	if _, err := vs.SetStatus(f.ctx, f.admin, garden.ID, model.VenueAvailable); err != nil {
		t.Fatal(err)
	}
	if f.status(r.ID) != model.RequestApproved {
		t.Fatal("toggling the venue must not touch requests")
	}

	before := len(f.notes(ana))
	f.mustSubmit(ana, "River House", "2024-06-11", 1)
	if f.status(r.ID) != model.RequestRejected {
		t.Fatalf("ghost status = %s, want rejected", f.status(r.ID))
	}
	// only the received notice for the new request, nothing for the ghost
	if got := len(f.notes(ana)); got != before+1 {
		t.Fatalf("notifications = %d, want %d", got, before+1)
	}
}

func TestGhostSweepRollsBackOnRefusal(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	ben := f.user("Ben", "ben@example.com", model.RoleUser)
	garden := f.venue("Garden Hall", 100)
	f.venue("River House", 100)

	ghost := f.mustSubmit(ana, "Garden Hall", "2024-06-10", 2)
	f.approve(ghost.ID)
	taken := f.mustSubmit(ben, "River House", "2024-06-11", 1)
	f.approve(taken.ID)
	vs := NewVenueService(f.deps, nil)
	if _, err := vs.SetStatus(f.ctx, f.admin, garden.ID, model.VenueAvailable); err != nil {
		t.Fatal(err)
	}

	_, err := f.submit(ana, "River House", "2024-06-11", 1)
	wantKind(t, err, booking.KindConflict)
	if f.status(ghost.ID) != model.RequestApproved {
		t.Fatal("a refused create must not keep the sweep")
	}
}

func TestPendingCap(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	f.venue("Garden Hall", 100)
	for i, d := range []string{"2024-06-01", "2024-06-05", "2024-06-09"} {
		if _, err := f.submit(ana, "Garden Hall", d, 1); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
	_, err := f.submit(ana, "Garden Hall", "2024-06-20", 1)
	wantKind(t, err, booking.KindConflict)
}

func TestRequestCooldown(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	f.venue("Garden Hall", 100)
	in := CreateRequestInput{Venue: "Garden Hall", EventType: "x", StartDate: "2024-06-10", TimeOfDay: "x"}

	if _, err := f.res.Create(f.ctx, ana, in); err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(4 * time.Minute)
	in.StartDate = "2024-06-20"
	_, err := f.res.Create(f.ctx, ana, in)
	wantKind(t, err, booking.KindRateLimited)
	var be *booking.Error
	if !errors.As(err, &be) || be.RetryAfterMinutes != 6 {
		t.Fatalf("retry after = %+v", be)
	}
	f.clock.Advance(6 * time.Minute)
	if _, err := f.res.Create(f.ctx, ana, in); err != nil {
		t.Fatalf("after 10 minutes: %v", err)
	}
}

func TestApprovalCascade(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Olga", "olga@example.com", model.RoleUser)
	f.venue("Garden Hall", 100)
	target := f.mustSubmit(owner, "Garden Hall", "2024-07-01", 2)

	type pending struct {
		start  string
		reason booking.Reason
		hit    bool
	}
	cases := []pending{
		{"2024-06-27", 0, false},
		{"2024-06-28", booking.ReasonPreparation, true},
		{"2024-07-02", booking.ReasonEvent, true},
		{"2024-07-03", booking.ReasonCleanup, true},
		{"2024-07-04", 0, false},
	}
	actors := make([]booking.Actor, len(cases))
	ids := make([]uint64, len(cases))
	for i, c := range cases {
		actors[i] = f.user("U", c.start+"@example.com", model.RoleUser)
		ids[i] = f.mustSubmit(actors[i], "Garden Hall", c.start, 1).ID
	}

	res := f.approve(target.ID)
	if !res.Changed || len(res.Cascaded) != 3 {
		t.Fatalf("result = %+v", res)
	}
	for i, c := range cases {
		got := f.status(ids[i])
		if c.hit {
			if got != model.RequestRejected {
				t.Fatalf("%s: status %s, want rejected", c.start, got)
			}
			ns := f.notes(actors[i])
			if len(ns) == 0 || !strings.HasSuffix(ns[0].Message, c.reason.Text()) {
				t.Fatalf("%s: notification %+v, want reason %q", c.start, ns, c.reason.Text())
			}
			if len(f.mail.to(c.start+"@example.com")) != 2 {
				t.Fatalf("%s: want received and rejection emails", c.start)
			}
		} else if got != model.RequestPending {
			t.Fatalf("%s: status %s, want pending", c.start, got)
		}
	}
	v, _ := f.store.Venues().GetByName(f.ctx, "Garden Hall")
	if v.Status != model.VenueReserved {
		t.Fatalf("venue status = %s", v.Status)
	}
	if f.countNotes(owner, model.NotifyRequestApproved) != 1 {
		t.Fatal("owner not notified")
	}
}

func TestApproveGuardsAgainstOverlap(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	ben := f.user("Ben", "ben@example.com", model.RoleUser)
	f.venue("Garden Hall", 100)
	a := f.mustSubmit(ana, "Garden Hall", "2024-06-10", 3)
	b := f.mustSubmit(ben, "Garden Hall", "2024-06-12", 1)

	f.approve(a.ID)
	if f.status(b.ID) != model.RequestRejected {
		t.Fatal("overlapping request not cascaded")
	}
	// reopen it behind the service's back to hit the approval guard
	if err := f.store.Requests().SetStatus(f.ctx, b.ID, model.RequestPending); err != nil {
		t.Fatal(err)
	}
	_, err := f.res.UpdateStatus(f.ctx, f.admin, b.ID, model.RequestApproved)
	wantKind(t, err, booking.KindConflict)
	if f.status(b.ID) != model.RequestPending {
		t.Fatal("guard must not change state")
	}
}

func TestUpdateStatusIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	f.venue("Garden Hall", 100)
	r := f.mustSubmit(ana, "Garden Hall", "2024-06-10", 1)

	f.approve(r.ID)
	emails := len(f.mail.to("ana@example.com"))
	for _, target := range []string{model.RequestApproved, model.RequestRejected} {
		res, err := f.res.UpdateStatus(f.ctx, f.admin, r.ID, target)
		if err != nil || res.Changed {
			t.Fatalf("repeat %s = %+v, %v", target, res, err)
		}
	}
	if f.status(r.ID) != model.RequestApproved {
		t.Fatal("status changed on repeat")
	}
	if len(f.mail.to("ana@example.com")) != emails || f.countNotes(ana, model.NotifyRequestApproved) != 1 {
		t.Fatal("repeat produced side effects")
	}
}

func TestUpdateStatusRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	f.venue("Garden Hall", 100)
	r := f.mustSubmit(ana, "Garden Hall", "2024-06-10", 1)

	_, err := f.res.UpdateStatus(f.ctx, f.admin, r.ID, model.RequestPending)
	wantKind(t, err, booking.KindValidation)
	_, err = f.res.UpdateStatus(f.ctx, f.admin, r.ID, "maybe")
	wantKind(t, err, booking.KindValidation)
	_, err = f.res.UpdateStatus(f.ctx, f.admin, 9999, model.RequestApproved)
	wantKind(t, err, booking.KindNotFound)
	_, err = f.res.UpdateStatus(f.ctx, ana, r.ID, model.RequestApproved)
	wantKind(t, err, booking.KindForbidden)
}

func TestDirectRejectHasNoCascade(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	ben := f.user("Ben", "ben@example.com", model.RoleUser)
	f.venue("Garden Hall", 100)
	a := f.mustSubmit(ana, "Garden Hall", "2024-06-10", 1)
	b := f.mustSubmit(ben, "Garden Hall", "2024-06-10", 1)

	res, err := f.res.UpdateStatus(f.ctx, f.admin, a.ID, model.RequestRejected)
	if err != nil || !res.Changed || len(res.Cascaded) != 0 {
		t.Fatalf("reject = %+v, %v", res, err)
	}
	if f.status(b.ID) != model.RequestPending {
		t.Fatal("reject must not cascade")
	}
	if f.countNotes(ana, model.NotifyRequestRejected) != 1 {
		t.Fatal("owner not notified")
	}
}

func TestCancelOnlyWhilePending(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	ben := f.user("Ben", "ben@example.com", model.RoleUser)
	f.venue("Garden Hall", 100)
	a := f.mustSubmit(ana, "Garden Hall", "2024-06-10", 1)
	b := f.mustSubmit(ana, "Garden Hall", "2024-06-20", 1)

	wantKind(t, f.res.Cancel(f.ctx, ben, a.ID), booking.KindNotFound)
	if err := f.res.Cancel(f.ctx, ana, a.ID); err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if _, err := f.store.Requests().Get(f.ctx, a.ID); err == nil {
		t.Fatal("cancelled request still stored")
	}

	f.approve(b.ID)
	err := f.res.Cancel(f.ctx, ana, b.ID)
	wantKind(t, err, booking.KindConflict)
	if err.Error() != "This request cannot be cancelled." {
		t.Fatalf("message = %q", err)
	}
}

func TestListsAndMarkRead(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	ben := f.user("Ben", "ben@example.com", model.RoleUser)
	f.venue("Garden Hall", 100)
	a := f.mustSubmit(ana, "Garden Hall", "2024-06-10", 1)
	f.mustSubmit(ben, "Garden Hall", "2024-06-20", 1)

	all, err := f.res.ListAll(f.ctx, f.admin)
	if err != nil || len(all) != 2 || all[0].UserName != "Ben" {
		t.Fatalf("ListAll = %+v, %v", all, err)
	}
	if _, err := f.res.ListAll(f.ctx, ana); !booking.IsKind(err, booking.KindForbidden) {
		t.Fatalf("ListAll as user err = %v", err)
	}
	mine, err := f.res.ListMine(f.ctx, ana)
	if err != nil || len(mine) != 1 || mine[0].VenueName != "Garden Hall" {
		t.Fatalf("ListMine = %+v, %v", mine, err)
	}

	f.approve(a.ID)
	wantKind(t, f.res.MarkRead(f.ctx, ben, a.ID), booking.KindNotFound)
	if err := f.res.MarkRead(f.ctx, ana, a.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := f.store.Requests().Get(f.ctx, a.ID)
	if !got.UserRead {
		t.Fatal("request not marked read")
	}
}

// Random workloads must never leave two approved requests overlapping
// on the same venue.
func TestApprovedNeverOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		f := newFixture(t)
		f.deps.Policy.MaxPending = 1000
		f.deps.Policy.RequestCooldown = 0
		f.res = NewReservationService(f.deps)
		venues := []string{"A", "B"}
		for _, v := range venues {
			f.venue(v, 0)
		}
		var users []booking.Actor
		for i := 0; i < 6; i++ {
			users = append(users, f.user("u", strings.Repeat("x", i+1)+"@example.com", model.RoleUser))
		}

		var ids []uint64
		base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 60; i++ {
			switch rng.Intn(3) {
			case 0, 1:
				start := base.AddDate(0, 0, rng.Intn(40)).Format(booking.DateLayout)
				r, err := f.res.Create(f.ctx, users[rng.Intn(len(users))], CreateRequestInput{
					Venue: venues[rng.Intn(len(venues))], EventType: "e", StartDate: start,
					DurationDays: 1 + rng.Intn(4), TimeOfDay: "t",
				})
				if err == nil {
					ids = append(ids, r.ID)
				}
			default:
				if len(ids) == 0 {
					continue
				}
				target := model.RequestApproved
				if rng.Intn(4) == 0 {
					target = model.RequestRejected
				}
				_, _ = f.res.UpdateStatus(f.ctx, f.admin, ids[rng.Intn(len(ids))], target)
			}
		}

		all, err := f.store.Requests().List(f.ctx)
		if err != nil {
			t.Fatal(err)
		}
		for i := range all {
			for j := i + 1; j < len(all); j++ {
				a, b := all[i].Request, all[j].Request
				if a.Status != model.RequestApproved || b.Status != model.RequestApproved || a.VenueID != b.VenueID {
					continue
				}
				if booking.RequestInterval(a).Overlaps(booking.RequestInterval(b)) {
					t.Fatalf("round %d: approved %d %s and %d %s overlap", round,
						a.ID, booking.RequestInterval(a), b.ID, booking.RequestInterval(b))
				}
			}
		}
	}
}

