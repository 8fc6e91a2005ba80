package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/clock"
	"github.com/iliyamo/venue-booking/internal/model"
)

func seed(t *testing.T) (*MemoryStore, uint64, uint64) {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore(clock.NewFake(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))
	uid, err := s.Users().Create(ctx, model.User{Name: "Ana", Email: " Ana@Example.com ", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	vid, err := s.Venues().Create(ctx, model.Venue{Name: "Garden Hall", Capacity: 100})
	if err != nil {
		t.Fatalf("create venue: %v", err)
	}
	return s, uid, vid
}

func TestMemoryUserEmailIsUnique(t *testing.T) {
	s, _, _ := seed(t)
	_, err := s.Users().Create(context.Background(), model.User{Email: "ana@example.com"})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
	u, err := s.Users().GetByEmail(context.Background(), "ANA@example.com")
	if err != nil || u.Role != model.RoleUser || u.AccountStatus != model.AccountActive {
		t.Fatalf("GetByEmail = %+v, %v", u, err)
	}
}

func TestMemoryInTxRollsBack(t *testing.T) {
	s, uid, vid := seed(t)
	ctx := context.Background()
	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx Repos) error {
		if _, err := tx.Requests().Create(ctx, model.Request{UserID: uid, VenueID: vid, DurationDays: 1}); err != nil {
			return err
		}
		if err := tx.Venues().SetStatus(ctx, vid, model.VenueReserved); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err = %v", err)
	}
	if n, _ := s.Requests().CountByStatus(ctx, uid, model.RequestPending); n != 0 {
		t.Fatalf("rolled back request still counted: %d", n)
	}
	if v, _ := s.Venues().Get(ctx, vid); v.Status != model.VenueAvailable {
		t.Fatalf("venue status = %s after rollback", v.Status)
	}
}

func TestMemoryFindOverlappingWithVenueStatus(t *testing.T) {
	s, uid, vid := seed(t)
	ctx := context.Background()
	start, _ := booking.ParseDay("2024-06-10")
	id, err := s.Requests().Create(ctx, model.Request{UserID: uid, VenueID: vid, StartDate: start, DurationDays: 3, Status: model.RequestApproved})
	if err != nil {
		t.Fatal(err)
	}
	iv, _ := booking.NewInterval(start.AddDate(0, 0, 2), 1)

	got, err := s.Requests().FindOverlapping(ctx, booking.SweepQuery(uid, iv))
	if err != nil || len(got) != 1 || got[0].ID != id {
		t.Fatalf("sweep on available venue = %v, %v", got, err)
	}
	if err := s.Venues().SetStatus(ctx, vid, model.VenueReserved); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Requests().FindOverlapping(ctx, booking.SweepQuery(uid, iv))
	if len(got) != 0 {
		t.Fatalf("sweep on reserved venue returned %v", got)
	}
}

func TestMemoryMarkReadRequiresOwner(t *testing.T) {
	s, uid, vid := seed(t)
	ctx := context.Background()
	id, _ := s.Requests().Create(ctx, model.Request{UserID: uid, VenueID: vid, DurationDays: 1})
	if err := s.Requests().MarkRead(ctx, id, uid+100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign mark read err = %v", err)
	}
	if err := s.Requests().MarkRead(ctx, id, uid); err != nil {
		t.Fatal(err)
	}
	if err := s.Requests().MarkRead(ctx, id, uid); err != nil {
		t.Fatalf("marking twice must succeed: %v", err)
	}
	if err := s.Requests().SetStatus(ctx, id, model.RequestApproved); err != nil {
		t.Fatal(err)
	}
	if r, _ := s.Requests().Get(ctx, id); r.UserRead {
		t.Fatal("a new decision must be unread")
	}
}

func TestMemoryDeleteUserCascades(t *testing.T) {
	s, uid, vid := seed(t)
	ctx := context.Background()
	_, _ = s.Requests().Create(ctx, model.Request{UserID: uid, VenueID: vid, DurationDays: 1})
	_, _ = s.Notifications().Create(ctx, model.Notification{UserID: uid, Message: "hi"})
	_, _ = s.Reports().Create(ctx, model.Report{UserID: uid, Message: "broken light"})
	if err := s.Users().Delete(ctx, uid); err != nil {
		t.Fatal(err)
	}
	if rs, _ := s.Requests().List(ctx); len(rs) != 0 {
		t.Fatalf("requests left: %v", rs)
	}
	if ns, _ := s.Notifications().ListByUser(ctx, uid); len(ns) != 0 {
		t.Fatalf("notifications left: %v", ns)
	}
	if rp, _ := s.Reports().List(ctx); len(rp) != 0 {
		t.Fatalf("reports left: %v", rp)
	}
}

func TestMemoryTokens(t *testing.T) {
	s, uid, _ := seed(t)
	ctx := context.Background()
	exp := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	if err := s.Tokens().StoreRefresh(ctx, uid, "h1", exp); err != nil {
		t.Fatal(err)
	}
	if got, err := s.Tokens().ValidateRefresh(ctx, "h1"); err != nil || got != uid {
		t.Fatalf("ValidateRefresh = %d, %v", got, err)
	}
	_ = s.Tokens().RevokeByHash(ctx, "h1")
	if _, err := s.Tokens().ValidateRefresh(ctx, "h1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("revoked token err = %v", err)
	}
}
