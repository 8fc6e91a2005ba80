package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
)

func TestContactSubmit(t *testing.T) {
	f := newFixture(t)
	cs := NewContactService(f.deps, nil, "inbox@example.com")

	_, err := cs.Submit(f.ctx, "", ContactInput{Name: "Ana", Email: "not-an-email", Message: "hi"})
	wantKind(t, err, booking.KindValidation)
	_, err = cs.Submit(f.ctx, "", ContactInput{Name: "Ana", Email: "ana@example.com"})
	wantKind(t, err, booking.KindValidation)

	m, err := cs.Submit(f.ctx, "", ContactInput{Name: "Ana", Email: " Ana@Example.com ", Subject: "Dates", Message: "Is July free?"})
	if err != nil || m.Email != "ana@example.com" {
		t.Fatalf("submit = %+v, %v", m, err)
	}
	got := f.mail.to("inbox@example.com")
	if len(got) != 1 || !strings.Contains(got[0].HTML, "Is July free?") {
		t.Fatalf("admin email = %+v", got)
	}

	f.clock.Advance(3 * time.Minute)
	_, err = cs.Submit(f.ctx, "", ContactInput{Name: "Ana", Email: "ana@example.com", Message: "again"})
	wantKind(t, err, booking.KindRateLimited)
	f.clock.Advance(2 * time.Minute)
	if _, err := cs.Submit(f.ctx, "", ContactInput{Name: "Ana", Email: "ana@example.com", Message: "again"}); err != nil {
		t.Fatalf("after cooldown: %v", err)
	}
}

func TestContactBurstLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	f := newFixture(t)
	cs := NewContactService(f.deps, NewRedisCooldown(rdb, "test"), "")

	if _, err := cs.Submit(f.ctx, "10.0.0.1", ContactInput{Name: "A", Email: "a@example.com", Message: "one"}); err != nil {
		t.Fatal(err)
	}
	_, err := cs.Submit(f.ctx, "10.0.0.1", ContactInput{Name: "B", Email: "b@example.com", Message: "two"})
	wantKind(t, err, booking.KindRateLimited)
	var be *booking.Error
	if !errors.As(err, &be) || be.RetryAfterMinutes != 1 {
		t.Fatalf("retry after = %+v", be)
	}
	if _, err := cs.Submit(f.ctx, "10.0.0.2", ContactInput{Name: "B", Email: "b@example.com", Message: "two"}); err != nil {
		t.Fatalf("other client: %v", err)
	}
	mr.FastForward(time.Minute)
	if _, err := cs.Submit(f.ctx, "10.0.0.1", ContactInput{Name: "C", Email: "c@example.com", Message: "three"}); err != nil {
		t.Fatalf("after window: %v", err)
	}
}

func TestContactBurstLimitRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	f := newFixture(t)
	cs := NewContactService(f.deps, NewRedisCooldown(rdb, ""), "")
	if _, err := cs.Submit(f.ctx, "10.0.0.1", ContactInput{Name: "A", Email: "a@example.com", Message: "one"}); err != nil {
		t.Fatalf("redis failure must not block the form: %v", err)
	}
}

func TestReply(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	cs := NewContactService(f.deps, nil, "")
	m, err := cs.Submit(f.ctx, "", ContactInput{Name: "Ben", Email: "ben@example.com", Message: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	rep, err := NewReportService(f.deps).Create(f.ctx, ana, "bug", "the map is blank")
	if err != nil {
		t.Fatal(err)
	}

	wantKind(t, cs.Reply(f.ctx, ana, ReplyInput{Email: "ben@example.com", Message: "hi"}), booking.KindForbidden)
	wantKind(t, cs.Reply(f.ctx, f.admin, ReplyInput{Email: "ben@example.com"}), booking.KindValidation)
	wantKind(t, cs.Reply(f.ctx, f.admin, ReplyInput{Kind: "sms", Email: "ben@example.com", Message: "hi"}), booking.KindValidation)

	if err := cs.Reply(f.ctx, f.admin, ReplyInput{ID: m.ID, Email: "ben@example.com", Message: "Thanks!"}); err != nil {
		t.Fatal(err)
	}
	got, _ := f.store.Contacts().Get(f.ctx, m.ID)
	if !got.Read || len(f.mail.to("ben@example.com")) != 1 {
		t.Fatalf("contact reply: read=%v emails=%d", got.Read, len(f.mail.to("ben@example.com")))
	}

	if err := cs.Reply(f.ctx, f.admin, ReplyInput{Kind: "report", ID: rep.ID, Email: "ana@example.com", Message: "Fixed."}); err != nil {
		t.Fatal(err)
	}
	r, _ := f.store.Reports().Get(f.ctx, rep.ID)
	if r.Status != model.ReportResolved {
		t.Fatalf("report status = %s", r.Status)
	}
	if !strings.Contains(f.mail.to("ana@example.com")[0].HTML, "Ana") {
		t.Fatal("reply not addressed to the reporter")
	}
	wantKind(t, cs.Reply(f.ctx, f.admin, ReplyInput{Kind: "report", ID: 999, Email: "x@example.com", Message: "x"}), booking.KindNotFound)
}
