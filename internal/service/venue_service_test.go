package service

import (
	"context"
	"testing"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
)

type countingCache struct{ n int }

func (c *countingCache) Invalidate(context.Context) error { c.n++; return nil }

func TestVenueLifecycle(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	cache := &countingCache{}
	vs := NewVenueService(f.deps, cache)

	in := VenueInput{Name: " Garden Hall ", Capacity: 120, BasePrice: 900, OwnerName: "Olga", OwnerEmail: "olga@example.com"}
	if _, err := vs.Save(f.ctx, ana, 0, in); !booking.IsKind(err, booking.KindForbidden) {
		t.Fatalf("user save err = %v", err)
	}
	v, err := vs.Save(f.ctx, f.admin, 0, in)
	if err != nil || v.ID == 0 || v.Name != "Garden Hall" || v.Status != model.VenueAvailable {
		t.Fatalf("create = %+v, %v", v, err)
	}
	_, err = vs.Save(f.ctx, f.admin, 0, in)
	wantKind(t, err, booking.KindConflict)

	got, err := vs.Get(f.ctx, ana, v.ID)
	if err != nil || got.OwnerName != "" || got.OwnerEmail != "" {
		t.Fatalf("user view leaks owner data: %+v, %v", got, err)
	}
	got, _ = vs.Get(f.ctx, f.admin, v.ID)
	if got.OwnerName != "Olga" {
		t.Fatalf("admin view = %+v", got)
	}

	in.Capacity = 80
	if v, err = vs.Save(f.ctx, f.admin, v.ID, in); err != nil || v.Capacity != 80 {
		t.Fatalf("update = %+v, %v", v, err)
	}
	if _, err := vs.SetStatus(f.ctx, f.admin, v.ID, model.VenueMaintenance); err != nil {
		t.Fatal(err)
	}
	_, err = vs.SetStatus(f.ctx, f.admin, v.ID, model.VenueDeleted)
	wantKind(t, err, booking.KindValidation)

	if err := vs.Delete(f.ctx, f.admin, v.ID); err != nil {
		t.Fatal(err)
	}
	wantKind(t, vs.Delete(f.ctx, f.admin, v.ID), booking.KindNotFound)
	_, err = vs.Get(f.ctx, f.admin, v.ID)
	wantKind(t, err, booking.KindNotFound)
	list, err := vs.List(f.ctx, ana)
	if err != nil || len(list) != 0 {
		t.Fatalf("list after delete = %+v, %v", list, err)
	}
	// create, update, status, delete
	if cache.n != 4 {
		t.Fatalf("invalidations = %d, want 4", cache.n)
	}
}

func TestVenueValidation(t *testing.T) {
	f := newFixture(t)
	vs := NewVenueService(f.deps, nil)
	_, err := vs.Save(f.ctx, f.admin, 0, VenueInput{Name: "  "})
	wantKind(t, err, booking.KindValidation)
	_, err = vs.Save(f.ctx, f.admin, 0, VenueInput{Name: "X", Capacity: -1})
	wantKind(t, err, booking.KindValidation)
	_, err = vs.Save(f.ctx, f.admin, 42, VenueInput{Name: "X"})
	wantKind(t, err, booking.KindNotFound)
}
