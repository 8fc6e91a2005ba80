package service

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/utils"
)

func TestAdminAccountsAreProtected(t *testing.T) {
	f := newFixture(t)
	other := f.user("Second", "second@example.com", model.RoleAdmin)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	us := NewUserService(f.deps, bcrypt.MinCost)

	wantKind(t, us.Delete(f.ctx, f.admin, f.admin.UserID), booking.KindForbidden)
	wantKind(t, us.Delete(f.ctx, f.admin, other.UserID), booking.KindForbidden)
	wantKind(t, us.SetStatus(f.ctx, f.admin, other.UserID, model.AccountSuspended), booking.KindForbidden)
	wantKind(t, us.SetStatus(f.ctx, f.admin, f.admin.UserID, model.AccountSuspended), booking.KindForbidden)
	_, err := us.UpdateByAdmin(f.ctx, f.admin, other.UserID, UserInput{Name: "X", Email: "x@example.com"})
	wantKind(t, err, booking.KindForbidden)
	_, err = us.UpdateByAdmin(f.ctx, f.admin, f.admin.UserID, UserInput{Name: "Admin", Email: "admin@example.com", Role: model.RoleUser})
	wantKind(t, err, booking.KindForbidden)
	wantKind(t, us.Delete(f.ctx, ana, 999), booking.KindForbidden)
}

func TestUpdateByAdmin(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	f.user("Ben", "ben@example.com", model.RoleUser)
	us := NewUserService(f.deps, bcrypt.MinCost)

	u, err := us.UpdateByAdmin(f.ctx, f.admin, ana.UserID, UserInput{Name: "Ana Maria", Email: " ANA.M@example.com ", Phone: "555"})
	if err != nil || u.Email != "ana.m@example.com" || u.Role != model.RoleUser {
		t.Fatalf("update = %+v, %v", u, err)
	}
	_, err = us.UpdateByAdmin(f.ctx, f.admin, ana.UserID, UserInput{Name: "Ana", Email: "ben@example.com"})
	wantKind(t, err, booking.KindConflict)
	_, err = us.UpdateByAdmin(f.ctx, f.admin, ana.UserID, UserInput{Name: "Ana", Email: "a@example.com", Role: "root"})
	wantKind(t, err, booking.KindValidation)
}

func TestSuspendRevokesTokens(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	us := NewUserService(f.deps, bcrypt.MinCost)
	if err := f.store.Tokens().StoreRefresh(f.ctx, ana.UserID, "h1", f.clock.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	if err := us.SetStatus(f.ctx, f.admin, ana.UserID, model.AccountSuspended); err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.Tokens().ValidateRefresh(f.ctx, "h1"); err == nil {
		t.Fatal("refresh token survived suspension")
	}
	u, _ := f.store.Users().GetByID(f.ctx, ana.UserID)
	if !u.IsSuspended() {
		t.Fatal("user not suspended")
	}
	if err := us.SetStatus(f.ctx, f.admin, ana.UserID, model.AccountActive); err != nil {
		t.Fatal(err)
	}
	wantKind(t, us.SetStatus(f.ctx, f.admin, ana.UserID, "banned"), booking.KindValidation)
}

func TestDeleteUserRemovesRequests(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	f.venue("Garden Hall", 100)
	r := f.mustSubmit(ana, "Garden Hall", "2024-06-10", 1)
	us := NewUserService(f.deps, bcrypt.MinCost)

	if err := us.Delete(f.ctx, f.admin, ana.UserID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.Requests().Get(f.ctx, r.ID); err == nil {
		t.Fatal("request of deleted user still stored")
	}
	wantKind(t, us.Delete(f.ctx, f.admin, ana.UserID), booking.KindNotFound)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	hash, err := utils.HashPassword("old-secret", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	id, err := f.store.Users().Create(f.ctx, model.User{Name: "Ana", Email: "ana@example.com", PasswordHash: hash})
	if err != nil {
		t.Fatal(err)
	}
	ana := booking.Actor{UserID: id, Role: model.RoleUser}
	_ = f.store.Tokens().StoreRefresh(f.ctx, id, "h1", f.clock.Now().Add(time.Hour))
	us := NewUserService(f.deps, bcrypt.MinCost)

	wantKind(t, us.ChangePassword(f.ctx, ana, "old-secret", "short"), booking.KindValidation)
	wantKind(t, us.ChangePassword(f.ctx, ana, "wrong", "new-secret"), booking.KindUnauthorized)
	if err := us.ChangePassword(f.ctx, ana, "old-secret", "new-secret"); err != nil {
		t.Fatal(err)
	}
	u, _ := f.store.Users().GetByID(f.ctx, id)
	if !utils.VerifyPassword(u.PasswordHash, "new-secret") {
		t.Fatal("password not changed")
	}
	if _, err := f.store.Tokens().ValidateRefresh(f.ctx, "h1"); err == nil {
		t.Fatal("sessions not revoked")
	}
}

func TestProfileAndPromote(t *testing.T) {
	f := newFixture(t)
	ana := f.user("Ana", "ana@example.com", model.RoleUser)
	us := NewUserService(f.deps, bcrypt.MinCost)

	u, err := us.UpdateProfile(f.ctx, ana, "  Ana B ", "123")
	if err != nil || u.Name != "Ana B" || u.Phone != "123" {
		t.Fatalf("profile = %+v, %v", u, err)
	}
	_, err = us.UpdateProfile(f.ctx, ana, " ", "")
	wantKind(t, err, booking.KindValidation)

	u, err = us.PromoteAdmin(f.ctx, "ana@example.com")
	if err != nil || !u.IsAdmin() {
		t.Fatalf("promote = %+v, %v", u, err)
	}
	_, err = us.PromoteAdmin(f.ctx, "nobody@example.com")
	wantKind(t, err, booking.KindNotFound)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	us := NewUserService(f.deps, bcrypt.MinCost)

	_, err := us.Register(f.ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "12345"})
	wantKind(t, err, booking.KindValidation)
	u, err := us.Register(f.ctx, RegisterInput{Name: " Ana ", Email: "Ana@Example.com", Password: "123456"})
	if err != nil || u.ID == 0 || u.Email != "ana@example.com" || u.Role != model.RoleUser {
		t.Fatalf("register = %+v, %v", u, err)
	}
	_, err = us.Register(f.ctx, RegisterInput{Name: "Other", Email: "ana@example.com", Password: "123456"})
	wantKind(t, err, booking.KindConflict)

	if _, err := us.Authenticate(f.ctx, "ANA@example.com", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, err = us.Authenticate(f.ctx, "ana@example.com", "wrong!")
	wantKind(t, err, booking.KindUnauthorized)
	_, err = us.Authenticate(f.ctx, "nobody@example.com", "123456")
	wantKind(t, err, booking.KindUnauthorized)

	if err := NewUserService(f.deps, bcrypt.MinCost).SetStatus(f.ctx, f.admin, u.ID, model.AccountSuspended); err != nil {
		t.Fatal(err)
	}
	_, err = us.Authenticate(f.ctx, "ana@example.com", "123456")
	wantKind(t, err, booking.KindForbidden)
}
