package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/utils"
)

// MinPasswordLength is the shortest password accepted at registration
// and on change.
const MinPasswordLength = 6

// UserInput holds the fields an admin may edit on an account.
type UserInput struct {
	Name  string
	Email string
	Phone string
	Role  string
}

// UserService manages accounts.  Admin accounts are protected: they can
// not be deleted, edited by another admin or suspended by themselves.
type UserService struct {
	d          Deps
	bcryptCost int
}

func NewUserService(d Deps, bcryptCost int) *UserService {
	return &UserService{d: d.withDefaults(), bcryptCost: bcryptCost}
}

// List returns every account for the admin panel.
func (s *UserService) List(ctx context.Context, actor booking.Actor) ([]model.User, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.d.Store.Users().List(ctx)
}

// Get returns the caller's own account.
func (s *UserService) Get(ctx context.Context, actor booking.Actor) (model.User, error) {
	if err := actor.RequireUser(); err != nil {
		return model.User{}, err
	}
	u, err := s.d.Store.Users().GetByID(ctx, actor.UserID)
	return u, mapNotFound(err, "User not found.")
}

// UpdateByAdmin edits another account.
func (s *UserService) UpdateByAdmin(ctx context.Context, actor booking.Actor, id uint64, in UserInput) (model.User, error) {
	if err := actor.RequireAdmin(); err != nil {
		return model.User{}, err
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return model.User{}, booking.Validation("Name and email are required.")
	}
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return model.User{}, booking.Validation("Invalid role %q.", in.Role)
	}

	var out model.User
	err := s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		u, err := tx.Users().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, "User not found.")
		}
		if u.IsAdmin() && u.ID != actor.UserID {
			return booking.Forbidden("You cannot edit another administrator.")
		}
		if u.ID == actor.UserID && role != model.RoleAdmin {
			return booking.Forbidden("You cannot remove your own administrator role.")
		}
		u.Name, u.Email, u.Phone, u.Role = strings.TrimSpace(in.Name), strings.ToLower(strings.TrimSpace(in.Email)), strings.TrimSpace(in.Phone), role
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if errors.Is(err, repository.ErrEmailExists) {
		return model.User{}, booking.Conflict("That email is already registered.")
	}
	return out, err
}

// SetStatus suspends or reactivates an account.  Suspending also
// revokes the account's refresh tokens.
func (s *UserService) SetStatus(ctx context.Context, actor booking.Actor, id uint64, status string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if status != model.AccountActive && status != model.AccountSuspended {
		return booking.Validation("Invalid account status %q.", status)
	}
	if id == actor.UserID {
		return booking.Forbidden("You cannot change the status of your own account.")
	}
	return s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		u, err := tx.Users().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, "User not found.")
		}
		if u.IsAdmin() {
			return booking.Forbidden("Administrator accounts cannot be suspended.")
		}
		if err := tx.Users().SetStatus(ctx, id, status); err != nil {
			return err
		}
		if status == model.AccountSuspended {
			return tx.Tokens().RevokeAllForUser(ctx, id)
		}
		return nil
	})
}

// Delete removes an account and everything it owns.
func (s *UserService) Delete(ctx context.Context, actor booking.Actor, id uint64) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if id == actor.UserID {
		return booking.Forbidden("You cannot delete your own account.")
	}
	return s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		u, err := tx.Users().GetForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, "User not found.")
		}
		if u.IsAdmin() {
			return booking.Forbidden("Administrator accounts cannot be deleted.")
		}
		return tx.Users().Delete(ctx, id)
	})
}

// UpdateProfile lets a user change their own name and phone.
func (s *UserService) UpdateProfile(ctx context.Context, actor booking.Actor, name, phone string) (model.User, error) {
	if err := actor.RequireUser(); err != nil {
		return model.User{}, err
	}
	if strings.TrimSpace(name) == "" {
		return model.User{}, booking.Validation("The name is required.")
	}
	var out model.User
	err := s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		u, err := tx.Users().GetForUpdate(ctx, actor.UserID)
		if err != nil {
			return mapNotFound(err, "User not found.")
		}
		u.Name, u.Phone = strings.TrimSpace(name), strings.TrimSpace(phone)
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}

// ChangePassword replaces the caller's password after checking the
// current one, and signs out every other session.
func (s *UserService) ChangePassword(ctx context.Context, actor booking.Actor, current, next string) error {
	if err := actor.RequireUser(); err != nil {
		return err
	}
	if len(next) < MinPasswordLength {
		return booking.Validation("The new password must have at least %d characters.", MinPasswordLength)
	}
	hash, err := utils.HashPassword(next, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		u, err := tx.Users().GetForUpdate(ctx, actor.UserID)
		if err != nil {
			return mapNotFound(err, "User not found.")
		}
		if !utils.VerifyPassword(u.PasswordHash, current) {
			return booking.Unauthorized("The current password is incorrect.")
		}
		if err := tx.Users().SetPassword(ctx, u.ID, hash); err != nil {
			return err
		}
		return tx.Tokens().RevokeAllForUser(ctx, u.ID)
	})
}

// PromoteAdmin grants the admin role to the account with email.  It is
// an operator action with no actor.
func (s *UserService) PromoteAdmin(ctx context.Context, email string) (model.User, error) {
	var out model.User
	err := s.d.Store.InTx(ctx, func(tx repository.Repos) error {
		u, err := tx.Users().GetByEmail(ctx, email)
		if err != nil {
			return mapNotFound(err, "User not found.")
		}
		u.Role = model.RoleAdmin
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}

// RegisterInput is a self-service sign up.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Register creates a regular active account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	u := model.User{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Phone: strings.TrimSpace(in.Phone),
		Role:  model.RoleUser,
	}
	if u.Name == "" || u.Email == "" {
		return model.User{}, booking.Validation("Name and email are required.")
	}
	if len(in.Password) < MinPasswordLength {
		return model.User{}, booking.Validation("The password must have at least %d characters.", MinPasswordLength)
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = hash
	u.AccountStatus = model.AccountActive
	u.CreatedAt = s.d.Clock.Now()
	id, err := s.d.Store.Users().Create(ctx, u)
	if errors.Is(err, repository.ErrEmailExists) {
		return model.User{}, booking.Conflict("That email is already registered.")
	}
	if err != nil {
		return model.User{}, err
	}
	u.ID = id
	return u, nil
}

// Authenticate checks credentials.  Unknown emails and wrong passwords
// give the same answer; suspended accounts are refused.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.d.Store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, booking.Unauthorized("Invalid email or password.")
	}
	if err != nil {
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, booking.Unauthorized("Invalid email or password.")
	}
	if u.IsSuspended() {
		return model.User{}, booking.Forbidden("Your account is suspended.")
	}
	return u, nil
}
