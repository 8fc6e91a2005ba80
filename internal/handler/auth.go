package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/service"
	"github.com/iliyamo/venue-booking/internal/utils"
)

// AuthHandler bundles dependencies for auth and profile endpoints.
type AuthHandler struct {
	Base
	Cfg   config.Config
	Users *service.UserService
	Store repository.Store
}

func NewAuthHandler(b Base, cfg config.Config, users *service.UserService, st repository.Store) *AuthHandler {
	return &AuthHandler{Base: b, Cfg: cfg, Users: users, Store: st}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"max=30"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type profileReq struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"max=30"`
}
type passwordReq struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required,max=72"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    userJSON  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issue creates a fresh token pair for u and stores the refresh hash.
func (h *AuthHandler) issue(c echo.Context, u model.User) (authResp, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Store.Tokens().StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    userOut(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register creates a user account and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindValid(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.Register(ctx, service.RegisterInput{Name: req.Name, Email: req.Email, Phone: req.Phone, Password: req.Password})
	if err != nil {
		return h.fail(c, err)
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindValid(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// refreshOwner validates a refresh token and loads its active owner.
func (h *AuthHandler) refreshOwner(c echo.Context) (model.User, string, error) {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return model.User{}, "", booking.Validation("refresh_token is required.")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.Store.Tokens().ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, "", booking.Unauthorized("Invalid or expired refresh token.")
	}
	if err != nil {
		return model.User{}, "", err
	}
	u, err := h.Store.Users().GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, "", booking.Unauthorized("Invalid or expired refresh token.")
	}
	if err != nil {
		return model.User{}, "", err
	}
	if u.IsSuspended() {
		return model.User{}, "", booking.Forbidden("Your account is suspended.")
	}
	return u, hash, nil
}

// Refresh validates by hash, revokes the old token and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	u, hash, err := h.refreshOwner(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.Tokens().RevokeByHash(ctx, hash); err != nil {
		return h.fail(c, err)
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAccess returns a new access token WITHOUT rotating the refresh
// token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	u, _, err := h.refreshOwner(c)
	if err != nil {
		return h.fail(c, err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"access": tokenPart{Token: access.Token, Expires: access.Exp}})
}

// Logout revokes one session when a refresh_token is posted, or every
// session of the caller when only a bearer token is sent.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid uint64
	if raw := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer "); raw != "" {
		if id, _, err := utils.ParseAccessToken(h.Cfg.JWTSecret, raw); err == nil {
			uid = id
		}
	}
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := reqCtx(c)
	defer cancel()

	switch {
	case refreshToken != "":
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Store.Tokens().ValidateRefresh(ctx, hash); err != nil {
			return h.fail(c, booking.Unauthorized("Invalid or expired refresh token."))
		}
		if err := h.Store.Tokens().RevokeByHash(ctx, hash); err != nil {
			return h.fail(c, err)
		}
	case uid != 0:
		if err := h.Store.Tokens().RevokeAllForUser(ctx, uid); err != nil {
			return h.fail(c, err)
		}
	default:
		return h.fail(c, booking.Validation("Provide an Authorization header or a refresh_token."))
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's account.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.Get(ctx, middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": userOut(u)})
}

// UpdateProfile changes the caller's name and phone.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileReq
	if err := bindValid(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.UpdateProfile(ctx, middleware.ActorFrom(c), req.Name, req.Phone)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": userOut(u)})
}

// ChangePassword replaces the caller's password and ends every session.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req passwordReq
	if err := bindValid(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.ChangePassword(ctx, middleware.ActorFrom(c), req.Current, req.New); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
