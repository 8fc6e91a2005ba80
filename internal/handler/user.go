package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/service"
)

// UserHandler is the admin account panel.
type UserHandler struct {
	Base
	Svc *service.UserService
}

func NewUserHandler(b Base, svc *service.UserService) *UserHandler {
	return &UserHandler{Base: b, Svc: svc}
}

type userReq struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
	Phone string `json:"phone" validate:"max=30"`
	Role  string `json:"role" validate:"omitempty,oneof=user admin"`
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	us, err := h.Svc.List(ctx, middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]userJSON, 0, len(us))
	for _, u := range us {
		out = append(out, userOut(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req userReq
	if err := bindValid(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Svc.UpdateByAdmin(ctx, middleware.ActorFrom(c), id, service.UserInput{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Role: req.Role,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": userOut(u)})
}

// SetStatus suspends or reactivates an account.
func (h *UserHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req statusReq
	if err := bindValid(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Svc.SetStatus(ctx, middleware.ActorFrom(c), id, req.Status); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Svc.Delete(ctx, middleware.ActorFrom(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
