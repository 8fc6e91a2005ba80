package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/service"
)

// NotificationHandler is the caller's in-app inbox.
type NotificationHandler struct {
	Base
	Svc *service.NotificationService
}

func NewNotificationHandler(b Base, svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{Base: b, Svc: svc}
}

func (h *NotificationHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	ns, err := h.Svc.List(ctx, middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]notificationJSON, 0, len(ns))
	unread := 0
	for _, n := range ns {
		if !n.Read {
			unread++
		}
		out = append(out, notificationJSON{ID: n.ID, Message: n.Message, Type: n.Type, Read: n.Read, CreatedAt: n.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "unread": unread})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Svc.MarkRead(ctx, middleware.ActorFrom(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Svc.MarkAllRead(ctx, middleware.ActorFrom(c)); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) Clear(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Svc.Clear(ctx, middleware.ActorFrom(c)); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
