package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/service"
)

// ContactHandler receives the public contact form and the admin replies.
type ContactHandler struct {
	Base
	Svc *service.ContactService
}

func NewContactHandler(b Base, svc *service.ContactService) *ContactHandler {
	return &ContactHandler{Base: b, Svc: svc}
}

type contactReq struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type replyReq struct {
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=10000"`
}

// Submit stores a contact message.  The client address feeds the burst
// limit.
func (h *ContactHandler) Submit(c echo.Context) error {
	var req contactReq
	if err := bindValid(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	m, err := h.Svc.Submit(ctx, c.RealIP(), service.ContactInput{
		Name: req.Name, Email: req.Email, Subject: req.Subject, Message: req.Message,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": contactJSON{
		ID: m.ID, Name: m.Name, Email: m.Email, Subject: m.Subject, Message: m.Message, CreatedAt: m.CreatedAt,
	}})
}

func (h *ContactHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	ms, err := h.Svc.List(ctx, middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]contactJSON, 0, len(ms))
	for _, m := range ms {
		out = append(out, contactJSON{ID: m.ID, Name: m.Name, Email: m.Email, Subject: m.Subject, Message: m.Message, Read: m.Read, CreatedAt: m.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *ContactHandler) MarkRead(c echo.Context) error {
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

// ReplyContact answers a contact message and marks it read.
func (h *ContactHandler) ReplyContact(c echo.Context) error { return h.reply(c, "contact", true) }

// ReplyReport answers a report and resolves it.
func (h *ContactHandler) ReplyReport(c echo.Context) error { return h.reply(c, "report", true) }

// SendEmail sends a direct email that is not tied to a message or report.
func (h *ContactHandler) SendEmail(c echo.Context) error { return h.reply(c, "contact", false) }

func (h *ContactHandler) reply(c echo.Context, kind string, withID bool) error {
	var id uint64
	if withID {
		var err error
		if id, err = pathID(c); err != nil {
			return h.fail(c, err)
		}
	}
	var req replyReq
	if err := bindValid(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	err := h.Svc.Reply(ctx, middleware.ActorFrom(c), service.ReplyInput{
		Kind: kind, ID: id, Email: req.Email, Subject: req.Subject, Message: req.Message,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
}
