package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/service"
)

// ReportHandler files support reports and lets admins work them.
type ReportHandler struct {
	Base
	Svc *service.ReportService
}

func NewReportHandler(b Base, svc *service.ReportService) *ReportHandler {
	return &ReportHandler{Base: b, Svc: svc}
}

type reportReq struct {
	Type    string `json:"type" validate:"max=50"`
	Message string `json:"message" validate:"required,max=5000"`
}

func (h *ReportHandler) Create(c echo.Context) error {
	var req reportReq
	if err := bindValid(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.Svc.Create(ctx, middleware.ActorFrom(c), req.Type, req.Message)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": reportOut(r)})
}

func (h *ReportHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	rs, err := h.Svc.List(ctx, middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]reportJSON, 0, len(rs))
	for _, r := range rs {
		j := reportOut(r.Report)
		j.UserName, j.UserEmail = r.UserName, r.UserEmail
		out = append(out, j)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *ReportHandler) SetStatus(c echo.Context) error {
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

func (h *ReportHandler) Delete(c echo.Context) error {
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
