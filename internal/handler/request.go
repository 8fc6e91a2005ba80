package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/service"
)

// RequestHandler exposes the reservation request lifecycle.
type RequestHandler struct {
	Base
	Svc *service.ReservationService
}

func NewRequestHandler(b Base, svc *service.ReservationService) *RequestHandler {
	return &RequestHandler{Base: b, Svc: svc}
}

type createRequestReq struct {
	Venue           string `json:"venue" validate:"max=150"`
	VenueID         uint64 `json:"venue_id"`
	EventType       string `json:"event_type" validate:"max=100"`
	StartDate       string `json:"start_date"`
	DurationDays    int    `json:"duration_days" validate:"gte=0,max=365"`
	TimeOfDay       string `json:"time_of_day" validate:"max=50"`
	Guests          int    `json:"guests" validate:"gte=0"`
	SpecialRequests string `json:"special_requests" validate:"max=2000"`
}

type statusReq struct {
	Status string `json:"status" validate:"required"`
}

// Create submits a reservation request for the caller.
func (h *RequestHandler) Create(c echo.Context) error {
	var req createRequestReq
	if err := bindValid(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.Svc.Create(ctx, middleware.ActorFrom(c), service.CreateRequestInput{
		Venue:           req.Venue,
		VenueID:         req.VenueID,
		EventType:       req.EventType,
		StartDate:       req.StartDate,
		DurationDays:    req.DurationDays,
		TimeOfDay:       req.TimeOfDay,
		Guests:          req.Guests,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": requestOut(r)})
}

// UpdateStatus approves or rejects a request.  Repeating a decision is
// answered with changed=false.
func (h *RequestHandler) UpdateStatus(c echo.Context) error {
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
	res, err := h.Svc.UpdateStatus(ctx, middleware.ActorFrom(c), id, req.Status)
	if err != nil {
		return h.fail(c, err)
	}
	cascaded := res.Cascaded
	if cascaded == nil {
		cascaded = []uint64{}
	}
	return c.JSON(http.StatusOK, echo.Map{"item": requestOut(res.Request), "changed": res.Changed, "cascaded": cascaded})
}

// Cancel withdraws one of the caller's pending requests.
func (h *RequestHandler) Cancel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Svc.Cancel(ctx, middleware.ActorFrom(c), id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RequestHandler) ListAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	vs, err := h.Svc.ListAll(ctx, middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": requestViewsOut(vs)})
}

func (h *RequestHandler) ListMine(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	vs, err := h.Svc.ListMine(ctx, middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": requestViewsOut(vs)})
}

func (h *RequestHandler) MarkRead(c echo.Context) error {
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
