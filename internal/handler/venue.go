package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/service"
)

// VenueHandler serves the public venue list and the admin venue editor.
type VenueHandler struct {
	Base
	Svc *service.VenueService
}

func NewVenueHandler(b Base, svc *service.VenueService) *VenueHandler {
	return &VenueHandler{Base: b, Svc: svc}
}

type venueReq struct {
	Name          string  `json:"name" validate:"required,max=150"`
	Address       string  `json:"address" validate:"max=255"`
	Lat           float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng           float64 `json:"lng" validate:"gte=-180,lte=180"`
	Capacity      int     `json:"capacity" validate:"gte=0"`
	BasePrice     float64 `json:"base_price" validate:"gte=0"`
	PricePerGuest float64 `json:"price_per_guest" validate:"gte=0"`
	Description   string  `json:"description"`
	Services      string  `json:"services"`
	ImageURL      string  `json:"image_url" validate:"omitempty,url"`
	OwnerName     string  `json:"owner_name" validate:"max=100"`
	OwnerPhone    string  `json:"owner_phone" validate:"max=30"`
	OwnerEmail    string  `json:"owner_email" validate:"omitempty,email"`
}

func (r venueReq) input() service.VenueInput {
	return service.VenueInput{
		Name: r.Name, Address: r.Address, Lat: r.Lat, Lng: r.Lng, Capacity: r.Capacity,
		BasePrice: r.BasePrice, PricePerGuest: r.PricePerGuest, Description: r.Description,
		Services: r.Services, ImageURL: r.ImageURL,
		OwnerName: r.OwnerName, OwnerPhone: r.OwnerPhone, OwnerEmail: r.OwnerEmail,
	}
}

// List returns every visible venue.  Owner contacts are only filled in
// for admins.
func (h *VenueHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	vs, err := h.Svc.List(ctx, middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]venueJSON, 0, len(vs))
	for _, v := range vs {
		out = append(out, venueOut(v))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *VenueHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Svc.Get(ctx, middleware.ActorFrom(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": venueOut(v)})
}

// Create and Update share the body; Update reads :id.
func (h *VenueHandler) Create(c echo.Context) error { return h.save(c, 0, http.StatusCreated) }

func (h *VenueHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.save(c, id, http.StatusOK)
}

func (h *VenueHandler) save(c echo.Context, id uint64, code int) error {
	var req venueReq
	if err := bindValid(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Svc.Save(ctx, middleware.ActorFrom(c), id, req.input())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(code, echo.Map{"item": venueOut(v)})
}

func (h *VenueHandler) Delete(c echo.Context) error {
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

// SetStatus toggles the display status.  It never touches requests.
func (h *VenueHandler) SetStatus(c echo.Context) error {
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
	v, err := h.Svc.SetStatus(ctx, middleware.ActorFrom(c), id, req.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": venueOut(v)})
}
