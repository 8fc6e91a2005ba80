package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/middleware"
)

// RegisterVenues exposes the public venue list, cached for anonymous
// visitors, and the admin venue editor.
func RegisterVenues(e *echo.Echo, h *handler.VenueHandler, g Guards, cache echo.MiddlewareFunc) {
	public := []echo.MiddlewareFunc{middleware.OptionalJWT(g.JWTSecret)}
	if cache != nil {
		public = append(public, cache)
	}
	e.GET("/v1/venues", h.List, public...)
	e.GET("/v1/venues/:id", h.Get, public...)

	admin := e.Group("/v1/admin/venues", g.Admin()...)
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
	admin.PATCH("/:id/status", h.SetStatus)
}

// RegisterRequests registers the reservation request lifecycle.
func RegisterRequests(e *echo.Echo, h *handler.RequestHandler, g Guards) {
	m := e.Group("/v1", g.Member()...)
	m.POST("/requests", h.Create)
	m.DELETE("/requests/:id", h.Cancel)
	m.POST("/requests/:id/read", h.MarkRead)
	m.GET("/my-requests", h.ListMine)

	a := e.Group("/v1/admin/requests", g.Admin()...)
	a.GET("", h.ListAll)
	a.PATCH("/:id/status", h.UpdateStatus)
}

// RegisterUsers registers the admin account panel.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, g Guards) {
	a := e.Group("/v1/admin/users", g.Admin()...)
	a.GET("", h.List)
	a.PUT("/:id", h.Update)
	a.PATCH("/:id/status", h.SetStatus)
	a.DELETE("/:id", h.Delete)
}

// RegisterReports registers report filing and the admin report desk.
// Replies to a report go through the contact handler since they send mail.
func RegisterReports(e *echo.Echo, h *handler.ReportHandler, c *handler.ContactHandler, g Guards) {
	e.POST("/v1/reports", h.Create, g.Member()...)

	a := e.Group("/v1/admin/reports", g.Admin()...)
	a.GET("", h.List)
	a.PATCH("/:id/status", h.SetStatus)
	a.DELETE("/:id", h.Delete)
	a.POST("/:id/reply", c.ReplyReport)
}

// RegisterNotifications registers the caller's inbox.
func RegisterNotifications(e *echo.Echo, h *handler.NotificationHandler, g Guards) {
	m := e.Group("/v1/notifications", g.Member()...)
	m.GET("", h.List)
	m.POST("/:id/read", h.MarkRead)
	m.POST("/read-all", h.MarkAllRead)
	m.DELETE("", h.Clear)
}

// RegisterContact registers the public contact form and the admin inbox.
func RegisterContact(e *echo.Echo, h *handler.ContactHandler, g Guards) {
	e.POST("/v1/contact", h.Submit)

	a := e.Group("/v1/admin", g.Admin()...)
	a.GET("/contacts", h.List)
	a.POST("/contacts/:id/read", h.MarkRead)
	a.POST("/contacts/:id/reply", h.ReplyContact)
	a.POST("/emails", h.SendEmail)
}
