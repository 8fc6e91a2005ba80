package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// Guards builds the middleware chains shared by the route groups.
type Guards struct {
	JWTSecret string
	Users     repository.UserRepository
}

// Member accepts any active signed in account.
func (g Guards) Member() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(g.JWTSecret),
		middleware.RequireActive(g.Users),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	}
}

// Admin accepts active admins only.
func (g Guards) Admin() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(g.JWTSecret),
		middleware.RequireActive(g.Users),
		middleware.RequireRole(model.RoleAdmin),
	}
}

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	Requests      *handler.RequestHandler
	Venues        *handler.VenueHandler
	Users         *handler.UserHandler
	Reports       *handler.ReportHandler
	Notifications *handler.NotificationHandler
	Contact       *handler.ContactHandler
}

// Mount registers all routes.  venueCache wraps the public venue list and
// may be nil.
func Mount(e *echo.Echo, h Handlers, g Guards, venueCache echo.MiddlewareFunc) {
	if e.Validator == nil {
		e.Validator = handler.NewValidator()
	}
	RegisterRoutes(e, h.Health)
	RegisterAuth(e, h.Auth, g)
	RegisterVenues(e, h.Venues, g, venueCache)
	RegisterRequests(e, h.Requests, g)
	RegisterUsers(e, h.Users, g)
	RegisterReports(e, h.Reports, h.Contact, g)
	RegisterNotifications(e, h.Notifications, g)
	RegisterContact(e, h.Contact, g)
}

// RegisterRoutes registers routes that do not require authentication and
// are not versioned.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers all authentication-related routes.  Token
// operations live under /v1/auth; the caller's own account under /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guards) {
	pub := e.Group("/v1/auth")
	pub.POST("/register", a.Register)
	pub.POST("/login", a.Login)
	// rotates the refresh token
	pub.POST("/refresh", a.Refresh)
	pub.POST("/refresh-access", a.RefreshAccess)
	// logout takes a refresh token in the body or a bearer token, so it
	// sits outside the JWT group
	pub.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	me := e.Group("/v1/me", g.Member()...)
	me.GET("", a.Me)
	me.PUT("", a.UpdateProfile)
	me.PUT("/password", a.ChangePassword)
}
