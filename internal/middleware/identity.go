package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// Context keys set by the auth middleware.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

func setIdentity(c echo.Context, id uint64, role string) {
	c.Set(ctxUserID, id)
	c.Set(ctxRole, role)
}

// ActorFrom returns the authenticated caller, or the zero Actor for an
// anonymous request.
func ActorFrom(c echo.Context) booking.Actor {
	var id uint64
	switch v := c.Get(ctxUserID).(type) {
	case uint64:
		id = v
	case float64:
		id = uint64(v)
	case int:
		id = uint64(v)
	case string:
		id, _ = strconv.ParseUint(v, 10, 64)
	}
	role, _ := c.Get(ctxRole).(string)
	return booking.Actor{UserID: id, Role: role}
}

// userKey identifies the caller for rate limiting.
func userKey(c echo.Context) string {
	if a := ActorFrom(c); a.UserID != 0 {
		return strconv.FormatUint(a.UserID, 10)
	}
	return "anon"
}

// RequireActive reloads the caller's account after JWTAuth.  Deleted
// accounts are refused, suspended ones are forbidden and the role in
// the context is replaced by the stored one so a demotion takes effect
// before the access token expires.
func RequireActive(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a := ActorFrom(c)
			if a.UserID == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "Please log in."})
			}
			u, err := users.GetByID(c.Request().Context(), a.UserID)
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "Account not found."})
			}
			if err != nil {
				return err
			}
			if u.IsSuspended() {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": "Your account is suspended."})
			}
			setIdentity(c, u.ID, u.Role)
			return next(c)
		}
	}
}
