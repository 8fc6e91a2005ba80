package handler // handler defines http handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/booking"
)

// requestTimeout bounds the work a handler does for one request.
const requestTimeout = 5 * time.Second

// CustomValidator adapts go-playground/validator to echo.  Field names in
// messages are the JSON names.
type CustomValidator struct {
	v *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return booking.Validation("%s", describe(verrs[0]))
	}
	return err
}

func describe(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", f)
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", f)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have at least %s characters.", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", f, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have at most %s characters.", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", f, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s.", f, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL.", f)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", f, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in the form YYYY-MM-DD.", f)
	}
	return fmt.Sprintf("%s is invalid.", f)
}

// bindValid decodes the JSON body into dst and validates it.
func bindValid(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return booking.Validation("Invalid request body.")
	}
	return c.Validate(dst)
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// pathID reads the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, booking.Validation("Invalid id %q.", c.Param("id"))
	}
	return id, nil
}

// errorStatus maps a failure kind to its HTTP status.
func errorStatus(k booking.Kind) int {
	switch k {
	case booking.KindValidation:
		return http.StatusBadRequest
	case booking.KindUnauthorized:
		return http.StatusUnauthorized
	case booking.KindForbidden:
		return http.StatusForbidden
	case booking.KindNotFound:
		return http.StatusNotFound
	case booking.KindConflict:
		return http.StatusConflict
	case booking.KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Base carries what every handler needs to answer failures.
type Base struct {
	Log *logrus.Logger
}

// fail writes err as a JSON error.  Errors without a kind are logged and
// answered with a generic 500 so internals never reach the client.
func (b Base) fail(c echo.Context, err error) error {
	var be *booking.Error
	if !errors.As(err, &be) {
		b.log().WithError(err).WithFields(logrus.Fields{
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			"method":     c.Request().Method,
			"path":       c.Path(),
		}).Error("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   booking.KindInternal.String(),
			"message": "Something went wrong. Please try again later.",
		})
	}
	body := echo.Map{"error": be.Kind.String(), "message": be.Message}
	if be.Kind == booking.KindRateLimited {
		body["retry_after_minutes"] = be.RetryAfterMinutes
		c.Response().Header().Set("Retry-After", strconv.Itoa(be.RetryAfterMinutes*60))
	}
	return c.JSON(errorStatus(be.Kind), body)
}

func (b Base) log() *logrus.Logger {
	if b.Log == nil {
		return logrus.StandardLogger()
	}
	return b.Log
}
