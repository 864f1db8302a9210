package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/wine_shop/internal/service"
	"github.com/Skotchmaster/wine_shop/pkg/middleware/auth"
)

// fail logs the outcome under event and turns a service error into the
// HTTP error the client sees.
func fail(l *slog.Logger, event string, err error) error {
	var fe *service.FieldError
	switch {
	case errors.As(err, &fe):
		l.Warn(event, "status", 400, "reason", "invalid body", "field", fe.Field, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, map[string][]string{fe.Field: {fe.Msg}})
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", 403, "reason", "forbidden", "error", err)
		return echo.NewHTTPError(http.StatusForbidden, "you do not have permission to perform this action")
	case errors.Is(err, service.ErrInvalidCredentials):
		l.Warn(event, "status", 401, "reason", "invalid credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "no active account found with the given credentials")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		l.Warn(event, "status", 401, "reason", "invalid refresh token", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "token is invalid or expired")
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", "conflict", "error", err)
		return echo.NewHTTPError(http.StatusConflict, "conflict")
	default:
		l.Error(event, "status", 500, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: %v", service.ErrValidation, err)
	}
	return c.Validate(req)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s is not a positive integer", service.ErrNotFound, name)
	}
	return uint(id), nil
}

func parseOptionalUint(c echo.Context, name string) (*uint, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil, &service.FieldError{Field: name, Msg: "Enter a whole number."}
	}
	out := uint(id)
	return &out, nil
}

func actor(c echo.Context) service.Actor {
	id, _ := auth.UserID(c)
	return service.Actor{UserID: id, IsStaff: auth.IsStaff(c)}
}
