package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/wine_shop/internal/service"
	"github.com/Skotchmaster/wine_shop/internal/transport"
	"github.com/Skotchmaster/wine_shop/pkg/logging"
	"github.com/Skotchmaster/wine_shop/pkg/tokens"
)

type UserHTTP struct {
	Auth  *service.AuthService
	Users *service.UserService
}

func setTokenCookies(c echo.Context, pair *transport.TokenPair) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, pair.Access, "/", pair.AccessExp))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, pair.Refresh, "/", pair.RefreshExp))
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req transport.RegisterRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "register_error", err)
	}
	user, err := h.Auth.Register(ctx, req)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.NoContent(http.StatusCreated)
}

func (h *UserHTTP) Token(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.token")

	var req transport.TokenRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "login_error", err)
	}
	pair, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	setTokenCookies(c, pair)
	l.Info("login_successful")
	return c.JSON(http.StatusOK, pair)
}

// Refresh takes the refresh token from the body, or from the cookie when the
// body has none.
func (h *UserHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.token_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "refresh_error", fmt.Errorf("%w: %v", service.ErrValidation, err))
	}
	if req.Refresh == "" {
		if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
			req.Refresh = ck.Value
		}
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "refresh_error", err)
	}

	pair, err := h.Auth.Refresh(ctx, req.Refresh)
	if err != nil {
		c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
		c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
		return fail(l, "refresh_error", err)
	}

	setTokenCookies(c, pair)
	l.Info("refresh_successful")
	return c.JSON(http.StatusOK, pair)
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.me")

	user, err := h.Users.Me(ctx, actor(c).UserID)
	if err != nil {
		return fail(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_me")

	var req transport.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_me_error", err)
	}
	user, err := h.Users.UpdateMe(ctx, actor(c).UserID, req)
	if err != nil {
		return fail(l, "update_me_error", err)
	}

	l.Info("update_me_success")
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) DeleteMe(c echo.Context) error {
	return echo.NewHTTPError(http.StatusMethodNotAllowed, `Method "DELETE" not allowed.`)
}

func (h *UserHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.change_password")

	var req transport.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "change_password_error", err)
	}
	if err := h.Users.ChangePassword(ctx, actor(c).UserID, req); err != nil {
		return fail(l, "change_password_error", err)
	}

	l.Info("change_password_success")
	return c.JSON(http.StatusOK, echo.Map{"success": "Password changed successfully"})
}
