// Package csrf implements double-submit protection for requests that
// authenticate with the access-token cookie. Requests carrying an
// Authorization header are not exposed to cross-site forgery and pass through.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/wine_shop/pkg/tokens"
)

type Config struct {
	CookieName string
	HeaderName string
	// AuthCookie is the cookie whose presence makes a request subject to the check.
	AuthCookie string
	Secure     bool
	MaxAge     time.Duration
}

func DefaultConfig() Config {
	return Config{
		CookieName: "XSRF-TOKEN",
		HeaderName: "X-CSRF-Token",
		AuthCookie: tokens.AccessCookie,
		MaxAge:     24 * time.Hour,
	}
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.AuthCookie == "" {
		cfg.AuthCookie = def.AuthCookie
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			token := readCookie(req, cfg.CookieName)

			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				if token == "" {
					var err error
					if token, err = newToken(32); err != nil {
						return echo.NewHTTPError(http.StatusInternalServerError, "failed to create CSRF token")
					}
					setCookie(c, cfg, token)
				}
				c.Response().Header().Set(cfg.HeaderName, token)
				return next(c)
			}

			if req.Header.Get(echo.HeaderAuthorization) != "" || readCookie(req, cfg.AuthCookie) == "" {
				return next(c)
			}

			provided := req.Header.Get(cfg.HeaderName)
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(provided)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid CSRF token")
			}
			return next(c)
		}
	}
}

func newToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// The cookie is readable by scripts so the client can echo it in the header.
func setCookie(c echo.Context, cfg Config, token string) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Secure:   cfg.Secure,
		HttpOnly: false,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

func readCookie(req *http.Request, name string) string {
	ck, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
