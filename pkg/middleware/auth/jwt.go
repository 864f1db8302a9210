package auth

import (
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/wine_shop/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	ctxToken  = "jwt"
)

type Middleware struct {
	jwt echo.MiddlewareFunc
}

// New accepts the access token either as a bearer header or as the
// accessToken cookie.
func New(secret []byte) *Middleware {
	return &Middleware{
		jwt: echojwt.WithConfig(echojwt.Config{
			SigningKey:    secret,
			SigningMethod: jwt.SigningMethodHS256.Alg(),
			ContextKey:    ctxToken,
			TokenLookup:   "header:Authorization:Bearer ,cookie:accessToken",
			NewClaimsFunc: func(c echo.Context) jwt.Claims {
				return new(tokens.AccessClaims)
			},
			SuccessHandler: func(c echo.Context) {
				tkn, ok := c.Get(ctxToken).(*jwt.Token)
				if !ok {
					return
				}
				if claims, ok := tkn.Claims.(*tokens.AccessClaims); ok {
					setUserContext(c, claims)
				}
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing access token")
			},
		}),
	}
}

func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.jwt(func(c echo.Context) error {
		if _, ok := UserID(c); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
		}
		return next(c)
	})
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireAuth(func(c echo.Context) error {
		if !IsStaff(c) {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	})
}

func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(CtxUserID).(uint)
	return id, ok && id != 0
}

func IsStaff(c echo.Context) bool {
	role, _ := c.Get(CtxRole).(string)
	return role == tokens.RoleAdmin
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return
	}
	c.Set(CtxUserID, uint(id))
	c.Set(CtxRole, claims.Role)
}
