package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/wine_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/wine_shop/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/wine_shop/pkg/middleware/logging"
	"github.com/Skotchmaster/wine_shop/pkg/middleware/metrics"
)

type Deps struct {
	OrderHandler   *OrderHTTP
	CatalogHandler *CatalogHTTP
	UserHandler    *UserHTTP
	CommentHandler *CommentHTTP

	JWTSecret []byte
	Metrics   *metrics.Metrics
	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
}

// NewEcho builds the echo instance with the middleware chain every route shares.
func NewEcho(logger *slog.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	// "/orders/" and "/orders" address the same route
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	if m != nil {
		e.Use(m.Middleware)
	}
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(csrf.Middleware(csrf.DefaultConfig()))
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}

	authMW := auth.New(d.JWTSecret)

	cat := d.CatalogHandler
	e.GET("/countries", cat.GetCountries)
	e.GET("/countries/:id", cat.GetCountry)
	e.GET("/regions", cat.GetRegions)
	e.GET("/regions/:id", cat.GetRegion)
	e.GET("/manufacturers", cat.GetManufacturers)
	e.GET("/manufacturers/:id", cat.GetManufacturer)
	e.GET("/grape-varieties", cat.GetGrapeVarieties)
	e.GET("/grape-varieties/:id", cat.GetGrapeVariety)
	e.GET("/wines", cat.GetWines)
	e.GET("/wines/search", cat.SearchWines)
	e.GET("/wines/:id", cat.GetWine)

	adm := authMW.RequireAdmin
	e.POST("/countries", cat.CreateCountry, adm)
	e.PUT("/countries/:id", cat.UpdateCountry, adm)
	e.PATCH("/countries/:id", cat.UpdateCountry, adm)
	e.DELETE("/countries/:id", cat.DeleteCountry, adm)
	e.POST("/regions", cat.CreateRegion, adm)
	e.PUT("/regions/:id", cat.UpdateRegion, adm)
	e.PATCH("/regions/:id", cat.UpdateRegion, adm)
	e.DELETE("/regions/:id", cat.DeleteRegion, adm)
	e.POST("/manufacturers", cat.CreateManufacturer, adm)
	e.PUT("/manufacturers/:id", cat.UpdateManufacturer, adm)
	e.PATCH("/manufacturers/:id", cat.UpdateManufacturer, adm)
	e.DELETE("/manufacturers/:id", cat.DeleteManufacturer, adm)
	e.POST("/grape-varieties", cat.CreateGrapeVariety, adm)
	e.PUT("/grape-varieties/:id", cat.UpdateGrapeVariety, adm)
	e.PATCH("/grape-varieties/:id", cat.UpdateGrapeVariety, adm)
	e.DELETE("/grape-varieties/:id", cat.DeleteGrapeVariety, adm)
	e.POST("/wines", cat.CreateWine, adm)
	e.PATCH("/wines/:id", cat.PatchWine, adm)
	e.DELETE("/wines/:id", cat.DeleteWine, adm)

	com := d.CommentHandler
	e.GET("/wines/:id/comments", com.ListForWine)
	e.POST("/wines/:id/comments", com.CreateForWine, authMW.RequireAuth)

	usr := d.UserHandler
	user := e.Group("/user")
	user.POST("/register", usr.Register)
	user.POST("/token", usr.Token)
	user.POST("/token/refresh", usr.Refresh)

	authed := authMW.RequireAuth
	user.GET("/me", usr.Me, authed)
	user.PUT("/me", usr.UpdateMe, authed)
	user.PATCH("/me", usr.UpdateMe, authed)
	user.DELETE("/me", usr.DeleteMe, authed)
	user.POST("/me/change-password", usr.ChangePassword, authed)
	user.GET("/my-comments", com.ListMine, authed)
	user.GET("/my-comments/:id", com.Get, authed)
	user.PUT("/my-comments/:id", com.Update, authed)
	user.PATCH("/my-comments/:id", com.Update, authed)
	user.DELETE("/my-comments/:id", com.Delete, authed)

	ord := d.OrderHandler
	orders := e.Group("/orders", authMW.RequireAuth)
	orders.POST("", ord.CreateOrder)
	orders.GET("", ord.GetOrders)
	orders.GET("/:id", ord.GetOrder)
	orders.PUT("/:id", ord.UpdateOrder)
	orders.PATCH("/:id", ord.UpdateOrder)
	orders.DELETE("/:id", ord.DeleteOrder)
	orders.POST("/:id/items", ord.AddItem)
	orders.DELETE("/:id/items/:item_id", ord.RemoveItem)
}
