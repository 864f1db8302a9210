package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/wine_shop/internal/repo"
	"github.com/Skotchmaster/wine_shop/internal/service"
	"github.com/Skotchmaster/wine_shop/internal/transport"
	"github.com/Skotchmaster/wine_shop/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetCountries(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_countries")

	pg, offset, limit := paging(c.QueryParam("page"), c.QueryParam("size"))
	total, items, err := h.Svc.ListCountries(ctx, offset, limit)
	if err != nil {
		return fail(l, "get_countries_error", err)
	}
	return c.JSON(http.StatusOK, page(items, pg, offset, limit, total))
}

func (h *CatalogHTTP) GetCountry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_country")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "get_country_error", err)
	}
	country, err := h.Svc.GetCountry(ctx, id)
	if err != nil {
		return fail(l, "get_country_error", err)
	}
	return c.JSON(http.StatusOK, country)
}

func (h *CatalogHTTP) CreateCountry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_country")

	var req transport.CountryRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_country_error", err)
	}
	country, err := h.Svc.CreateCountry(ctx, req)
	if err != nil {
		return fail(l, "create_country_error", err)
	}

	l.Info("create_country_success", "country_id", country.ID)
	return c.JSON(http.StatusCreated, country)
}

func (h *CatalogHTTP) UpdateCountry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_country")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "update_country_error", err)
	}
	var req transport.CountryRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_country_error", err)
	}
	country, err := h.Svc.UpdateCountry(ctx, id, req)
	if err != nil {
		return fail(l, "update_country_error", err)
	}
	return c.JSON(http.StatusOK, country)
}

func (h *CatalogHTTP) DeleteCountry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_country")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "delete_country_error", err)
	}
	if err := h.Svc.DeleteCountry(ctx, id); err != nil {
		return fail(l, "delete_country_error", err)
	}
	l.Info("delete_country_success", "country_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) GetRegions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_regions")

	country, err := parseOptionalUint(c, "country")
	if err != nil {
		return fail(l, "get_regions_error", err)
	}
	pg, offset, limit := paging(c.QueryParam("page"), c.QueryParam("size"))
	total, items, err := h.Svc.ListRegions(ctx, country, offset, limit)
	if err != nil {
		return fail(l, "get_regions_error", err)
	}
	return c.JSON(http.StatusOK, page(items, pg, offset, limit, total))
}

func (h *CatalogHTTP) GetRegion(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_region")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "get_region_error", err)
	}
	region, err := h.Svc.GetRegion(ctx, id)
	if err != nil {
		return fail(l, "get_region_error", err)
	}
	return c.JSON(http.StatusOK, region)
}

func (h *CatalogHTTP) CreateRegion(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_region")

	var req transport.RegionRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_region_error", err)
	}
	region, err := h.Svc.CreateRegion(ctx, req)
	if err != nil {
		return fail(l, "create_region_error", err)
	}

	l.Info("create_region_success", "region_id", region.ID)
	return c.JSON(http.StatusCreated, region)
}

func (h *CatalogHTTP) UpdateRegion(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_region")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "update_region_error", err)
	}
	var req transport.RegionRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_region_error", err)
	}
	region, err := h.Svc.UpdateRegion(ctx, id, req)
	if err != nil {
		return fail(l, "update_region_error", err)
	}
	return c.JSON(http.StatusOK, region)
}

func (h *CatalogHTTP) DeleteRegion(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_region")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "delete_region_error", err)
	}
	if err := h.Svc.DeleteRegion(ctx, id); err != nil {
		return fail(l, "delete_region_error", err)
	}
	l.Info("delete_region_success", "region_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) GetManufacturers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_manufacturers")

	pg, offset, limit := paging(c.QueryParam("page"), c.QueryParam("size"))
	total, items, err := h.Svc.ListManufacturers(ctx, offset, limit)
	if err != nil {
		return fail(l, "get_manufacturers_error", err)
	}

	out := make([]transport.ManufacturerListItem, 0, len(items))
	for i := range items {
		out = append(out, transport.ManufacturerListItem{
			ID:              items[i].ID,
			Name:            items[i].Name,
			CountryOfOrigin: countryName(&items[i]),
		})
	}
	return c.JSON(http.StatusOK, page(out, pg, offset, limit, total))
}

func (h *CatalogHTTP) GetManufacturer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_manufacturer")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "get_manufacturer_error", err)
	}
	m, err := h.Svc.GetManufacturer(ctx, id)
	if err != nil {
		return fail(l, "get_manufacturer_error", err)
	}
	return c.JSON(http.StatusOK, manufacturerDetail(m))
}

func (h *CatalogHTTP) CreateManufacturer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_manufacturer")

	var req transport.ManufacturerRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_manufacturer_error", err)
	}
	m, err := h.Svc.CreateManufacturer(ctx, req)
	if err != nil {
		return fail(l, "create_manufacturer_error", err)
	}

	l.Info("create_manufacturer_success", "manufacturer_id", m.ID)
	return c.JSON(http.StatusCreated, manufacturerDetail(m))
}

func (h *CatalogHTTP) UpdateManufacturer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_manufacturer")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "update_manufacturer_error", err)
	}
	var req transport.ManufacturerRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_manufacturer_error", err)
	}
	m, err := h.Svc.UpdateManufacturer(ctx, id, req)
	if err != nil {
		return fail(l, "update_manufacturer_error", err)
	}
	return c.JSON(http.StatusOK, manufacturerDetail(m))
}

func (h *CatalogHTTP) DeleteManufacturer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_manufacturer")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "delete_manufacturer_error", err)
	}
	if err := h.Svc.DeleteManufacturer(ctx, id); err != nil {
		return fail(l, "delete_manufacturer_error", err)
	}
	l.Info("delete_manufacturer_success", "manufacturer_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) GetGrapeVarieties(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_grape_varieties")

	pg, offset, limit := paging(c.QueryParam("page"), c.QueryParam("size"))
	total, items, err := h.Svc.ListGrapeVarieties(ctx, offset, limit)
	if err != nil {
		return fail(l, "get_grape_varieties_error", err)
	}
	return c.JSON(http.StatusOK, page(items, pg, offset, limit, total))
}

func (h *CatalogHTTP) GetGrapeVariety(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_grape_variety")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "get_grape_variety_error", err)
	}
	g, err := h.Svc.GetGrapeVariety(ctx, id)
	if err != nil {
		return fail(l, "get_grape_variety_error", err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *CatalogHTTP) CreateGrapeVariety(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_grape_variety")

	var req transport.GrapeVarietyRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_grape_variety_error", err)
	}
	g, err := h.Svc.CreateGrapeVariety(ctx, req)
	if err != nil {
		return fail(l, "create_grape_variety_error", err)
	}

	l.Info("create_grape_variety_success", "grape_variety_id", g.ID)
	return c.JSON(http.StatusCreated, g)
}

func (h *CatalogHTTP) UpdateGrapeVariety(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_grape_variety")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "update_grape_variety_error", err)
	}
	var req transport.GrapeVarietyRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_grape_variety_error", err)
	}
	g, err := h.Svc.UpdateGrapeVariety(ctx, id, req)
	if err != nil {
		return fail(l, "update_grape_variety_error", err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *CatalogHTTP) DeleteGrapeVariety(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_grape_variety")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "delete_grape_variety_error", err)
	}
	if err := h.Svc.DeleteGrapeVariety(ctx, id); err != nil {
		return fail(l, "delete_grape_variety_error", err)
	}
	l.Info("delete_grape_variety_success", "grape_variety_id", id)
	return c.NoContent(http.StatusNoContent)
}

func parseDecimalParam(c echo.Context, name string) (*decimal.Decimal, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, &service.FieldError{Field: name, Msg: "Enter a number."}
	}
	return &d, nil
}

func wineFilter(c echo.Context) (repo.WineFilter, error) {
	f := repo.WineFilter{
		Color:        c.QueryParam("color"),
		SugarContent: c.QueryParam("sugar_content"),
	}
	var err error
	for name, dst := range map[string]**uint{
		"manufacturer":  &f.Manufacturer,
		"country":       &f.Country,
		"region":        &f.Region,
		"grape_variety": &f.GrapeVariety,
	} {
		if *dst, err = parseOptionalUint(c, name); err != nil {
			return f, err
		}
	}
	for name, dst := range map[string]**decimal.Decimal{
		"price":      &f.Price,
		"price__gte": &f.PriceGte,
		"price__lte": &f.PriceLte,
	} {
		if *dst, err = parseDecimalParam(c, name); err != nil {
			return f, err
		}
	}
	return f, nil
}

func (h *CatalogHTTP) GetWines(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_wines")

	f, err := wineFilter(c)
	if err != nil {
		return fail(l, "get_wines_error", err)
	}
	pg, offset, limit := paging(c.QueryParam("page"), c.QueryParam("size"))
	total, wines, err := h.Svc.ListWines(ctx, f, offset, limit)
	if err != nil {
		return fail(l, "get_wines_error", err)
	}

	l.Info("get_wines_success")
	return c.JSON(http.StatusOK, page(wineResponses(wines), pg, offset, limit, total))
}

func (h *CatalogHTTP) SearchWines(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_wines")

	q := c.QueryParam("q")
	if q == "" {
		return fail(l, "search_wines_error", &service.FieldError{Field: "q", Msg: "This field is required."})
	}
	pg, offset, limit := paging(c.QueryParam("page"), c.QueryParam("size"))
	total, wines, err := h.Svc.SearchWines(ctx, q, offset, limit)
	if err != nil {
		return fail(l, "search_wines_error", err)
	}
	return c.JSON(http.StatusOK, page(wineResponses(wines), pg, offset, limit, total))
}

func (h *CatalogHTTP) GetWine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_wine")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "get_wine_error", err)
	}
	wine, err := h.Svc.GetWine(ctx, id)
	if err != nil {
		return fail(l, "get_wine_error", err)
	}
	return c.JSON(http.StatusOK, wineResponse(wine))
}

func (h *CatalogHTTP) CreateWine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_wine")

	var req transport.WineRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_wine_error", err)
	}
	wine, err := h.Svc.CreateWine(ctx, req)
	if err != nil {
		return fail(l, "create_wine_error", err)
	}

	l.Info("create_wine_success", "wine_id", wine.ID)
	return c.JSON(http.StatusCreated, wineResponse(wine))
}

func (h *CatalogHTTP) PatchWine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_wine")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "patch_wine_error", err)
	}
	var req transport.WinePatchRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "patch_wine_error", err)
	}
	wine, err := h.Svc.PatchWine(ctx, id, req)
	if err != nil {
		return fail(l, "patch_wine_error", err)
	}

	l.Info("patch_wine_success", "wine_id", wine.ID)
	return c.JSON(http.StatusOK, wineResponse(wine))
}

func (h *CatalogHTTP) DeleteWine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_wine")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "delete_wine_error", err)
	}
	if err := h.Svc.DeleteWine(ctx, id); err != nil {
		return fail(l, "delete_wine_error", err)
	}
	l.Info("delete_wine_success", "wine_id", id)
	return c.NoContent(http.StatusNoContent)
}
